package agent

import (
	"math"

	"github.com/shopspring/decimal"
)

// TrendSignal is the statistical verdict on the current period's gross
// against the employee's own history.
type TrendSignal struct {
	// Sufficient is false when fewer than 2 prior periods exist; the
	// analyzer then reports no anomaly, which is not an error.
	Sufficient bool
	Anomalous  bool

	Mean          float64
	StdDev        float64
	CV            float64 // coefficient of variation, stddev/mean
	Delta         float64 // current - mean
	RelativeDelta float64 // |delta| / mean

	// Score grades the deviation strength into [0,1] for confidence
	// combination; 0 when nothing is anomalous.
	Score float64
}

// TrendAnalyzer flags a gross amount deviating from the employee's
// baseline, either in sigma terms or as a volatility-adjusted relative
// move. Stable earners are held to the tight relative bound; employees
// with naturally volatile pay (overtime-heavy) get proportionally more
// slack through the CV adjustment.
type TrendAnalyzer struct {
	// K is the sigma multiplier of the deviation test (default 2.0).
	K float64
	// BaseRelativeBound is the relative-delta threshold before volatility
	// adjustment (default 0.15); the effective bound is Base*(1+CV).
	BaseRelativeBound float64
}

// NewTrendAnalyzer returns an analyzer with the documented defaults.
func NewTrendAnalyzer() *TrendAnalyzer {
	return &TrendAnalyzer{K: 2.0, BaseRelativeBound: 0.15}
}

// Analyze computes the baseline over the bounded history window (oldest
// first) and tests the current gross against it.
func (ta *TrendAnalyzer) Analyze(history []decimal.Decimal, current decimal.Decimal) TrendSignal {
	var sig TrendSignal
	if len(history) < 2 {
		return sig
	}
	sig.Sufficient = true

	values := make([]float64, len(history))
	var sum float64
	for i, v := range history {
		values[i] = v.InexactFloat64()
		sum += values[i]
	}
	sig.Mean = sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - sig.Mean
		sq += d * d
	}
	sig.StdDev = math.Sqrt(sq / float64(len(values)-1)) // sample stddev
	if sig.Mean != 0 {
		sig.CV = sig.StdDev / math.Abs(sig.Mean)
	}

	cur := current.InexactFloat64()
	sig.Delta = cur - sig.Mean
	if sig.Mean != 0 {
		sig.RelativeDelta = math.Abs(sig.Delta) / math.Abs(sig.Mean)
	}

	bound := ta.BaseRelativeBound * (1 + sig.CV)
	relHit := sig.RelativeDelta > bound

	var z float64
	sigmaHit := false
	if sig.StdDev > 0 {
		z = math.Abs(sig.Delta) / sig.StdDev
		sigmaHit = z > ta.K
	}

	sig.Anomalous = sigmaHit || relHit
	if !sig.Anomalous {
		return sig
	}

	// Strength: how far past either threshold the deviation lands, graded
	// so that hitting a threshold exactly scores 0.5 and twice the
	// threshold saturates at 1.
	var score float64
	if sig.StdDev > 0 {
		score = z / (2 * ta.K)
	}
	if bound > 0 {
		if rel := sig.RelativeDelta / (2 * bound); rel > score {
			score = rel
		}
	}
	sig.Score = math.Min(1, score)
	return sig
}
