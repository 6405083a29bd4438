package calculation

import (
	"github.com/ledgerline/monacopay/internal/domain"
	"github.com/shopspring/decimal"
)

// TrancheSlices is a gross amount decomposed against the year's ceilings.
type TrancheSlices struct {
	T1     decimal.Decimal
	T2     decimal.Decimal
	Excess decimal.Decimal
}

// Split decomposes gross into the tranche 1 slice, the tranche 2 slice and
// the excess above the T2 ceiling:
//
//	t1     = min(gross, T1)
//	t2     = clip(gross - T1, 0, T2 - T1)
//	excess = max(0, gross - T2)
func Split(gross decimal.Decimal, t domain.Tranches) TrancheSlices {
	s := TrancheSlices{T1: decimal.Min(gross, t.T1Ceiling)}

	aboveT1 := gross.Sub(t.T1Ceiling)
	if aboveT1.IsPositive() {
		s.T2 = decimal.Min(aboveT1, t.T2Ceiling.Sub(t.T1Ceiling))
	}

	aboveT2 := gross.Sub(t.T2Ceiling)
	if aboveT2.IsPositive() {
		s.Excess = aboveT2
	}
	return s
}
