package agent

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ledgerline/monacopay/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testAgent() *Agent {
	return &Agent{
		Trend: NewTrendAnalyzer(),
		Log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:   func() time.Time { return time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC) },
	}
}

func baseInput() domain.EmployeePeriodInput {
	return domain.EmployeePeriodInput{
		Matricule:        "M001",
		Name:             "Jean Dupont",
		Period:           domain.Period{Year: 2024, Month: 6},
		BaseSalary:       d("2200.00"),
		WorkedHours:      d("169"),
		ResidenceCountry: domain.CountryMonaco,
	}
}

func TestEvaluateNewHireProration(t *testing.T) {
	a := testAgent()
	in := baseInput()
	in.Remark = "Entrée le 15/06"

	ev := a.Evaluate(in, d("2200.00"), nil)

	require.Len(t, ev.Suggestions, 1)
	sug := ev.Suggestions[0]
	assert.Equal(t, domain.EdgeNewHire, sug.Category)
	assert.InDelta(t, 0.90, sug.Confidence, 1e-9)

	// Day 15 of a 22-business-day month leaves 8 days worked:
	// 2200 * 8/22 = 800.00.
	require.Len(t, sug.Changes, 1)
	assert.Equal(t, "base_salary", sug.Changes[0].Field)
	assert.True(t, sug.Changes[0].New.Equal(d("800.00")), "proposed = %s", sug.Changes[0].New)

	// 0.90 > threshold: applied automatically, with an audit entry.
	assert.True(t, sug.AutoApplied)
	assert.True(t, ev.Mutated)
	assert.True(t, ev.Input.BaseSalary.Equal(d("800.00")))
	require.Len(t, ev.Audit, 1)
	assert.True(t, ev.Audit[0].Automatic)
	assert.Equal(t, "base_salary", ev.Audit[0].Field)
}

func TestEvaluateKeywordOnlyStaysReview(t *testing.T) {
	a := testAgent()
	in := baseInput()
	in.Remark = "embauche"

	ev := a.Evaluate(in, d("2200.00"), nil)

	require.Len(t, ev.Suggestions, 1)
	sug := ev.Suggestions[0]
	// No day given: nothing can be proposed safely, so no mutation
	// regardless of confidence.
	assert.Empty(t, sug.Changes)
	assert.False(t, sug.AutoApplied)
	assert.False(t, ev.Mutated)
	assert.True(t, ev.Input.BaseSalary.Equal(d("2200.00")))
	// Still surfaced for the reviewer.
	assert.True(t, ev.Status.Flagged)
}

func TestEvaluateDecimalShift(t *testing.T) {
	a := testAgent()

	t.Run("extra_zero_corrected", func(t *testing.T) {
		in := baseInput()
		in.BaseSalary = d("22000.00")
		h := history("2150", "2180", "2200")

		ev := a.Evaluate(in, d("22000.00"), h)

		sug := findSuggestion(t, ev.Suggestions, domain.EdgeSalaryChange)
		assert.InDelta(t, 0.98, sug.Confidence, 1e-9)
		require.Len(t, sug.Changes, 1)
		assert.True(t, sug.Changes[0].New.Equal(d("2200.00")))
		assert.True(t, sug.AutoApplied)
		assert.True(t, ev.Mutated)
		assert.True(t, ev.Input.BaseSalary.Equal(d("2200.00")))
	})

	t.Run("missing_zero_corrected", func(t *testing.T) {
		in := baseInput()
		in.BaseSalary = d("220.00")
		h := history("2150", "2180", "2200")

		ev := a.Evaluate(in, d("220.00"), h)

		sug := findSuggestion(t, ev.Suggestions, domain.EdgeSalaryChange)
		assert.True(t, sug.Changes[0].New.Equal(d("2200.00")))
		assert.True(t, ev.Mutated)
	})

	t.Run("ordinary_raise_not_confused_with_shift", func(t *testing.T) {
		in := baseInput()
		in.BaseSalary = d("2500.00")
		h := history("2200", "2200", "2200")

		ev := a.Evaluate(in, d("2500.00"), h)
		for _, sug := range ev.Suggestions {
			assert.NotEqual(t, 0.98, sug.Confidence, "a 14%% raise is not a decimal shift")
		}
		assert.False(t, ev.Mutated)
	})
}

func TestEvaluateUnexplainedAnomalyFlagsOnly(t *testing.T) {
	a := testAgent()
	in := baseInput() // no remark
	h := history("2200", "2200", "2200", "2200", "2200", "2200")

	ev := a.Evaluate(in, d("2800.00"), h)

	require.Len(t, ev.Suggestions, 1)
	sug := ev.Suggestions[0]
	assert.Equal(t, domain.EdgeNone, sug.Category)
	assert.Empty(t, sug.Changes)
	assert.LessOrEqual(t, sug.Confidence, 0.60, "trend-only evidence is capped")
	assert.False(t, ev.Mutated, "an unexplained anomaly never mutates input")
	assert.True(t, ev.Status.Flagged)
}

func TestEvaluateTrendCorroboratesRemark(t *testing.T) {
	a := testAgent()
	steady := history("2200", "2200", "2200", "2200", "2200", "2200")

	in := baseInput()
	in.Remark = "prime exceptionnelle"
	in.Bonus = d("600.00")

	// The bonus shows up in gross, corroborating the remark.
	withMove := a.Evaluate(in, d("2800.00"), steady)
	moveSug := findSuggestion(t, withMove.Suggestions, domain.EdgeBonus)

	// No gross move despite a bonus remark: confidence is damped.
	withoutMove := a.Evaluate(in, d("2200.00"), steady)
	flatSug := findSuggestion(t, withoutMove.Suggestions, domain.EdgeBonus)

	assert.Greater(t, moveSug.Confidence, 0.60, "corroboration lifts the remark confidence")
	assert.InDelta(t, 0.60*0.85, flatSug.Confidence, 1e-9, "steady history damps a move-predicting remark")
}

func TestEvaluateFieldDatesImplyCategories(t *testing.T) {
	a := testAgent()

	t.Run("departure_date_in_period", func(t *testing.T) {
		in := baseInput()
		dep := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
		in.DepartureDate = &dep

		ev := a.Evaluate(in, d("2200.00"), nil)
		sug := findSuggestion(t, ev.Suggestions, domain.EdgeDeparture)
		assert.InDelta(t, 0.95, sug.Confidence, 1e-9)
		// Day 10 of 22: 2200 * 10/22 = 1000.00.
		require.Len(t, sug.Changes, 1)
		assert.True(t, sug.Changes[0].New.Equal(d("1000.00")))
		assert.True(t, ev.Mutated)
	})

	t.Run("dates_outside_period_ignored", func(t *testing.T) {
		in := baseInput()
		hire := time.Date(2019, 3, 4, 0, 0, 0, 0, time.UTC)
		in.HireDate = &hire

		ev := a.Evaluate(in, d("2200.00"), nil)
		for _, sug := range ev.Suggestions {
			assert.NotEqual(t, domain.EdgeNewHire, sug.Category)
		}
	})
}

func TestApplyThresholdIsStrict(t *testing.T) {
	a := testAgent()

	mkEval := func(conf float64) *Evaluation {
		ev := &Evaluation{Input: baseInput()}
		ev.Suggestions = []domain.EdgeCaseSuggestion{{
			Matricule:  "M001",
			Category:   domain.EdgeSalaryChange,
			Confidence: conf,
			Changes:    []domain.FieldChange{{Field: "base_salary", Old: d("2200.00"), New: d("1000.00")}},
			Rationale:  "test",
		}}
		return ev
	}

	t.Run("exactly_at_threshold_reviews", func(t *testing.T) {
		ev := mkEval(AutoApplyThreshold)
		a.apply(ev, domain.Period{Year: 2024, Month: 6})
		assert.False(t, ev.Suggestions[0].AutoApplied)
		assert.False(t, ev.Mutated)
		assert.True(t, ev.Input.BaseSalary.Equal(d("2200.00")))
	})

	t.Run("just_above_threshold_applies", func(t *testing.T) {
		ev := mkEval(0.86)
		a.apply(ev, domain.Period{Year: 2024, Month: 6})
		assert.True(t, ev.Suggestions[0].AutoApplied)
		assert.True(t, ev.Mutated)
		assert.True(t, ev.Input.BaseSalary.Equal(d("1000.00")))
		require.Len(t, ev.Audit, 1)
	})
}

func TestConfidenceAlwaysInUnitInterval(t *testing.T) {
	a := testAgent()
	h := history("2200", "2200", "2200", "2200")

	remarks := []string{
		"Entrée le 1/06", "Sortie le 22/06", "embauche", "démission",
		"nouveau salaire", "prime", "13e mois", "congé sans solde",
		"du 3 au 19", "pro rata", "",
	}
	for _, remark := range remarks {
		in := baseInput()
		in.Remark = remark
		for _, gross := range []string{"2200.00", "4400.00", "220.00"} {
			ev := a.Evaluate(in, d(gross), h)
			for _, sug := range ev.Suggestions {
				assert.GreaterOrEqual(t, sug.Confidence, 0.0, "remark %q gross %s", remark, gross)
				assert.LessOrEqual(t, sug.Confidence, 1.0, "remark %q gross %s", remark, gross)
			}
		}
	}
}

func findSuggestion(t *testing.T, sugs []domain.EdgeCaseSuggestion, cat domain.EdgeCaseCategory) domain.EdgeCaseSuggestion {
	t.Helper()
	for _, s := range sugs {
		if s.Category == cat {
			return s
		}
	}
	t.Fatalf("no %s suggestion in %v", cat, sugs)
	return domain.EdgeCaseSuggestion{}
}
