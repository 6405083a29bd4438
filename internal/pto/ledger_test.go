package pto

import (
	"errors"
	"testing"

	"github.com/ledgerline/monacopay/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func policySchedule(yearEnd domain.YearEndPolicy, capDays string) *domain.RateSchedule {
	return &domain.RateSchedule{
		BaseMonthlyHours: d("169"),
		PTO: domain.PTOPolicy{
			MonthlyAccrualDays: d("2.08"),
			HoursPerDay:        d("8"),
			YearEnd:            yearEnd,
			CarryOverCapDays:   d(capDays),
		},
	}
}

func fullMonth(period domain.Period) *domain.EmployeePeriodInput {
	return &domain.EmployeePeriodInput{
		Matricule:   "M001",
		Period:      period,
		WorkedHours: d("169"),
	}
}

func TestTransitionAccrual(t *testing.T) {
	s := policySchedule(domain.CarryOver, "5")

	t.Run("full_year_accrues_24_96", func(t *testing.T) {
		var b domain.PTOBalance
		var err error
		for month := 1; month <= 12; month++ {
			in := fullMonth(domain.Period{Year: 2024, Month: month})
			b, err = Transition(b, in, s)
			require.NoError(t, err)
		}
		assert.True(t, b.Acquired.Equal(d("24.96")), "acquired = %s", b.Acquired)
		assert.True(t, b.Remaining.Equal(d("24.96")))
	})

	t.Run("partial_month_prorates", func(t *testing.T) {
		in := fullMonth(domain.Period{Year: 2024, Month: 6})
		in.WorkedHours = d("84.5") // half the base
		b, err := Transition(domain.PTOBalance{}, in, s)
		require.NoError(t, err)
		assert.True(t, b.Acquired.Equal(d("1.04")), "acquired = %s", b.Acquired)
	})

	t.Run("maintained_sick_leave_counts_as_attendance", func(t *testing.T) {
		in := fullMonth(domain.Period{Year: 2024, Month: 6})
		in.WorkedHours = d("149")
		in.AbsenceHours = d("20")
		in.AbsenceType = domain.AbsenceSickMaintained
		b, err := Transition(domain.PTOBalance{}, in, s)
		require.NoError(t, err)
		assert.True(t, b.Acquired.Equal(d("2.08")))
	})
}

func TestTransitionConsumption(t *testing.T) {
	s := policySchedule(domain.CarryOver, "5")

	t.Run("draws_carried_bucket_first", func(t *testing.T) {
		prior := domain.PTOBalance{
			AcquiredPrev:  d("2"),
			RemainingPrev: d("2"),
			Acquired:      d("10"),
			Remaining:     d("10"),
		}
		in := fullMonth(domain.Period{Year: 2024, Month: 6})
		in.PTOHours = d("24") // 3 days

		b, err := Transition(prior, in, s)
		require.NoError(t, err)

		assert.True(t, b.RemainingPrev.IsZero(), "carried bucket drained first")
		assert.True(t, b.TakenPrev.Equal(d("2")))
		assert.True(t, b.Taken.Equal(d("1")))
		// 10 + 2.08 accrued - 1 taken from the current year.
		assert.True(t, b.Remaining.Equal(d("11.08")), "remaining = %s", b.Remaining)
	})

	t.Run("overdraw_is_an_error_never_a_clamp", func(t *testing.T) {
		in := fullMonth(domain.Period{Year: 2024, Month: 6})
		in.PTOHours = d("40") // 5 days against 2.08 accrued

		_, err := Transition(domain.PTOBalance{}, in, s)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNegativeBalance))
		assert.True(t, domain.IsValidationError(err))
	})
}

func TestTransitionYearRoll(t *testing.T) {
	december := domain.PTOBalance{
		Acquired:  d("20"),
		Taken:     d("4"),
		Remaining: d("16"),
	}

	t.Run("carry_respects_cap", func(t *testing.T) {
		s := policySchedule(domain.CarryOver, "5")
		in := fullMonth(domain.Period{Year: 2025, Month: 1})

		b, err := Transition(december, in, s)
		require.NoError(t, err)

		// 16 closing days capped at 5 carry into the N-1 bucket.
		assert.True(t, b.AcquiredPrev.Equal(d("5")))
		assert.True(t, b.RemainingPrev.Equal(d("5")))
		// The current year restarts with January's accrual only.
		assert.True(t, b.Acquired.Equal(d("2.08")))
	})

	t.Run("forfeit_starts_empty", func(t *testing.T) {
		s := policySchedule(domain.Forfeit, "0")
		in := fullMonth(domain.Period{Year: 2025, Month: 1})

		b, err := Transition(december, in, s)
		require.NoError(t, err)

		assert.True(t, b.AcquiredPrev.IsZero())
		assert.True(t, b.RemainingPrev.IsZero())
		assert.True(t, b.Acquired.Equal(d("2.08")))
	})

	t.Run("no_roll_mid_year", func(t *testing.T) {
		s := policySchedule(domain.CarryOver, "5")
		in := fullMonth(domain.Period{Year: 2024, Month: 7})

		b, err := Transition(december, in, s)
		require.NoError(t, err)
		assert.True(t, b.Acquired.Equal(d("22.08")), "mid-year transition keeps the accrued bucket")
	})
}
