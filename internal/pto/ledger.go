// Package pto maintains the paid-leave balance of an employee across
// payroll periods. The ledger is a pure transition function: it never owns
// storage, it maps (prior balance, period input, policy) to the next
// balance or fails.
package pto

import (
	"fmt"

	"github.com/ledgerline/monacopay/internal/domain"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Transition advances a PTO balance by one period.
//
// Accrual adds the policy's monthly days, pro-rated by the worked-hours
// ratio for partial months (never above 1). Consumption converts the
// period's paid-leave hours to days and draws the carried year-N-1 bucket
// first, then the current-year bucket. A consumption that would leave a
// negative remaining balance is an error surfaced to the caller, never a
// silent clamp.
//
// On the first period of a calendar year the closing year-N balance rolls
// into the N-1 bucket according to the schedule policy: carried over (capped
// at CarryOverCapDays) or forfeited. The current-year bucket then restarts
// at zero, so acquired days are monotonically non-decreasing within a
// calendar year.
func Transition(prior domain.PTOBalance, in *domain.EmployeePeriodInput, schedule *domain.RateSchedule) (domain.PTOBalance, error) {
	policy := schedule.PTO
	b := prior

	if in.Period.IsYearStart() {
		b = rollYear(b, policy)
	}

	b.Acquired = b.Acquired.Add(accrual(in, schedule))

	taken := in.PTOHours.Div(policy.HoursPerDay)
	if taken.IsPositive() {
		fromPrev := decimal.Min(taken, b.RemainingPrev)
		b.TakenPrev = b.TakenPrev.Add(fromPrev)
		b.Taken = b.Taken.Add(taken.Sub(fromPrev))
	}

	b.RemainingPrev = b.AcquiredPrev.Sub(b.TakenPrev)
	b.Remaining = b.Acquired.Sub(b.Taken)

	if b.Remaining.IsNegative() || b.RemainingPrev.IsNegative() {
		return domain.PTOBalance{}, &domain.ValidationError{
			Matricule: in.Matricule,
			Field:     "pto_hours",
			Detail: fmt.Sprintf("consumption of %s days exceeds available balance (%s days)",
				taken.StringFixed(2), prior.TotalRemaining().StringFixed(2)),
			Err: domain.ErrNegativeBalance,
		}
	}
	return b, nil
}

// accrual returns the days earned this period: the monthly rate, scaled by
// the attendance ratio when the month is partial. Paid leave counts as
// attendance.
func accrual(in *domain.EmployeePeriodInput, schedule *domain.RateSchedule) decimal.Decimal {
	rate := schedule.PTO.MonthlyAccrualDays

	attended := in.WorkedHours.Add(in.PTOHours)
	if in.AbsenceType == domain.AbsenceSickMaintained {
		attended = attended.Add(in.AbsenceHours)
	}
	ratio := attended.Div(schedule.BaseMonthlyHours)
	if ratio.GreaterThanOrEqual(one) {
		return rate
	}
	return rate.Mul(ratio).Round(4)
}

// rollYear closes the year-N bucket into the N-1 bucket per policy and
// resets the current year.
func rollYear(b domain.PTOBalance, policy domain.PTOPolicy) domain.PTOBalance {
	closing := b.Acquired.Sub(b.Taken)

	next := domain.PTOBalance{}
	if policy.YearEnd == domain.CarryOver {
		carried := closing
		if policy.CarryOverCapDays.IsPositive() {
			carried = decimal.Min(carried, policy.CarryOverCapDays)
		}
		if carried.IsNegative() {
			carried = decimal.Zero
		}
		next.AcquiredPrev = carried
		next.RemainingPrev = carried
	}
	// Forfeit: the N-1 bucket simply starts empty. Unused days from two
	// years back lapse in either mode.
	return next
}
