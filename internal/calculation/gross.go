package calculation

import (
	"github.com/ledgerline/monacopay/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	rate125 = decimal.NewFromFloat(1.25)
	rate150 = decimal.NewFromFloat(1.50)
	rate200 = decimal.NewFromInt(2)
)

// GrossBreakdown is the gross amount with its contributing lines, kept for
// the payslip detail and the SMIC plausibility check.
type GrossBreakdown struct {
	HourlyRate     decimal.Decimal
	Overtime       decimal.Decimal
	Holiday        decimal.Decimal
	Sunday         decimal.Decimal
	Absence        decimal.Decimal
	BenefitsInKind decimal.Decimal
	Gross          decimal.Decimal
}

// ComputeGross assembles gross pay: base salary, tiered overtime premiums,
// holiday and Sunday premiums, bonus and benefits in kind, minus the
// deduction for unpaid absence. Paid leave and maintained sick leave do not
// reduce gross (salary maintenance method).
//
// Overtime tiering: the first OvertimeTier1Hours beyond the monthly base are
// paid at 125%, any further hours at 150%. The tier boundary comes from the
// schedule, not from a constant.
func ComputeGross(in *domain.EmployeePeriodInput, schedule *domain.RateSchedule) GrossBreakdown {
	var b GrossBreakdown

	b.HourlyRate = in.BaseSalary.Div(schedule.BaseMonthlyHours)

	tier1 := decimal.Min(in.OvertimeHours, schedule.OvertimeTier1Hours)
	tier2 := in.OvertimeHours.Sub(tier1)
	b.Overtime = round2(tier1.Mul(b.HourlyRate).Mul(rate125).
		Add(tier2.Mul(b.HourlyRate).Mul(rate150)))

	b.Holiday = round2(in.HolidayHours.Mul(b.HourlyRate).Mul(rate200))
	b.Sunday = round2(in.SundayHours.Mul(b.HourlyRate).Mul(rate200))

	if in.AbsenceType == domain.AbsenceUnpaid && in.AbsenceHours.IsPositive() {
		b.Absence = round2(in.AbsenceHours.Mul(b.HourlyRate))
	}

	b.BenefitsInKind = in.HousingBenefit.Add(in.TransportBenefit)

	b.Gross = round2(in.BaseSalary.
		Add(b.Overtime).
		Add(b.Holiday).
		Add(b.Sunday).
		Add(in.Bonus).
		Add(b.BenefitsInKind).
		Sub(b.Absence))
	return b
}

// MealTicketSplit returns the employee and employer shares of the month's
// meal tickets. The employee share is withheld from net pay; the employer
// share is an employer cost. Neither enters the contribution base.
func MealTicketSplit(count int, rules domain.MealTicketRules) (employee, employer decimal.Decimal) {
	if count <= 0 {
		return decimal.Zero, decimal.Zero
	}
	total := rules.FaceValue.Mul(decimal.NewFromInt(int64(count)))
	employer = round2(total.Mul(rules.EmployerShare))
	employee = round2(total.Sub(employer))
	return employee, employer
}
