// Package calculation computes one employee-period payslip: gross
// composition, tranche-based social charges, cross-border tax overlay and
// the paid-leave transition. Everything is a pure function of the input and
// the year's rate schedule; reproducibility is a regulatory requirement, so
// identical inputs must produce byte-identical results.
package calculation

import (
	"fmt"
	"log/slog"

	"github.com/ledgerline/monacopay/internal/config"
	"github.com/ledgerline/monacopay/internal/domain"
	"github.com/ledgerline/monacopay/internal/pto"
	"github.com/shopspring/decimal"
)

// Engine orchestrates the payslip calculation steps.
type Engine struct {
	Log *slog.Logger
}

// NewEngine creates an engine logging through the default slog handler.
func NewEngine() *Engine {
	return &Engine{Log: slog.Default()}
}

var (
	maxMonthlyOvertime = decimal.NewFromInt(48)
	chargeRatioFloor   = decimal.NewFromFloat(0.10)
	chargeRatioCeil    = decimal.NewFromFloat(0.50)
)

// ComputePayslip runs the full sequence for one employee-period: gross →
// social charges → cross-border overlay → PTO transition → assembly.
// ConfigError and ValidationError are scoped to this single record.
func (e *Engine) ComputePayslip(in *domain.EmployeePeriodInput, schedule *domain.RateSchedule) (*domain.PayslipResult, error) {
	if err := config.ValidateEmployee(in); err != nil {
		return nil, err
	}

	gross := ComputeGross(in, schedule)
	if gross.Gross.IsNegative() {
		return nil, &domain.ValidationError{
			Matricule: in.Matricule,
			Field:     "absence_hours",
			Detail:    fmt.Sprintf("deductions exceed pay, computed gross %s is negative", gross.Gross.StringFixed(2)),
			Err:       domain.ErrInvalidInput,
		}
	}
	charges := ComputeCharges(gross.Gross, schedule)
	net := gross.Gross.Sub(charges.EmployeeTotal)

	crossBorder, err := CrossBorder(in, gross.Gross, net, schedule)
	if err != nil {
		return nil, err
	}

	balance, err := pto.Transition(in.PriorBalance, in, schedule)
	if err != nil {
		return nil, err
	}

	mealEmployee, mealEmployer := MealTicketSplit(in.MealTickets, schedule.MealTickets)

	result := &domain.PayslipResult{
		Matricule:      in.Matricule,
		Name:           in.Name,
		Period:         in.Period,
		HourlyRate:     gross.HourlyRate.Round(4),
		OvertimeAmount: gross.Overtime,
		HolidayAmount:  gross.Holiday,
		SundayAmount:   gross.Sunday,
		AbsenceAmount:  gross.Absence,
		BenefitsInKind: gross.BenefitsInKind,
		Gross:          gross.Gross,
		Charges:        charges,
		Net:            net,
		CrossBorder:    crossBorder,

		MealTicketDeduction: mealEmployee,
		MealTicketEmployer:  mealEmployer,
		NetPayable:          crossBorder.NetAfterTax.Sub(mealEmployee),
		EmployerCost:        gross.Gross.Add(charges.EmployerTotal).Add(mealEmployer),

		PTO:      balance,
		Warnings: plausibilityWarnings(in, gross.Gross, charges, schedule),
	}

	e.Log.Debug("payslip computed",
		"matricule", in.Matricule,
		"period", in.Period.String(),
		"gross", result.Gross.StringFixed(2),
		"net", result.Net.StringFixed(2))
	return result, nil
}

// plausibilityWarnings attaches non-fatal anomaly observations for the
// accountant. They never block computation.
func plausibilityWarnings(in *domain.EmployeePeriodInput, gross decimal.Decimal, charges domain.ChargeResult, schedule *domain.RateSchedule) []domain.AnomalyWarning {
	var warnings []domain.AnomalyWarning

	smicMonthly := schedule.SMICHourly.Mul(schedule.BaseMonthlyHours)
	if in.AbsenceHours.IsZero() && gross.LessThan(smicMonthly) {
		warnings = append(warnings, domain.AnomalyWarning{
			Code:   "below_smic",
			Detail: fmt.Sprintf("gross %s below monthly SMIC %s", gross.StringFixed(2), smicMonthly.StringFixed(2)),
		})
	}

	if in.OvertimeHours.GreaterThan(maxMonthlyOvertime) {
		warnings = append(warnings, domain.AnomalyWarning{
			Code:   "excessive_overtime",
			Detail: fmt.Sprintf("%s overtime hours exceed the monthly legal cap of %s", in.OvertimeHours, maxMonthlyOvertime),
		})
	}

	if gross.IsPositive() {
		ratio := charges.EmployeeTotal.Div(gross)
		if ratio.LessThan(chargeRatioFloor) || ratio.GreaterThan(chargeRatioCeil) {
			warnings = append(warnings, domain.AnomalyWarning{
				Code:   "charge_ratio",
				Detail: fmt.Sprintf("employee charge ratio %s%% outside the expected 10%%-50%% range", ratio.Mul(hundred).StringFixed(1)),
			})
		}
	}
	return warnings
}
