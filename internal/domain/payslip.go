package domain

import (
	"github.com/shopspring/decimal"
)

// ChargeResult maps charge codes to rounded amounts, separated by side.
type ChargeResult struct {
	Employee      map[string]decimal.Decimal `json:"employee"`
	Employer      map[string]decimal.Decimal `json:"employer"`
	EmployeeTotal decimal.Decimal            `json:"employee_total"`
	EmployerTotal decimal.Decimal            `json:"employer_total"`
}

// CrossBorderResult is the residence-country tax overlay for one payslip.
type CrossBorderResult struct {
	Country                ResidenceCountry `json:"country"`
	CSGCRDS                decimal.Decimal  `json:"csg_crds"`
	CSGDeductible          decimal.Decimal  `json:"csg_deductible"`
	ProgressiveWithholding decimal.Decimal  `json:"progressive_withholding"`
	MonacoCredit           decimal.Decimal  `json:"monaco_credit"`
	AdditionalWithholding  decimal.Decimal  `json:"additional_withholding"`
	NetAfterTax            decimal.Decimal  `json:"net_after_tax"`
}

// AnomalyWarning is a non-fatal observation attached to a payslip result.
// It never blocks the calculation.
type AnomalyWarning struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// EdgeCaseStatus summarizes the agent decision recorded on a payslip.
type EdgeCaseStatus struct {
	Flagged    bool    `json:"flagged"`
	Reason     string  `json:"reason,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// PayslipResult is the complete output of one employee-period calculation.
// It is a pure function of the input, the prior PTO balance and the rate
// schedule: identical inputs always produce an identical result.
type PayslipResult struct {
	Matricule string `json:"matricule"`
	Name      string `json:"name"`
	Period    Period `json:"period"`

	HourlyRate     decimal.Decimal `json:"hourly_rate"`
	OvertimeAmount decimal.Decimal `json:"overtime_amount"`
	HolidayAmount  decimal.Decimal `json:"holiday_amount"`
	SundayAmount   decimal.Decimal `json:"sunday_amount"`
	AbsenceAmount  decimal.Decimal `json:"absence_amount"`
	BenefitsInKind decimal.Decimal `json:"benefits_in_kind"`

	Gross   decimal.Decimal `json:"gross"`
	Charges ChargeResult    `json:"charges"`
	// Net is gross minus employee contributions; the charge-sum invariant
	// (employee total + net == gross) holds on this figure.
	Net decimal.Decimal `json:"net"`

	CrossBorder         CrossBorderResult `json:"cross_border"`
	MealTicketDeduction decimal.Decimal   `json:"meal_ticket_deduction"`
	MealTicketEmployer  decimal.Decimal   `json:"meal_ticket_employer"`
	// NetPayable is what actually reaches the employee: net after tax minus
	// the employee share of meal tickets.
	NetPayable decimal.Decimal `json:"net_payable"`
	// EmployerCost is gross plus employer contributions plus the employer
	// share of meal tickets.
	EmployerCost decimal.Decimal `json:"employer_cost"`

	PTO PTOBalance `json:"pto"`

	EdgeCase EdgeCaseStatus   `json:"edge_case"`
	Warnings []AnomalyWarning `json:"warnings,omitempty"`
}
