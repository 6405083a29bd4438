package domain

import (
	"github.com/shopspring/decimal"
)

// ChargeSide indicates which side of the payslip a contribution belongs to.
type ChargeSide string

const (
	SideEmployee ChargeSide = "employee"
	SideEmployer ChargeSide = "employer"
)

// ChargeBand selects the contribution base for a charge.
//
//	none    : full gross
//	t1      : tranche 1 slice only
//	t1_t2   : tranche 1 + tranche 2 slices
//	t2_only : tranche 2 slice only (strictly gross above the T1 ceiling,
//	          capped at the T2 ceiling)
type ChargeBand string

const (
	BandNone   ChargeBand = "none"
	BandT1     ChargeBand = "t1"
	BandT1T2   ChargeBand = "t1_t2"
	BandT2Only ChargeBand = "t2_only"
)

// ChargeDefinition describes one social contribution line for a fiscal year.
type ChargeDefinition struct {
	Code        string          `yaml:"code" json:"code"`
	Label       string          `yaml:"label" json:"label"`
	Side        ChargeSide      `yaml:"side" json:"side"`
	Band        ChargeBand      `yaml:"band" json:"band"`
	RatePercent decimal.Decimal `yaml:"rate_percent" json:"rate_percent"`
}

// Tranches holds the social security ceilings for a fiscal year.
// T1 spans 0..T1Ceiling, T2 spans T1Ceiling..T2Ceiling.
type Tranches struct {
	T1Ceiling decimal.Decimal `yaml:"t1_ceiling" json:"t1_ceiling"`
	T2Ceiling decimal.Decimal `yaml:"t2_ceiling" json:"t2_ceiling"`
}

// TaxBracket is one marginal bracket of a progressive withholding scale.
// UpTo is the monthly ceiling of the bracket; a zero UpTo marks the open
// top bracket.
type TaxBracket struct {
	UpTo decimal.Decimal `yaml:"up_to" json:"up_to"`
	Rate decimal.Decimal `yaml:"rate" json:"rate"`
}

// FranceTaxRules holds the CSG/CRDS surcharge and the monthly withholding
// scale applied to French-resident employees.
type FranceTaxRules struct {
	CSGBaseFactor        decimal.Decimal `yaml:"csg_base_factor" json:"csg_base_factor"`
	CSGDeductibleRate    decimal.Decimal `yaml:"csg_deductible_rate" json:"csg_deductible_rate"`
	CSGNonDeductibleRate decimal.Decimal `yaml:"csg_non_deductible_rate" json:"csg_non_deductible_rate"`
	CRDSRate             decimal.Decimal `yaml:"crds_rate" json:"crds_rate"`
	Brackets             []TaxBracket    `yaml:"brackets" json:"brackets"`
}

// ItalyTaxRules holds the monthly IRPEF scale and the Monaco source
// withholding credited against it for Italian-resident employees.
type ItalyTaxRules struct {
	MonacoCreditRate decimal.Decimal `yaml:"monaco_credit_rate" json:"monaco_credit_rate"`
	Brackets         []TaxBracket    `yaml:"brackets" json:"brackets"`
}

// YearEndPolicy decides what happens to the current-year leave balance when
// the calendar year rolls over.
type YearEndPolicy string

const (
	CarryOver YearEndPolicy = "carry"
	Forfeit   YearEndPolicy = "forfeit"
)

// PTOPolicy pins the paid-leave accrual parameters for a fiscal year.
type PTOPolicy struct {
	MonthlyAccrualDays decimal.Decimal `yaml:"monthly_accrual_days" json:"monthly_accrual_days"`
	HoursPerDay        decimal.Decimal `yaml:"hours_per_day" json:"hours_per_day"`
	YearEnd            YearEndPolicy   `yaml:"year_end" json:"year_end"`
	CarryOverCapDays   decimal.Decimal `yaml:"carry_over_cap_days" json:"carry_over_cap_days"`
}

// MealTicketRules splits the face value of meal tickets between the employer
// and the employee.
type MealTicketRules struct {
	FaceValue     decimal.Decimal `yaml:"face_value" json:"face_value"`
	EmployerShare decimal.Decimal `yaml:"employer_share" json:"employer_share"`
}

// RateSchedule is the complete regulatory data set for one fiscal year.
// It is loaded once from YAML and never mutated; every calculation receives
// it explicitly instead of consulting process-wide state.
type RateSchedule struct {
	Year               int                `yaml:"year" json:"year"`
	SMICHourly         decimal.Decimal    `yaml:"smic_hourly" json:"smic_hourly"`
	BaseMonthlyHours   decimal.Decimal    `yaml:"base_monthly_hours" json:"base_monthly_hours"`
	OvertimeTier1Hours decimal.Decimal    `yaml:"overtime_tier1_hours" json:"overtime_tier1_hours"`
	Tranches           Tranches           `yaml:"tranches" json:"tranches"`
	Charges            []ChargeDefinition `yaml:"charges" json:"charges"`
	France             FranceTaxRules     `yaml:"france" json:"france"`
	Italy              ItalyTaxRules      `yaml:"italy" json:"italy"`
	PTO                PTOPolicy          `yaml:"pto" json:"pto"`
	MealTickets        MealTicketRules    `yaml:"meal_tickets" json:"meal_tickets"`
}

// ChargesForSide returns the charge definitions applicable to one side,
// preserving schedule order.
func (rs *RateSchedule) ChargesForSide(side ChargeSide) []ChargeDefinition {
	var out []ChargeDefinition
	for _, c := range rs.Charges {
		if c.Side == side {
			out = append(out, c)
		}
	}
	return out
}
