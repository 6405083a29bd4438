package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ResidenceCountry selects the cross-border tax treatment of an employee.
type ResidenceCountry string

const (
	CountryMonaco ResidenceCountry = "monaco"
	CountryFrance ResidenceCountry = "france"
	CountryItaly  ResidenceCountry = "italy"
)

// BonusType qualifies a bonus for reporting purposes. All bonus types are
// subject to social contributions.
type BonusType string

const (
	BonusPerformance BonusType = "performance"
	BonusSeniority   BonusType = "seniority"
	BonusThirteenth  BonusType = "thirteenth_month"
	BonusExceptional BonusType = "exceptional"
)

// AbsenceType qualifies unworked hours. Only unpaid absence reduces gross;
// sick leave with salary maintenance and paid leave are neutral.
type AbsenceType string

const (
	AbsenceUnpaid         AbsenceType = "unpaid"
	AbsenceSickMaintained AbsenceType = "sick_maintained"
	AbsencePaidLeave      AbsenceType = "paid_leave"
)

// Period identifies one payroll month.
type Period struct {
	Year  int `yaml:"year" json:"year"`
	Month int `yaml:"month" json:"month"`
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Previous returns the preceding payroll month.
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// IsYearStart reports whether the period opens a new calendar year, which is
// when the leave carry-over policy applies.
func (p Period) IsYearStart() bool {
	return p.Month == 1
}

// PTOBalance tracks paid-leave entitlement across two reference years: the
// bucket carried from year N-1 and the bucket accruing in year N. It is
// transitioned once per period by the ledger and re-supplied as input to the
// next period's calculation.
type PTOBalance struct {
	AcquiredPrev  decimal.Decimal `yaml:"acquired_prev" json:"acquired_prev"`
	TakenPrev     decimal.Decimal `yaml:"taken_prev" json:"taken_prev"`
	RemainingPrev decimal.Decimal `yaml:"remaining_prev" json:"remaining_prev"`
	Acquired      decimal.Decimal `yaml:"acquired" json:"acquired"`
	Taken         decimal.Decimal `yaml:"taken" json:"taken"`
	Remaining     decimal.Decimal `yaml:"remaining" json:"remaining"`
}

// TotalRemaining returns the leave days still available across both buckets.
func (b PTOBalance) TotalRemaining() decimal.Decimal {
	return b.RemainingPrev.Add(b.Remaining)
}

// EmployeePeriodInput is one employee's raw payroll data for one period, as
// supplied by the import collaborator. All hour counts and amounts are
// monthly values.
type EmployeePeriodInput struct {
	Matricule string `yaml:"matricule" json:"matricule"`
	Name      string `yaml:"name" json:"name"`
	Period    Period `yaml:"period" json:"period"`

	BaseSalary    decimal.Decimal `yaml:"base_salary" json:"base_salary"`
	WorkedHours   decimal.Decimal `yaml:"worked_hours" json:"worked_hours"`
	OvertimeHours decimal.Decimal `yaml:"overtime_hours" json:"overtime_hours"`
	HolidayHours  decimal.Decimal `yaml:"holiday_hours" json:"holiday_hours"`
	SundayHours   decimal.Decimal `yaml:"sunday_hours" json:"sunday_hours"`
	AbsenceHours  decimal.Decimal `yaml:"absence_hours" json:"absence_hours"`
	AbsenceType   AbsenceType     `yaml:"absence_type" json:"absence_type"`
	PTOHours      decimal.Decimal `yaml:"pto_hours" json:"pto_hours"`

	Bonus     decimal.Decimal `yaml:"bonus" json:"bonus"`
	BonusType BonusType       `yaml:"bonus_type" json:"bonus_type"`

	MealTickets      int             `yaml:"meal_tickets" json:"meal_tickets"`
	HousingBenefit   decimal.Decimal `yaml:"housing_benefit" json:"housing_benefit"`
	TransportBenefit decimal.Decimal `yaml:"transport_benefit" json:"transport_benefit"`

	ResidenceCountry ResidenceCountry `yaml:"residence_country" json:"residence_country"`
	// WithholdingRate is the personal withholding rate communicated by the
	// French tax administration; nil means the default scale applies.
	WithholdingRate *decimal.Decimal `yaml:"withholding_rate,omitempty" json:"withholding_rate,omitempty"`

	HireDate      *time.Time `yaml:"hire_date,omitempty" json:"hire_date,omitempty"`
	DepartureDate *time.Time `yaml:"departure_date,omitempty" json:"departure_date,omitempty"`

	Remark string `yaml:"remark" json:"remark"`

	// PriorBalance is the PTO balance produced by the previous period's
	// calculation, resolved by the caller before invoking the engine.
	PriorBalance PTOBalance `yaml:"prior_balance" json:"prior_balance"`
}

// Clone returns a deep copy safe to mutate independently of the original.
func (in EmployeePeriodInput) Clone() EmployeePeriodInput {
	out := in
	if in.WithholdingRate != nil {
		r := *in.WithholdingRate
		out.WithholdingRate = &r
	}
	if in.HireDate != nil {
		d := *in.HireDate
		out.HireDate = &d
	}
	if in.DepartureDate != nil {
		d := *in.DepartureDate
		out.DepartureDate = &d
	}
	return out
}
