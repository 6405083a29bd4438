package config

import (
	"fmt"
	"os"

	"github.com/ledgerline/monacopay/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var oneDecimal = decimal.NewFromInt(1)

// BatchInput is one company's payroll run for one period, as imported from
// the collaborator that owns data entry.
type BatchInput struct {
	Company   string                       `yaml:"company"`
	Period    domain.Period                `yaml:"period"`
	Employees []domain.EmployeePeriodInput `yaml:"employees"`
}

// LoadBatchFile reads and validates a payroll batch YAML file. Structural
// problems (unreadable file, empty batch) fail the load; per-employee data
// problems are deferred to the engine so one bad record cannot block the
// rest of the batch.
func LoadBatchFile(filename string) (*BatchInput, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file %s: %w", filename, err)
	}

	var batch BatchInput
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse batch file %s: %w", filename, err)
	}
	if err := validateBatch(&batch); err != nil {
		return nil, err
	}

	// Stamp the run period onto employees that did not carry their own.
	for i := range batch.Employees {
		if batch.Employees[i].Period == (domain.Period{}) {
			batch.Employees[i].Period = batch.Period
		}
	}
	return &batch, nil
}

func validateBatch(b *BatchInput) error {
	if b.Company == "" {
		return fmt.Errorf("batch: company is required")
	}
	if b.Period.Year == 0 || b.Period.Month < 1 || b.Period.Month > 12 {
		return fmt.Errorf("batch: period %s is not a valid month", b.Period)
	}
	if len(b.Employees) == 0 {
		return fmt.Errorf("batch: no employees")
	}

	seen := make(map[string]bool, len(b.Employees))
	for i, e := range b.Employees {
		if e.Matricule == "" {
			return fmt.Errorf("batch: employee %d has no matricule", i)
		}
		if seen[e.Matricule] {
			return fmt.Errorf("batch: duplicate matricule %s", e.Matricule)
		}
		seen[e.Matricule] = true
	}
	return nil
}

// ValidateEmployee checks one employee record for data problems that make
// the calculation meaningless. Returns a ValidationError with field-level
// detail; the engine calls this before computing anything.
func ValidateEmployee(in *domain.EmployeePeriodInput) error {
	if in.Matricule == "" {
		return &domain.ValidationError{Field: "matricule", Detail: "required", Err: domain.ErrInvalidInput}
	}
	if in.BaseSalary.IsNegative() {
		return &domain.ValidationError{Matricule: in.Matricule, Field: "base_salary",
			Detail: fmt.Sprintf("must not be negative, got %s", in.BaseSalary), Err: domain.ErrInvalidInput}
	}
	for _, h := range []struct {
		field string
		v     string
		neg   bool
	}{
		{"worked_hours", in.WorkedHours.String(), in.WorkedHours.IsNegative()},
		{"overtime_hours", in.OvertimeHours.String(), in.OvertimeHours.IsNegative()},
		{"holiday_hours", in.HolidayHours.String(), in.HolidayHours.IsNegative()},
		{"sunday_hours", in.SundayHours.String(), in.SundayHours.IsNegative()},
		{"absence_hours", in.AbsenceHours.String(), in.AbsenceHours.IsNegative()},
		{"pto_hours", in.PTOHours.String(), in.PTOHours.IsNegative()},
	} {
		if h.neg {
			return &domain.ValidationError{Matricule: in.Matricule, Field: h.field,
				Detail: fmt.Sprintf("must not be negative, got %s", h.v), Err: domain.ErrInvalidInput}
		}
	}
	if in.Bonus.IsNegative() {
		return &domain.ValidationError{Matricule: in.Matricule, Field: "bonus",
			Detail: "must not be negative", Err: domain.ErrInvalidInput}
	}
	if in.MealTickets < 0 {
		return &domain.ValidationError{Matricule: in.Matricule, Field: "meal_tickets",
			Detail: "must not be negative", Err: domain.ErrInvalidInput}
	}
	if in.WithholdingRate != nil && (in.WithholdingRate.IsNegative() || in.WithholdingRate.GreaterThan(oneDecimal)) {
		return &domain.ValidationError{Matricule: in.Matricule, Field: "withholding_rate",
			Detail: fmt.Sprintf("must be within [0,1], got %s", in.WithholdingRate), Err: domain.ErrInvalidInput}
	}
	return nil
}
