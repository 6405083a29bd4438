package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/ledgerline/monacopay/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// RateSet holds the rate schedules loaded from disk, keyed by fiscal year.
// Immutable once loaded; lookups for absent years fail, there are no
// hardcoded fallback rates.
type RateSet struct {
	schedules map[int]*domain.RateSchedule
}

// rateFile is the on-disk layout of a rates YAML file.
type rateFile struct {
	Schedules []domain.RateSchedule `yaml:"schedules"`
}

// LoadRateFile reads and validates a rates YAML file.
func LoadRateFile(filename string) (*RateSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate file %s: %w", filename, err)
	}

	var rf rateFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse rate file %s: %w", filename, err)
	}
	if len(rf.Schedules) == 0 {
		return nil, &domain.ConfigError{Op: "load rates", Detail: fmt.Sprintf("%s contains no schedules", filename)}
	}

	rs := &RateSet{schedules: make(map[int]*domain.RateSchedule, len(rf.Schedules))}
	for i := range rf.Schedules {
		s := &rf.Schedules[i]
		if err := validateSchedule(s); err != nil {
			return nil, fmt.Errorf("schedule for year %d invalid: %w", s.Year, err)
		}
		if _, dup := rs.schedules[s.Year]; dup {
			return nil, &domain.ConfigError{Op: "load rates", Detail: fmt.Sprintf("duplicate schedule for year %d", s.Year)}
		}
		rs.schedules[s.Year] = s
	}
	return rs, nil
}

// ForYear returns the schedule for a fiscal year, or a ConfigError wrapping
// ErrScheduleNotFound when the year is absent.
func (rs *RateSet) ForYear(year int) (*domain.RateSchedule, error) {
	s, ok := rs.schedules[year]
	if !ok {
		return nil, &domain.ConfigError{
			Op:     "rate lookup",
			Detail: fmt.Sprintf("no schedule for year %d", year),
			Err:    domain.ErrScheduleNotFound,
		}
	}
	return s, nil
}

// Years returns the fiscal years present in the set.
func (rs *RateSet) Years() []int {
	years := make([]int, 0, len(rs.schedules))
	for y := range rs.schedules {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func validateSchedule(s *domain.RateSchedule) error {
	if s.Year < 2000 || s.Year > 2100 {
		return fmt.Errorf("year %d out of range", s.Year)
	}
	if !s.Tranches.T1Ceiling.IsPositive() {
		return fmt.Errorf("t1_ceiling must be positive, got %s", s.Tranches.T1Ceiling)
	}
	if s.Tranches.T2Ceiling.LessThanOrEqual(s.Tranches.T1Ceiling) {
		return fmt.Errorf("t2_ceiling (%s) must exceed t1_ceiling (%s)",
			s.Tranches.T2Ceiling, s.Tranches.T1Ceiling)
	}
	if !s.BaseMonthlyHours.IsPositive() {
		return fmt.Errorf("base_monthly_hours must be positive")
	}
	if !s.SMICHourly.IsPositive() {
		return fmt.Errorf("smic_hourly must be positive")
	}
	if s.OvertimeTier1Hours.IsNegative() {
		return fmt.Errorf("overtime_tier1_hours must not be negative")
	}
	if len(s.Charges) == 0 {
		return fmt.Errorf("no charge definitions")
	}

	seen := make(map[string]bool, len(s.Charges))
	for i, c := range s.Charges {
		if c.Code == "" {
			return fmt.Errorf("charge %d has no code", i)
		}
		switch c.Side {
		case domain.SideEmployee, domain.SideEmployer:
		default:
			return fmt.Errorf("charge %s: unknown side %q", c.Code, c.Side)
		}
		switch c.Band {
		case domain.BandNone, domain.BandT1, domain.BandT1T2, domain.BandT2Only:
		default:
			return fmt.Errorf("charge %s: unknown band %q", c.Code, c.Band)
		}
		if !c.RatePercent.IsPositive() || c.RatePercent.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("charge %s: rate %s%% out of range", c.Code, c.RatePercent)
		}
		key := c.Code + "/" + string(c.Side)
		if seen[key] {
			return fmt.Errorf("duplicate charge %s on side %s", c.Code, c.Side)
		}
		seen[key] = true
	}

	if err := validatePTOPolicy(&s.PTO); err != nil {
		return err
	}
	if err := validateBrackets("france", s.France.Brackets); err != nil {
		return err
	}
	if err := validateBrackets("italy", s.Italy.Brackets); err != nil {
		return err
	}
	if s.Italy.MonacoCreditRate.IsNegative() || s.Italy.MonacoCreditRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("italy monaco_credit_rate %s out of [0,1]", s.Italy.MonacoCreditRate)
	}
	return nil
}

func validatePTOPolicy(p *domain.PTOPolicy) error {
	if !p.MonthlyAccrualDays.IsPositive() {
		return fmt.Errorf("pto monthly_accrual_days must be positive")
	}
	if !p.HoursPerDay.IsPositive() {
		return fmt.Errorf("pto hours_per_day must be positive")
	}
	switch p.YearEnd {
	case domain.CarryOver, domain.Forfeit:
	default:
		return fmt.Errorf("pto year_end must be %q or %q, got %q",
			domain.CarryOver, domain.Forfeit, p.YearEnd)
	}
	if p.YearEnd == domain.CarryOver && p.CarryOverCapDays.IsNegative() {
		return fmt.Errorf("pto carry_over_cap_days must not be negative")
	}
	return nil
}

func validateBrackets(scale string, brackets []domain.TaxBracket) error {
	if len(brackets) == 0 {
		return fmt.Errorf("%s withholding scale has no brackets", scale)
	}
	prev := decimal.Zero
	for i, b := range brackets {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%s bracket %d: rate %s out of [0,1]", scale, i, b.Rate)
		}
		open := b.UpTo.IsZero()
		if open && i != len(brackets)-1 {
			return fmt.Errorf("%s bracket %d: only the last bracket may be open", scale, i)
		}
		if !open && b.UpTo.LessThanOrEqual(prev) {
			return fmt.Errorf("%s bracket %d: ceiling %s not increasing", scale, i, b.UpTo)
		}
		prev = b.UpTo
	}
	return nil
}
