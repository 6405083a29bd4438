// Package agent detects payroll edge cases for one employee-period and
// decides, per suggestion, between bounded auto-correction and manual
// review. It reconciles three independent signals: free-text remark
// classification, statistical deviation from the employee's own history,
// and direct field deltas such as a newly populated departure date.
package agent

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ledgerline/monacopay/internal/domain"
	"github.com/shopspring/decimal"
)

// AutoApplyThreshold is the confidence above which a suggestion's field
// changes are applied without accountant intervention. At or below it the
// suggestion is emitted for review only, with no mutation.
const AutoApplyThreshold = 0.85

const (
	// trendOnlyCap bounds the confidence of suggestions backed solely by a
	// statistical deviation, with no remark or field evidence.
	trendOnlyCap = 0.60

	// dataEntryConfidence applies to decimal-shift corrections (a value 10x
	// or 0.1x the previous month), the most clear-cut input error.
	dataEntryConfidence = 0.98

	// businessDaysPerMonth is the proration denominator used by the
	// accountants for partial months.
	businessDaysPerMonth = 22
)

var (
	ten        = decimal.NewFromInt(10)
	tenthLow   = decimal.NewFromFloat(0.095)
	tenthHigh  = decimal.NewFromFloat(0.105)
	tenLow     = decimal.NewFromFloat(9.5)
	tenHigh    = decimal.NewFromFloat(10.5)
	prorateMin = decimal.NewFromFloat(0.10)
	fieldBase  = "base_salary"
)

// Agent evaluates one employee-period at a time. Safe for concurrent use;
// it holds no per-employee state.
type Agent struct {
	Trend *TrendAnalyzer
	Log   *slog.Logger
	Now   func() time.Time
}

// NewAgent returns an agent with default trend thresholds.
func NewAgent() *Agent {
	return &Agent{Trend: NewTrendAnalyzer(), Log: slog.Default(), Now: time.Now}
}

// Evaluation is the agent's verdict for one employee-period.
type Evaluation struct {
	// Input is the (possibly corrected) employee input. Mutated reports
	// whether any auto-applied change differs from the original; callers
	// must recompute the payslip when it does.
	Input   domain.EmployeePeriodInput
	Mutated bool

	Suggestions []domain.EdgeCaseSuggestion
	Audit       []domain.AuditEntry
	Status      domain.EdgeCaseStatus
}

// Evaluate reconciles the remark, trend and field-delta signals for one
// employee into confidence-scored suggestions, auto-applying those above
// the threshold.
//
// Confidence combination (documented decision): a remark-derived score r is
// lifted by a corroborating trend anomaly of strength t to r + (1-r)*t/2;
// when the history is sufficient, steady, and the category predicts a gross
// move that did not happen, r is reduced to 0.85*r; with insufficient
// history r stands alone. A trend anomaly that nothing explains yields its
// own review-only suggestion capped at 0.60.
func (a *Agent) Evaluate(in domain.EmployeePeriodInput, gross decimal.Decimal, history []decimal.Decimal) Evaluation {
	ev := Evaluation{Input: in.Clone()}

	matches := ParseRemark(in.Remark)
	matches = a.addFieldDeltas(&in, matches)
	trend := a.Trend.Analyze(history, gross)

	explained := false
	for _, m := range matches {
		if m.Category == domain.EdgeNone {
			continue
		}
		explained = true
		sug := a.buildSuggestion(&in, m, trend)
		ev.Suggestions = append(ev.Suggestions, sug)
	}

	if sug, ok := a.decimalShiftSuggestion(&in, gross, history); ok {
		ev.Suggestions = append(ev.Suggestions, sug)
		explained = true
	}

	if trend.Anomalous && !explained {
		ev.Suggestions = append(ev.Suggestions, domain.EdgeCaseSuggestion{
			Matricule:  in.Matricule,
			Category:   domain.EdgeNone,
			Confidence: trendOnlyCap * trend.Score,
			Rationale: fmt.Sprintf("gross %s deviates %.1f%% from the %d-period baseline %.2f (stddev %.2f) with no remark explaining it",
				gross.StringFixed(2), trend.RelativeDelta*100, len(history), trend.Mean, trend.StdDev),
		})
	}

	a.apply(&ev, in.Period)
	return ev
}

// addFieldDeltas injects categories implied directly by the input fields,
// independent of the remark text.
func (a *Agent) addFieldDeltas(in *domain.EmployeePeriodInput, matches []RemarkMatch) []RemarkMatch {
	upsert := func(cat domain.EdgeCaseCategory, conf float64, params map[string]string) {
		for i := range matches {
			if matches[i].Category == cat {
				if conf > matches[i].Confidence {
					matches[i].Confidence = conf
				}
				for k, v := range params {
					if _, exists := matches[i].Params[k]; !exists {
						matches[i].Params[k] = v
					}
				}
				return
			}
		}
		matches = append(matches, RemarkMatch{Category: cat, Confidence: conf, Params: params})
	}

	if d := in.DepartureDate; d != nil && d.Year() == in.Period.Year && int(d.Month()) == in.Period.Month {
		upsert(domain.EdgeDeparture, 0.95, map[string]string{"day": strconv.Itoa(d.Day())})
	}
	if h := in.HireDate; h != nil && h.Year() == in.Period.Year && int(h.Month()) == in.Period.Month && h.Day() > 1 {
		upsert(domain.EdgeNewHire, 0.95, map[string]string{"day": strconv.Itoa(h.Day())})
	}
	return matches
}

// movePredicting reports whether a category normally shows up as a gross
// move, making a trend anomaly corroborating evidence.
func movePredicting(cat domain.EdgeCaseCategory) bool {
	switch cat {
	case domain.EdgeNewHire, domain.EdgeDeparture, domain.EdgeSalaryChange,
		domain.EdgeBonus, domain.EdgeUnpaidLeave, domain.EdgeProrate:
		return true
	}
	return false
}

func (a *Agent) combine(remark float64, trend TrendSignal, predictsMove bool) float64 {
	if !trend.Sufficient || !predictsMove {
		return remark
	}
	if trend.Anomalous {
		c := remark + (1-remark)*0.5*trend.Score
		if c > 1 {
			c = 1
		}
		return c
	}
	// The category predicts a gross move but the history is steady.
	return remark * 0.85
}

func (a *Agent) buildSuggestion(in *domain.EmployeePeriodInput, m RemarkMatch, trend TrendSignal) domain.EdgeCaseSuggestion {
	sug := domain.EdgeCaseSuggestion{
		Matricule:  in.Matricule,
		Category:   m.Category,
		Confidence: a.combine(m.Confidence, trend, movePredicting(m.Category)),
	}

	switch m.Category {
	case domain.EdgeNewHire, domain.EdgeDeparture:
		day, hasDay := dayParam(m.Params)
		if !hasDay {
			sug.Rationale = fmt.Sprintf("%s indicated by %q but no start/end day was given; proration cannot be proposed", m.Category, in.Remark)
			// Nothing to propose safely: review only.
			if sug.Confidence > AutoApplyThreshold {
				sug.Confidence = AutoApplyThreshold
			}
			return sug
		}
		worked := workedBusinessDays(m.Category, day)
		factor := decimal.NewFromInt(int64(worked)).Div(decimal.NewFromInt(businessDaysPerMonth))
		proposed := in.BaseSalary.Mul(factor).Round(2)
		sug.Rationale = fmt.Sprintf("%s on day %d: pro-rate base salary by %d/%d business days (%s -> %s)",
			m.Category, day, worked, businessDaysPerMonth, in.BaseSalary.StringFixed(2), proposed.StringFixed(2))

		// Only worth changing when the input still looks like a full-month
		// salary.
		if in.BaseSalary.IsPositive() &&
			in.BaseSalary.Sub(proposed).Abs().Div(in.BaseSalary).GreaterThan(prorateMin) {
			sug.Changes = []domain.FieldChange{{Field: fieldBase, Old: in.BaseSalary, New: proposed}}
		}

	case domain.EdgeBonus:
		sug.Rationale = fmt.Sprintf("remark %q mentions a bonus; declared bonus amount is %s, verify it", in.Remark, in.Bonus.StringFixed(2))

	case domain.EdgeUnpaidLeave:
		sug.Rationale = fmt.Sprintf("remark %q mentions unpaid leave; declared absence is %s hours (%s)", in.Remark, in.AbsenceHours, in.AbsenceType)

	case domain.EdgeSalaryChange:
		sug.Rationale = fmt.Sprintf("remark %q announces a salary change; base salary is %s", in.Remark, in.BaseSalary.StringFixed(2))

	case domain.EdgeProrate:
		sug.Rationale = fmt.Sprintf("remark %q requests proration", in.Remark)
		if start, okS := m.Params["range_start"]; okS {
			if end, okE := m.Params["range_end"]; okE {
				sug.Rationale = fmt.Sprintf("remark %q requests proration for days %s to %s", in.Remark, start, end)
			}
		}
	}
	return sug
}

// decimalShiftSuggestion detects the classic data-entry error of an extra
// or missing zero by comparing the current gross to last period's.
func (a *Agent) decimalShiftSuggestion(in *domain.EmployeePeriodInput, gross decimal.Decimal, history []decimal.Decimal) (domain.EdgeCaseSuggestion, bool) {
	if len(history) == 0 || !in.BaseSalary.IsPositive() {
		return domain.EdgeCaseSuggestion{}, false
	}
	prev := history[len(history)-1]
	if !prev.IsPositive() || !gross.IsPositive() {
		return domain.EdgeCaseSuggestion{}, false
	}

	ratio := gross.Div(prev)
	var proposed decimal.Decimal
	var direction string
	switch {
	case ratio.GreaterThanOrEqual(tenLow) && ratio.LessThanOrEqual(tenHigh):
		proposed = in.BaseSalary.Div(ten).Round(2)
		direction = "10x the previous period (extra zero)"
	case ratio.GreaterThanOrEqual(tenthLow) && ratio.LessThanOrEqual(tenthHigh):
		proposed = in.BaseSalary.Mul(ten).Round(2)
		direction = "a tenth of the previous period (missing zero)"
	default:
		return domain.EdgeCaseSuggestion{}, false
	}

	return domain.EdgeCaseSuggestion{
		Matricule:  in.Matricule,
		Category:   domain.EdgeSalaryChange,
		Confidence: dataEntryConfidence,
		Changes:    []domain.FieldChange{{Field: fieldBase, Old: in.BaseSalary, New: proposed}},
		Rationale: fmt.Sprintf("gross %s is %s (%s); correct base salary %s -> %s",
			gross.StringFixed(2), direction, prev.StringFixed(2), in.BaseSalary.StringFixed(2), proposed.StringFixed(2)),
	}, true
}

// apply executes the decision rule over the collected suggestions: changes
// above the threshold mutate the working input and produce audit entries;
// everything else stays untouched for review. The result status reflects
// the strongest suggestion either way so the review UI can surface it.
func (a *Agent) apply(ev *Evaluation, period domain.Period) {
	for i := range ev.Suggestions {
		sug := &ev.Suggestions[i]

		if sug.Confidence > AutoApplyThreshold && len(sug.Changes) > 0 {
			applied := false
			for _, ch := range sug.Changes {
				if !setField(&ev.Input, ch) {
					a.Log.Warn("unknown field in suggestion, skipping change",
						"matricule", sug.Matricule, "field", ch.Field)
					continue
				}
				applied = true
				ev.Audit = append(ev.Audit, domain.AuditEntry{
					Timestamp:  a.Now().UTC(),
					Matricule:  sug.Matricule,
					Period:     period,
					Field:      ch.Field,
					Old:        ch.Old,
					New:        ch.New,
					Reason:     sug.Rationale,
					Confidence: sug.Confidence,
					Automatic:  true,
				})
			}
			sug.AutoApplied = applied
			if applied {
				ev.Mutated = true
			}
		}

		if sug.Confidence > ev.Status.Confidence {
			ev.Status = domain.EdgeCaseStatus{
				Flagged:    true,
				Reason:     sug.Rationale,
				Confidence: sug.Confidence,
			}
		}
	}
}

func setField(in *domain.EmployeePeriodInput, ch domain.FieldChange) bool {
	switch ch.Field {
	case fieldBase:
		in.BaseSalary = ch.New
	case "bonus":
		in.Bonus = ch.New
	case "worked_hours":
		in.WorkedHours = ch.New
	case "overtime_hours":
		in.OvertimeHours = ch.New
	default:
		return false
	}
	return true
}

func dayParam(params map[string]string) (int, bool) {
	s, ok := params["day"]
	if !ok {
		return 0, false
	}
	d, err := strconv.Atoi(s)
	if err != nil || d < 1 || d > 31 {
		return 0, false
	}
	return d, true
}

// workedBusinessDays maps a calendar start/end day to the business days
// actually worked, on the accountants' 22-day convention.
func workedBusinessDays(cat domain.EdgeCaseCategory, day int) int {
	if cat == domain.EdgeDeparture {
		if day > businessDaysPerMonth {
			return businessDaysPerMonth
		}
		return day
	}
	worked := businessDaysPerMonth - day + 1
	if worked < 1 {
		return 1
	}
	if worked > businessDaysPerMonth {
		return businessDaysPerMonth
	}
	return worked
}
