package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EdgeCaseCategory classifies the situation detected for an employee-period.
type EdgeCaseCategory string

const (
	EdgeNewHire      EdgeCaseCategory = "new_hire"
	EdgeDeparture    EdgeCaseCategory = "departure"
	EdgeSalaryChange EdgeCaseCategory = "salary_change"
	EdgeBonus        EdgeCaseCategory = "bonus"
	EdgeUnpaidLeave  EdgeCaseCategory = "unpaid_leave"
	EdgeProrate      EdgeCaseCategory = "prorate"
	EdgeNone         EdgeCaseCategory = "none"
)

// FieldChange is one proposed mutation of an input field.
type FieldChange struct {
	Field string          `json:"field"`
	Old   decimal.Decimal `json:"old"`
	New   decimal.Decimal `json:"new"`
}

// EdgeCaseSuggestion is the agent's confidence-scored proposal for one
// detected category. Changes are applied automatically only above the
// auto-apply threshold; below it the suggestion goes to manual review
// untouched. Rationale is always populated.
type EdgeCaseSuggestion struct {
	Matricule   string           `json:"matricule"`
	Category    EdgeCaseCategory `json:"category"`
	Confidence  float64          `json:"confidence"`
	Changes     []FieldChange    `json:"changes,omitempty"`
	Rationale   string           `json:"rationale"`
	AutoApplied bool             `json:"auto_applied"`
}

// AuditEntry records an applied mutation for the accountant's audit trail.
type AuditEntry struct {
	Timestamp  time.Time       `json:"timestamp"`
	Matricule  string          `json:"matricule"`
	Period     Period          `json:"period"`
	Field      string          `json:"field"`
	Old        decimal.Decimal `json:"old"`
	New        decimal.Decimal `json:"new"`
	Reason     string          `json:"reason"`
	Confidence float64         `json:"confidence"`
	Automatic  bool            `json:"automatic"`
}
