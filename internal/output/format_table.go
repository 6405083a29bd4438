package output

import (
	"fmt"
	"strings"

	"github.com/ledgerline/monacopay/internal/batch"
	"github.com/shopspring/decimal"
)

// TableFormatter renders a batch run as a console journal: one row per
// employee, then detail sections for flagged edge cases and failures.
type TableFormatter struct{}

// Format generates the formatted payroll journal for one run.
func (tf *TableFormatter) Format(company string, period string, outcomes []batch.Outcome) string {
	var sb strings.Builder

	sb.WriteString("PAYROLL JOURNAL\n")
	sb.WriteString(strings.Repeat("=", 92) + "\n")
	sb.WriteString(fmt.Sprintf("Company: %s\n", company))
	sb.WriteString(fmt.Sprintf("Period:  %s\n", period))
	sb.WriteString("\n")

	nameWidth := 22
	numWidth := 12

	sb.WriteString(fmt.Sprintf("%-10s %-*s %*s %*s %*s %*s %s\n",
		"Matricule",
		nameWidth, "Name",
		numWidth, "Gross",
		numWidth, "Charges",
		numWidth, "Net",
		numWidth, "Net Payable",
		"Status"))
	sb.WriteString(strings.Repeat("-", 92) + "\n")

	var totalGross, totalCharges, totalNet, totalPayable decimal.Decimal
	var failed, flagged int

	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			sb.WriteString(fmt.Sprintf("%-10s %-*s %*s %*s %*s %*s ERROR\n",
				o.Matricule,
				nameWidth, "-",
				numWidth, "-", numWidth, "-", numWidth, "-", numWidth, "-"))
			continue
		}
		r := o.Result
		status := "ok"
		if r.EdgeCase.Flagged {
			status = "review"
			flagged++
		}
		if len(r.Warnings) > 0 {
			status += fmt.Sprintf(" (%d warn)", len(r.Warnings))
		}
		sb.WriteString(fmt.Sprintf("%-10s %-*s %*s %*s %*s %*s %s\n",
			o.Matricule,
			nameWidth, tf.truncate(r.Name, nameWidth),
			numWidth, r.Gross.StringFixed(2),
			numWidth, r.Charges.EmployeeTotal.StringFixed(2),
			numWidth, r.Net.StringFixed(2),
			numWidth, r.NetPayable.StringFixed(2),
			status))

		totalGross = totalGross.Add(r.Gross)
		totalCharges = totalCharges.Add(r.Charges.EmployeeTotal)
		totalNet = totalNet.Add(r.Net)
		totalPayable = totalPayable.Add(r.NetPayable)
	}

	sb.WriteString(strings.Repeat("-", 92) + "\n")
	sb.WriteString(fmt.Sprintf("%-10s %-*s %*s %*s %*s %*s\n",
		"TOTAL",
		nameWidth, fmt.Sprintf("%d employees", len(outcomes)-failed),
		numWidth, totalGross.StringFixed(2),
		numWidth, totalCharges.StringFixed(2),
		numWidth, totalNet.StringFixed(2),
		numWidth, totalPayable.StringFixed(2)))
	sb.WriteString(strings.Repeat("=", 92) + "\n")

	if flagged > 0 {
		sb.WriteString("\nEDGE CASES\n")
		sb.WriteString(strings.Repeat("-", 92) + "\n")
		for _, o := range outcomes {
			if o.Err != nil || !o.Result.EdgeCase.Flagged {
				continue
			}
			sb.WriteString(fmt.Sprintf("\n%s (confidence %.2f):\n", o.Matricule, o.Result.EdgeCase.Confidence))
			sb.WriteString(fmt.Sprintf("  %s\n", o.Result.EdgeCase.Reason))
			for _, sug := range o.Suggestions {
				applied := "review"
				if sug.AutoApplied {
					applied = "applied"
				}
				sb.WriteString(fmt.Sprintf("  [%s, %.2f, %s] %s\n",
					sug.Category, sug.Confidence, applied, sug.Rationale))
				for _, ch := range sug.Changes {
					sb.WriteString(fmt.Sprintf("    %s: %s -> %s\n",
						ch.Field, ch.Old.StringFixed(2), ch.New.StringFixed(2)))
				}
			}
		}
	}

	if failed > 0 {
		sb.WriteString("\nFAILED RECORDS\n")
		sb.WriteString(strings.Repeat("-", 92) + "\n")
		for _, o := range outcomes {
			if o.Err == nil {
				continue
			}
			sb.WriteString(fmt.Sprintf("%s: %v\n", o.Matricule, o.Err))
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// truncate shortens s to maxLen characters. It counts runes, not bytes, so
// accented names never get cut mid-character.
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
