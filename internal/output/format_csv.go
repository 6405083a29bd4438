package output

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/ledgerline/monacopay/internal/batch"
)

// CSVFormatter renders a batch run as CSV, one line per employee. Failed
// records keep their row with the error in the status column so totals in
// a spreadsheet never silently drop anyone.
type CSVFormatter struct{}

// Format generates CSV output for one run.
func (cf *CSVFormatter) Format(outcomes []batch.Outcome) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Matricule",
		"Name",
		"Period",
		"Gross",
		"Employee Charges",
		"Employer Charges",
		"Net",
		"Withholding",
		"Meal Tickets",
		"Net Payable",
		"Employer Cost",
		"PTO Remaining",
		"Status",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for _, o := range outcomes {
		if err := writer.Write(cf.formatRow(o)); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (cf *CSVFormatter) formatRow(o batch.Outcome) []string {
	if o.Err != nil {
		return []string{o.Matricule, "", "", "", "", "", "", "", "", "", "", "", fmt.Sprintf("error: %v", o.Err)}
	}
	r := o.Result
	status := "ok"
	if r.EdgeCase.Flagged {
		status = fmt.Sprintf("review: %s", r.EdgeCase.Reason)
	}
	return []string{
		r.Matricule,
		r.Name,
		r.Period.String(),
		r.Gross.StringFixed(2),
		r.Charges.EmployeeTotal.StringFixed(2),
		r.Charges.EmployerTotal.StringFixed(2),
		r.Net.StringFixed(2),
		r.CrossBorder.AdditionalWithholding.StringFixed(2),
		r.MealTicketDeduction.StringFixed(2),
		r.NetPayable.StringFixed(2),
		r.EmployerCost.StringFixed(2),
		r.PTO.TotalRemaining().StringFixed(2),
		status,
	}
}
