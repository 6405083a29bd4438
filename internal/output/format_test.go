package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ledgerline/monacopay/internal/batch"
	"github.com/ledgerline/monacopay/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleOutcomes() []batch.Outcome {
	ok := &domain.PayslipResult{
		Matricule:  "M001",
		Name:       "Jean Dupont",
		Period:     domain.Period{Year: 2024, Month: 6},
		Gross:      d("3380.00"),
		Charges:    domain.ChargeResult{EmployeeTotal: d("951.47"), EmployerTotal: d("856.50")},
		Net:        d("2428.53"),
		NetPayable: d("2356.53"),
		CrossBorder: domain.CrossBorderResult{
			Country:     domain.CountryMonaco,
			NetAfterTax: d("2428.53"),
		},
	}

	flagged := &domain.PayslipResult{
		Matricule:  "M002",
		Name:       "Marie Martin",
		Period:     domain.Period{Year: 2024, Month: 6},
		Gross:      d("4500.00"),
		Charges:    domain.ChargeResult{EmployeeTotal: d("1266.75")},
		Net:        d("3233.25"),
		NetPayable: d("3233.25"),
		EdgeCase: domain.EdgeCaseStatus{
			Flagged:    true,
			Reason:     "gross deviates 25.0% from the baseline",
			Confidence: 0.55,
		},
	}

	return []batch.Outcome{
		{Matricule: "M001", Result: ok},
		{
			Matricule: "M002",
			Result:    flagged,
			Suggestions: []domain.EdgeCaseSuggestion{{
				Matricule:  "M002",
				Category:   domain.EdgeNone,
				Confidence: 0.55,
				Rationale:  "gross deviates 25.0% from the baseline",
			}},
		},
		{Matricule: "M003", Err: errors.New("validation: M003: field \"base_salary\": must not be negative")},
	}
}

func TestTableFormatter(t *testing.T) {
	tf := &TableFormatter{}
	out := tf.Format("SARL Test", "2024-06", sampleOutcomes())

	assert.Contains(t, out, "PAYROLL JOURNAL")
	assert.Contains(t, out, "SARL Test")
	assert.Contains(t, out, "M001")
	assert.Contains(t, out, "2428.53")

	// Flagged records get a detail section; failed records get their own.
	assert.Contains(t, out, "EDGE CASES")
	assert.Contains(t, out, "review")
	assert.Contains(t, out, "FAILED RECORDS")
	assert.Contains(t, out, "M003")

	// Failed records still hold their row so nobody disappears silently.
	assert.Contains(t, out, "ERROR")
}

func TestTableFormatterTruncatesOnRunes(t *testing.T) {
	tf := &TableFormatter{}

	t.Run("accented name column", func(t *testing.T) {
		outcomes := sampleOutcomes()
		outcomes[0].Result.Name = "Générosité-Beaulieu de la Tour d'Azur et Monté-Carlo"
		out := tf.Format("SARL Test", "2024-06", outcomes)
		assert.True(t, utf8.ValidString(out), "journal must stay valid UTF-8 after truncation")
		assert.Contains(t, out, "...")
	})

	t.Run("cut point inside a multi-byte rune", func(t *testing.T) {
		// 26 runes with the é straddling the byte a byte-indexed cut at
		// maxLen-3 would slice through.
		got := tf.truncate("aaaaaaaaaaaaaaaaaaaaaéaaaa", 25)
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaé...", got)
	})

	t.Run("short strings untouched", func(t *testing.T) {
		assert.Equal(t, "Jean Dupont", tf.truncate("Jean Dupont", 25))
	})
}

func TestJSONFormatter(t *testing.T) {
	jf := &JSONFormatter{Pretty: true}
	out, err := jf.Format("SARL Test", "2024-06", sampleOutcomes())
	require.NoError(t, err)

	var doc struct {
		Company  string `json:"company"`
		Period   string `json:"period"`
		Failures int    `json:"failures"`
		Records  []struct {
			Matricule string          `json:"matricule"`
			Result    json.RawMessage `json:"result"`
			Error     string          `json:"error"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, "SARL Test", doc.Company)
	assert.Equal(t, 1, doc.Failures)
	require.Len(t, doc.Records, 3)
	assert.NotEmpty(t, doc.Records[0].Result)
	assert.Empty(t, doc.Records[0].Error)
	assert.Empty(t, doc.Records[2].Result)
	assert.Contains(t, doc.Records[2].Error, "base_salary")
}

func TestCSVFormatter(t *testing.T) {
	cf := &CSVFormatter{}
	out, err := cf.Format(sampleOutcomes())
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus one row per outcome")

	assert.Equal(t, "Matricule", rows[0][0])
	assert.Equal(t, "M001", rows[1][0])
	assert.Equal(t, "ok", rows[1][len(rows[1])-1])
	assert.True(t, strings.HasPrefix(rows[2][len(rows[2])-1], "review:"))
	assert.True(t, strings.HasPrefix(rows[3][len(rows[3])-1], "error:"))
}
