package output

import (
	"encoding/json"

	"github.com/ledgerline/monacopay/internal/batch"
)

// JSONFormatter serializes a batch run for downstream tooling.
type JSONFormatter struct {
	Pretty bool // If true, format with indentation
}

// jsonRun is the top-level document: the run header plus one record per
// employee. Errors are stringified so failed records survive the trip.
type jsonRun struct {
	Company  string       `json:"company"`
	Period   string       `json:"period"`
	Records  []jsonRecord `json:"records"`
	Failures int          `json:"failures"`
}

type jsonRecord struct {
	Matricule   string      `json:"matricule"`
	Result      interface{} `json:"result,omitempty"`
	Suggestions interface{} `json:"suggestions,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Format generates the JSON document for one run.
func (jf *JSONFormatter) Format(company string, period string, outcomes []batch.Outcome) (string, error) {
	run := jsonRun{
		Company: company,
		Period:  period,
		Records: make([]jsonRecord, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		rec := jsonRecord{Matricule: o.Matricule}
		if o.Err != nil {
			rec.Error = o.Err.Error()
			run.Failures++
		} else {
			rec.Result = o.Result
			if len(o.Suggestions) > 0 {
				rec.Suggestions = o.Suggestions
			}
		}
		run.Records = append(run.Records, rec)
	}

	var data []byte
	var err error
	if jf.Pretty {
		data, err = json.MarshalIndent(run, "", "  ")
	} else {
		data, err = json.Marshal(run)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
