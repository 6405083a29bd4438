// Package batch runs one company's monthly payroll across all employees.
// Each employee-period is independent, so records are processed in
// parallel; failures stay scoped to their record and never abort the run.
package batch

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/ledgerline/monacopay/internal/agent"
	"github.com/ledgerline/monacopay/internal/calculation"
	"github.com/ledgerline/monacopay/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// History is the prior-period state for one employee, resolved by the
// caller (the storage collaborator) before the run starts. The core never
// performs I/O itself.
type History struct {
	// GrossWindow holds prior gross values, oldest first, bounded by the
	// caller.
	GrossWindow []decimal.Decimal
	// PriorBalance overrides the balance carried in the input when the
	// store has a fresher one.
	PriorBalance *domain.PTOBalance
}

// Outcome is the per-record result of a batch run: either a payslip (with
// the agent's suggestions and audit trail) or the error that stopped this
// record. Never both.
type Outcome struct {
	Matricule   string
	Result      *domain.PayslipResult
	Suggestions []domain.EdgeCaseSuggestion
	Audit       []domain.AuditEntry
	Err         error
}

// Runner wires the calculation engine and the edge-case agent into a
// parallel monthly run.
type Runner struct {
	Engine  *calculation.Engine
	Agent   *agent.Agent
	Workers int
	Log     *slog.Logger
}

// NewRunner returns a runner with one worker per CPU.
func NewRunner() *Runner {
	return &Runner{
		Engine:  calculation.NewEngine(),
		Agent:   agent.NewAgent(),
		Workers: runtime.NumCPU(),
		Log:     slog.Default(),
	}
}

// Run computes every employee of the batch against the schedule. Outcomes
// are positionally aligned with inputs; a per-record error (ConfigError,
// ValidationError) fills Err and the run continues with the remaining
// employees.
func (r *Runner) Run(ctx context.Context, schedule *domain.RateSchedule, inputs []domain.EmployeePeriodInput, history map[string]History) []Outcome {
	outcomes := make([]Outcome, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)

	for i := range inputs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = Outcome{Matricule: inputs[i].Matricule, Err: err}
				return nil
			}
			outcomes[i] = r.runOne(inputs[i], schedule, history[inputs[i].Matricule])
			return nil
		})
	}
	// Workers only report through their outcome slot.
	_ = g.Wait()

	return outcomes
}

func (r *Runner) runOne(in domain.EmployeePeriodInput, schedule *domain.RateSchedule, h History) Outcome {
	in = in.Clone()
	if h.PriorBalance != nil {
		in.PriorBalance = *h.PriorBalance
	}

	result, err := r.Engine.ComputePayslip(&in, schedule)
	if err != nil {
		r.Log.Warn("payslip calculation failed",
			"matricule", in.Matricule, "period", in.Period.String(), "error", err)
		return Outcome{Matricule: in.Matricule, Err: err}
	}

	ev := r.Agent.Evaluate(in, result.Gross, h.GrossWindow)
	if ev.Mutated {
		corrected, err := r.Engine.ComputePayslip(&ev.Input, schedule)
		if err != nil {
			// The corrected input should never be less computable than the
			// original; keep the uncorrected payslip rather than fail the
			// record.
			r.Log.Warn("recalculation after auto-correction failed, keeping original",
				"matricule", in.Matricule, "error", err)
		} else {
			result = corrected
		}
	}
	result.EdgeCase = ev.Status

	return Outcome{
		Matricule:   in.Matricule,
		Result:      result,
		Suggestions: ev.Suggestions,
		Audit:       ev.Audit,
	}
}
