package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ledgerline/monacopay/internal/batch"
	"github.com/ledgerline/monacopay/internal/config"
	"github.com/ledgerline/monacopay/internal/output"
	"github.com/ledgerline/monacopay/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyWindow is how many prior months feed the trend analyzer.
const historyWindow = 12

func calculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate [batch-file]",
		Short: "Run a monthly payroll batch",
		Long: `Calculate reads a payroll batch file (company, period, employees),
computes every payslip against the rate schedule for the batch year, and
writes the payroll journal. Records that fail keep their slot in the
output; they never abort the run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ratesFile, _ := cmd.Flags().GetString("rates")
			dbPath, _ := cmd.Flags().GetString("db")
			format, _ := cmd.Flags().GetString("format")
			outFile, _ := cmd.Flags().GetString("output")
			workers, _ := cmd.Flags().GetInt("workers")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			rates, err := config.LoadRateFile(ratesFile)
			if err != nil {
				return err
			}
			in, err := config.LoadBatchFile(args[0])
			if err != nil {
				return err
			}
			schedule, err := rates.ForYear(in.Period.Year)
			if err != nil {
				return err
			}

			store, err := storage.Open(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open history database: %w", err)
			}
			defer store.Close()

			history := make(map[string]batch.History, len(in.Employees))
			for i := range in.Employees {
				emp := &in.Employees[i]
				window, err := store.GrossHistory(in.Company, emp.Matricule, emp.Period, historyWindow)
				if err != nil {
					return err
				}
				balance, err := store.PriorBalance(in.Company, emp.Matricule, emp.Period)
				if err != nil {
					return err
				}
				history[emp.Matricule] = batch.History{GrossWindow: window, PriorBalance: balance}
			}

			runner := batch.NewRunner()
			if workers > 0 {
				runner.Workers = workers
			}
			outcomes := runner.Run(cmd.Context(), schedule, in.Employees, history)

			if !dryRun {
				for _, o := range outcomes {
					if o.Err != nil {
						continue
					}
					if err := store.SavePayslip(in.Company, o.Result); err != nil {
						return err
					}
					if err := store.SaveAudit(in.Company, o.Audit); err != nil {
						return err
					}
				}
			}

			rendered, err := renderOutcomes(format, in.Company, in.Period.String(), outcomes)
			if err != nil {
				return err
			}
			if outFile != "" {
				if err := os.WriteFile(outFile, []byte(rendered), 0o644); err != nil {
					return fmt.Errorf("failed to write output file: %w", err)
				}
			} else {
				fmt.Fprint(os.Stdout, rendered)
			}

			failed := 0
			for _, o := range outcomes {
				if o.Err != nil {
					failed++
				}
			}
			slog.Info("Batch complete",
				"company", in.Company,
				"period", in.Period.String(),
				"employees", len(outcomes),
				"failed", failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d records failed", failed, len(outcomes))
			}
			return nil
		},
	}

	cmd.Flags().String("rates", "data/rates.yaml", "rate schedule YAML file")
	cmd.Flags().String("db", defaultDBPath(), "history database path")
	cmd.Flags().String("format", "table", "output format (table, json, csv)")
	cmd.Flags().String("output", "", "write the journal to a file instead of stdout")
	cmd.Flags().Int("workers", 0, "parallel workers (0 = one per CPU)")
	cmd.Flags().Bool("dry-run", false, "compute without persisting results")

	_ = viper.BindPFlag("rates", cmd.Flags().Lookup("rates"))
	_ = viper.BindPFlag("db", cmd.Flags().Lookup("db"))

	return cmd
}

func renderOutcomes(format, company, period string, outcomes []batch.Outcome) (string, error) {
	switch format {
	case "table":
		tf := &output.TableFormatter{}
		return tf.Format(company, period, outcomes), nil
	case "json":
		jf := &output.JSONFormatter{Pretty: true}
		return jf.Format(company, period, outcomes)
	case "csv":
		cf := &output.CSVFormatter{}
		return cf.Format(outcomes)
	default:
		return "", fmt.Errorf("invalid output format: %s", format)
	}
}

func defaultDBPath() string {
	if p := viper.GetString("db"); p != "" {
		return p
	}
	return "monacopay.db"
}
