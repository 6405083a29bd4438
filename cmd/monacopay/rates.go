package main

import (
	"fmt"
	"os"

	"github.com/ledgerline/monacopay/internal/config"
	"github.com/spf13/cobra"
)

func ratesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Inspect and validate rate schedules",
	}
	cmd.AddCommand(ratesValidateCmd(), ratesListCmd())
	return cmd
}

func ratesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [rates-file]",
		Short: "Validate a rate schedule file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rates, err := config.LoadRateFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s: ok (%d schedules)\n", args[0], len(rates.Years()))
			return nil
		},
	}
}

func ratesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [rates-file]",
		Short: "List the schedules in a rate file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rates, err := config.LoadRateFile(args[0])
			if err != nil {
				return err
			}
			for _, year := range rates.Years() {
				s, err := rates.ForYear(year)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "%d: SMIC %s/h, T1 ceiling %s, T2 ceiling %s, %d charges\n",
					year, s.SMICHourly.StringFixed(2),
					s.Tranches.T1Ceiling.StringFixed(2),
					s.Tranches.T2Ceiling.StringFixed(2),
					len(s.Charges))
			}
			return nil
		},
	}
}
