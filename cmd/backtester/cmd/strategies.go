package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/strategies"
)

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the available strategies",
		Long: `List the registered strategies with their default parameters. A strategy
that trades on a precomputed column is listed with what it needs.

Example:
  backtester strategies`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := strategies.Builtins()
			out := cmd.OutOrStdout()
			for _, name := range reg.Names() {
				s, err := reg.New(name, nil)
				if err != nil {
					if !errors.Is(err, market.ErrConfig) {
						return err
					}
					fmt.Fprintf(out, "%-10s (%v)\n", name, err)
					continue
				}
				fmt.Fprintf(out, "%-10s %s\n", name, s.Name())
			}
			return nil
		},
	}
}
