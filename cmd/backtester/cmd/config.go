package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage backtest configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  backtester config init -o backtester.yaml
  backtester config validate -f backtester.yaml`,
	}

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Default().Save(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created default configuration: %s\n", output)
			fmt.Fprintln(out, "\nSet data.path and run with:")
			fmt.Fprintf(out, "  backtester run -c %s\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "backtester.yaml", "output config file path")

	var path string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Check that a configuration file loads, names a known strategy with valid
parameters and points at a supported price source.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			strat, err := cfg.BuildStrategy(cmd.Context(), nil)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			if _, err := cfg.Source(nil); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration valid: %s\n", path)
			fmt.Fprintf(out, "  Data:     %s (%s)\n", cfg.Data.Path, cfg.Data.Symbol)
			fmt.Fprintf(out, "  Strategy: %s\n", strat.Name())
			if cfg.Risk.Enabled {
				fmt.Fprintf(out, "  Risk:     capital %.2f, max position %.1f%%\n",
					cfg.Risk.Capital, cfg.Risk.MaxPositionSizeFraction*100)
			} else {
				fmt.Fprintln(out, "  Risk:     disabled")
			}
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&path, "file", "f", "", "path to config file (required)")
	validateCmd.MarkFlagRequired("file")

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
