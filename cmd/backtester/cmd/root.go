// Package cmd implements the backtester command line.
package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/strategies"
)

// options holds the flags shared by the commands that run a backtest.
// Flags that were set on the command line override the config file.
type options struct {
	configPath string
	logLevel   string
	logFormat  string

	dataPath string
	dataKind string
	symbol   string
	retries  uint64

	strategy    string
	params      map[string]string
	column      string
	predictions string

	slippage   float64
	commission float64
	window     int
	workers    int
	stake      float64
	dayLength  int

	risk    bool
	capital float64

	org        string
	returnsCSV string
	eventsCSV  string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "backtester",
		Short: "Backtest trading strategies against historical close prices",
		Long: `Backtester replays a price series through a trading strategy and reports
per-bar returns, trades and performance metrics.

It provides:
  - Moving average crossover, RSI mean reversion and trend following strategies
  - A prediction strategy that trades on a precomputed model output column
  - Optional portfolio risk limits with stop loss, take profit and a daily loss breaker
  - Walk-forward evaluation over consecutive windows
  - CSV, Parquet and SQLite price sources
  - Text, org-mode and CSV reports`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "path to config file (YAML or JSON)")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&o.logFormat, "log-format", "", "log format (console, json)")

	root.AddCommand(
		newRunCmd(o),
		newWalkForwardCmd(o),
		newStrategiesCmd(),
		newConfigCmd(),
		newDataCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func addRunFlags(cmd *cobra.Command, o *options) {
	f := cmd.Flags()
	f.StringVarP(&o.dataPath, "data", "d", "", "path to the price series (csv, parquet or sqlite)")
	f.StringVar(&o.dataKind, "kind", "", "price source kind, inferred from the extension when empty")
	f.StringVar(&o.symbol, "symbol", "", "symbol to load and report")
	f.Uint64Var(&o.retries, "retries", 0, "retries for transient load failures")

	f.StringVarP(&o.strategy, "strategy", "s", "", "strategy name (see `backtester strategies`)")
	f.StringToStringVarP(&o.params, "param", "p", nil, "strategy parameter as key=value, repeatable")
	f.StringVar(&o.column, "column", "", "CSV column of per-bar predictions for the prediction strategy")
	f.StringVar(&o.predictions, "predictions", "", "CSV file holding --column (default the price file)")

	f.Float64Var(&o.slippage, "slippage", 0, "fractional slippage per round trip")
	f.Float64Var(&o.commission, "commission", 0, "fractional commission per round trip")
	f.IntVar(&o.workers, "workers", 0, "walk-forward workers")
	f.Float64Var(&o.stake, "stake", 0, "fraction of capital per entry (default max position size)")
	f.IntVar(&o.dayLength, "day-length", 0, "bars per trading day for the daily loss limit")

	f.BoolVar(&o.risk, "risk", false, "enable the risk manager")
	f.Float64Var(&o.capital, "capital", 0, "starting capital for the risk manager")

	f.StringVar(&o.org, "org", "", "write an org-mode report to this file")
	f.StringVar(&o.returnsCSV, "returns-csv", "", "write per-bar returns to this CSV file")
	f.StringVar(&o.eventsCSV, "events-csv", "", "write trade events to this CSV file")
}

// load reads the config file, when given, and applies the flags that were
// set.
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	set := func(name string, apply func()) {
		if f.Changed(name) {
			apply()
		}
	}
	set("log-level", func() { cfg.Logging.Level = o.logLevel })
	set("log-format", func() { cfg.Logging.Format = o.logFormat })
	set("data", func() { cfg.Data.Path = o.dataPath })
	set("kind", func() { cfg.Data.Kind = o.dataKind })
	set("symbol", func() { cfg.Data.Symbol = o.symbol })
	set("retries", func() { cfg.Data.Retries = o.retries })
	set("strategy", func() {
		if cfg.Strategy.Name != o.strategy {
			cfg.Strategy.Params = nil
		}
		cfg.Strategy.Name = o.strategy
	})
	set("column", func() { cfg.Strategy.Column = o.column })
	set("predictions", func() { cfg.Strategy.Predictions = o.predictions })
	set("slippage", func() { cfg.Backtest.Slippage = o.slippage })
	set("commission", func() { cfg.Backtest.Commission = o.commission })
	set("window", func() { cfg.Backtest.WalkForward = o.window })
	set("workers", func() { cfg.Backtest.Workers = o.workers })
	set("stake", func() { cfg.Backtest.Stake = o.stake })
	set("day-length", func() { cfg.Backtest.DayLength = o.dayLength })
	set("risk", func() { cfg.Risk.Enabled = o.risk })
	set("capital", func() { cfg.Risk.Capital = o.capital })
	set("org", func() { cfg.Report.Org = o.org })
	set("returns-csv", func() { cfg.Report.ReturnsCSV = o.returnsCSV })
	set("events-csv", func() { cfg.Report.EventsCSV = o.eventsCSV })

	if f.Changed("param") {
		p, err := parseParams(o.params)
		if err != nil {
			return nil, err
		}
		if cfg.Strategy.Params == nil {
			cfg.Strategy.Params = strategies.Params{}
		}
		for k, v := range p {
			cfg.Strategy.Params[k] = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseParams(raw map[string]string) (strategies.Params, error) {
	p := strategies.Params{}
	for k, v := range raw {
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, market.Configf("param", "%s: not a number: %q", k, v)
		}
		p[k] = x
	}
	return p, nil
}

// formatParams renders parameters in key order.
func formatParams(p strategies.Params) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, p[k])
	}
	return strings.Join(parts, ", ")
}
