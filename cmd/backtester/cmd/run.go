package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/backtester/backtest"
	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/pkg/id"
)

func newRunCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Backtest a strategy over a price series",
		Long: `Run a strategy over the whole price series and print the results.

Settings come from the config file, when given, and the flags override them.

Examples:
  backtester run -d data/spy.csv -s ma_cross -p short_window=10 -p long_window=30
  backtester run -c backtester.yaml --risk --capital 25000 --org spy.org
  backtester run -d data/spy_preds.csv -s prediction --column prediction`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBacktest(cmd, o, false)
		},
	}
	addRunFlags(cmd, o)
	return cmd
}

func newWalkForwardCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walkforward",
		Short: "Backtest a strategy over consecutive windows",
		Long: `Split the price series into consecutive windows of --window bars and
backtest each window independently. A shorter trailing window is dropped.

Example:
  backtester walkforward -d data/spy.parquet -s rsi --window 250 --workers 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBacktest(cmd, o, true)
		},
	}
	addRunFlags(cmd, o)
	cmd.Flags().IntVarP(&o.window, "window", "w", 0, "walk-forward window length in bars")
	return cmd
}

// setup loads the configuration, the logger, the series and the strategy
// and returns a ready engine.
func setup(cmd *cobra.Command, o *options) (*config.Config, *zap.Logger, *backtest.Engine, error) {
	cfg, err := o.load(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := cfg.Logger()
	if err != nil {
		return nil, nil, nil, err
	}

	src, err := cfg.Source(log)
	if err != nil {
		return nil, nil, nil, err
	}
	series, err := src.Load(cmd.Context())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load %s: %w", cfg.Data.Path, err)
	}

	strat, err := cfg.BuildStrategy(cmd.Context(), nil)
	if err != nil {
		return nil, nil, nil, err
	}
	if c, ok := strat.(interface{ Check(bars int) error }); ok {
		if err := c.Check(series.Len()); err != nil {
			return nil, nil, nil, err
		}
	}

	eng, err := backtest.New(series, strat, cfg.EngineConfig(), backtest.WithLogger(log))
	if err != nil {
		return nil, nil, nil, err
	}

	log.Info("series loaded",
		zap.String("path", cfg.Data.Path),
		zap.String("symbol", cfg.Data.Symbol),
		zap.Int("bars", series.Len()),
		zap.String("strategy", strat.Name()),
	)
	return cfg, log, eng, nil
}

func runBacktest(cmd *cobra.Command, o *options, walkForward bool) error {
	cfg, log, eng, err := setup(cmd, o)
	if err != nil {
		return err
	}
	defer log.Sync()

	if walkForward && cfg.Backtest.WalkForward == 0 {
		return market.Configf("backtest.walk_forward", "walkforward needs a window length > 0")
	}

	res, err := eng.Run()
	if err != nil {
		return err
	}

	var windows []backtest.WindowResult
	if walkForward {
		if windows, err = eng.WalkForward(); err != nil {
			return err
		}
		if len(windows) == 0 {
			log.Warn("series shorter than one window",
				zap.Int("bars", eng.Series().Len()),
				zap.Int("window", cfg.Backtest.WalkForward),
			)
		}
	}

	return report(cmd, cfg, eng.Series(), res, windows)
}

// report prints the run and writes the configured report files.
func report(cmd *cobra.Command, cfg *config.Config, s market.Series, res backtest.Result, windows []backtest.WindowResult) error {
	dataset := cfg.Report.Dataset
	if dataset == "" {
		dataset = cfg.Data.Path
	}

	run := journal.NewRun(journal.RunMeta{
		RunID:   id.New(),
		Created: time.Now(),
		Dataset: dataset,
		Params:  formatParams(cfg.Strategy.Params),
		OrgPath: cfg.Report.Org,
	}, cfg.EngineConfig(), res)
	run.AddWindows(windows)

	journal.PrintRun(cmd.OutOrStdout(), run)

	if cfg.Report.Org != "" {
		if err := run.WriteOrg(); err != nil {
			return err
		}
	}

	if cfg.Report.ReturnsCSV != "" {
		j, err := journal.NewCSV(cfg.Report.ReturnsCSV, cfg.Report.EventsCSV)
		if err != nil {
			return err
		}
		if err := journal.Record(j, s, res); err != nil {
			j.Close()
			return err
		}
		if err := j.Close(); err != nil {
			return err
		}
	}
	return nil
}
