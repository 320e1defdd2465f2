package journal

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/backtester/backtest"
)

// RunMeta describes a run from outside the engine.
type RunMeta struct {
	RunID   string
	Created time.Time
	Dataset string
	Params  string // strategy parameters as given
	OrgPath string
	Notes   []string
}

// WindowRow summarizes one walk-forward window.
type WindowRow struct {
	Index       int
	Start       time.Time
	End         time.Time
	Trades      int
	TotalReturn float64
	Sharpe      float64
	MaxDrawdown float64
}

// BacktestRun is the report of one backtest or walk-forward run.
type BacktestRun struct {
	RunID    string
	Created  time.Time
	Dataset  string
	Symbol   string
	Strategy string
	Params   string

	// Costs
	Slippage   float64
	Commission float64

	// Risk Management
	RiskEnabled     bool
	MaxPositionPct  float64
	MaxDailyLossPct float64
	MaxOpenTrades   int
	StopLossPct     float64
	TakeProfitPct   float64

	// Period
	Start time.Time
	End   time.Time
	Bars  int

	// Results
	Trades    int
	Wins      int
	Losses    int
	Rejected  int
	OpenAtEnd bool

	// account info
	StartCapital float64
	EndCapital   float64
	NetPL        float64

	// Metrics
	TotalReturn  float64
	Sharpe       float64
	MaxDrawdown  float64
	WinRate      float64
	ProfitFactor float64

	Windows  []WindowRow
	TradeLog []TradeRecord

	OrgPath string
	Notes   []string
}

// NewRun builds a report from a completed run.
func NewRun(meta RunMeta, cfg backtest.Config, res backtest.Result) BacktestRun {
	r := BacktestRun{
		RunID:    meta.RunID,
		Created:  meta.Created,
		Dataset:  meta.Dataset,
		Params:   meta.Params,
		OrgPath:  meta.OrgPath,
		Notes:    meta.Notes,
		Symbol:   res.Symbol,
		Strategy: res.Strategy,

		Slippage:   cfg.Slippage,
		Commission: cfg.Commission,

		Start: res.Start,
		End:   res.End,
		Bars:  res.Bars,

		Trades:    res.Metrics.NumTrades,
		Wins:      res.Metrics.Wins,
		Losses:    res.Metrics.Losses,
		Rejected:  res.Count(backtest.Rejected),
		OpenAtEnd: res.Position.Open,

		TotalReturn:  res.Metrics.TotalReturn,
		Sharpe:       res.Metrics.SharpeRatio,
		MaxDrawdown:  res.Metrics.MaxDrawdown,
		WinRate:      res.Metrics.WinRate,
		ProfitFactor: res.Metrics.ProfitFactor,

		TradeLog: Trades(res),
	}

	if cfg.Risk != nil {
		p := cfg.Risk.Params
		r.RiskEnabled = true
		r.MaxPositionPct = p.MaxPositionSizeFraction
		r.MaxDailyLossPct = p.MaxDailyLossFraction
		r.MaxOpenTrades = p.MaxOpenTrades
		r.StopLossPct = p.StopLossFraction
		r.TakeProfitPct = p.TakeProfitFraction
		r.StartCapital = res.StartCapital
		r.EndCapital = res.Capital
		r.NetPL = res.Capital - res.StartCapital
	}
	return r
}

// AddWindows appends one row per walk-forward window.
func (r *BacktestRun) AddWindows(ws []backtest.WindowResult) {
	for _, w := range ws {
		r.Windows = append(r.Windows, WindowRow{
			Index:       w.Index,
			Start:       w.Result.Start,
			End:         w.Result.End,
			Trades:      w.Result.Metrics.NumTrades,
			TotalReturn: w.Result.Metrics.TotalReturn,
			Sharpe:      w.Result.Metrics.SharpeRatio,
			MaxDrawdown: w.Result.Metrics.MaxDrawdown,
		})
	}
}

func PrintRun(w io.Writer, r BacktestRun) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	if !r.Created.IsZero() {
		fmt.Fprintf(w, "Created:       %s\n", r.Created.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Strategy:      %s\n", r.Strategy)
	fmt.Fprintf(w, "Symbol:        %s\n", r.Symbol)
	if r.Dataset != "" {
		fmt.Fprintf(w, "Dataset:       %s\n", r.Dataset)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "End:           %s\n", r.End.Format(time.RFC3339))
	fmt.Fprintf(w, "Bars:          %d\n", r.Bars)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration")
	fmt.Fprintln(w, "--------------------------------------------------")
	if r.Params != "" {
		fmt.Fprintf(w, "Parameters:    %s\n", r.Params)
	}
	fmt.Fprintf(w, "Slippage:      %.4f%%\n", r.Slippage*100)
	fmt.Fprintf(w, "Commission:    %.4f%%\n", r.Commission*100)
	if r.RiskEnabled {
		fmt.Fprintf(w, "Max Position:  %.2f%%\n", r.MaxPositionPct*100)
		fmt.Fprintf(w, "Daily Loss:    %.2f%%\n", r.MaxDailyLossPct*100)
		fmt.Fprintf(w, "Open Trades:   %d\n", r.MaxOpenTrades)
		fmt.Fprintf(w, "Stop Loss:     %.2f%%\n", r.StopLossPct*100)
		fmt.Fprintf(w, "Take Profit:   %.2f%%\n", r.TakeProfitPct*100)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", r.Trades)
	fmt.Fprintf(w, "Wins:          %d\n", r.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", r.Losses)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", r.WinRate*100)
	if r.Rejected > 0 {
		fmt.Fprintf(w, "Rejected:      %d\n", r.Rejected)
	}
	if r.OpenAtEnd {
		fmt.Fprintln(w, "Open at end:   yes")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Total Return:  %.2f%%\n", r.TotalReturn*100)
	fmt.Fprintf(w, "Sharpe:        %.3f\n", r.Sharpe)
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", r.MaxDrawdown*100)
	if r.ProfitFactor > 0 {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", r.ProfitFactor)
	}
	if r.RiskEnabled {
		fmt.Fprintf(w, "Start Capital: %.2f\n", r.StartCapital)
		fmt.Fprintf(w, "End Capital:   %.2f\n", r.EndCapital)
		fmt.Fprintf(w, "Net P/L:       %.2f\n", r.NetPL)
	}

	if len(r.Windows) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Walk-Forward Windows")
		fmt.Fprintln(w, "--------------------------------------------------")
		fmt.Fprintf(w, "%4s  %-10s  %-10s  %6s  %9s  %8s  %9s\n",
			"#", "start", "end", "trades", "return", "sharpe", "drawdown")
		for _, row := range r.Windows {
			fmt.Fprintf(w, "%4d  %-10s  %-10s  %6d  %8.2f%%  %8.3f  %8.2f%%\n",
				row.Index,
				row.Start.Format("2006-01-02"),
				row.End.Format("2006-01-02"),
				row.Trades,
				row.TotalReturn*100,
				row.Sharpe,
				row.MaxDrawdown*100,
			)
		}
	}

	if r.OrgPath != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Org Report:    %s\n", r.OrgPath)
	}

	if len(r.Notes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Observations")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, note := range r.Notes {
			fmt.Fprintf(w, "- %s\n", note)
		}
	}

	fmt.Fprintln(w)
}
