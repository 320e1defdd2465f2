package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/backtester/backtest"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/risk"
	"github.com/rustyeddy/backtester/strategies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// script buys on the first bar and sells on the third.
type script struct{}

func (script) Name() string { return "script" }

func (script) GenerateSignals(prices []float64) []strategies.Signal {
	out := make([]strategies.Signal, len(prices))
	if len(out) > 2 {
		out[0] = strategies.Buy
		out[2] = strategies.Sell
	}
	return out
}

func sampleRun(t *testing.T) (market.Series, backtest.Config, backtest.Result) {
	t.Helper()
	series := market.MustFromPrices(100, 100, 110, 110, 120)
	params := risk.DefaultParams()
	params.TakeProfitFraction = 0.5
	cfg := backtest.Config{
		Symbol:     "SPY",
		Commission: 0.001,
		Risk:       &backtest.RiskConfig{Capital: 10000, Params: params},
	}
	e, err := backtest.New(series, script{}, cfg)
	require.NoError(t, err)
	res, err := e.Run()
	require.NoError(t, err)
	return series, cfg, res
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestTrades(t *testing.T) {
	t.Parallel()

	_, _, res := sampleRun(t)
	trades := Trades(res)
	require.Len(t, trades, 1)

	tr := trades[0]
	assert.Equal(t, "SPY", tr.Instrument)
	assert.Equal(t, 1, tr.EntryBar)
	assert.Equal(t, 3, tr.ExitBar)
	assert.Equal(t, 100.0, tr.EntryPrice)
	assert.Equal(t, 110.0, tr.ExitPrice)
	assert.InDelta(t, 0.099, tr.Return, 1e-12)
	assert.InDelta(t, 200*0.099, tr.RealizedPL, 1e-9)
	assert.Equal(t, res.Events[1].ID, tr.TradeID)
	assert.Equal(t, backtest.ReasonSignal, tr.Reason)
}

func TestReturns(t *testing.T) {
	t.Parallel()

	series, _, res := sampleRun(t)
	rows := Returns(series, res)
	require.Len(t, rows, 4)
	assert.Equal(t, 1, rows[0].Bar)
	assert.Equal(t, series.At(4).Time, rows[3].Time)
	assert.InDelta(t, 1.099, rows[2].Equity, 1e-12)
	assert.InDelta(t, 1.099, rows[3].Equity, 1e-12)
}

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	returnsPath := filepath.Join(dir, "returns.csv")
	eventsPath := filepath.Join(dir, "events.csv")

	series, _, res := sampleRun(t)

	j, err := NewCSV(returnsPath, eventsPath)
	require.NoError(t, err)
	require.NoError(t, Record(j, series, res))
	require.NoError(t, j.Close())

	returns := readCSV(t, returnsPath)
	require.Len(t, returns, 5)
	assert.Equal(t, returnsHeader, returns[0])
	assert.Equal(t, []string{"3", "1970-01-04T00:00:00Z", "110.000000", "0.099000", "1.099000"}, returns[3])

	events := readCSV(t, eventsPath)
	require.Len(t, events, 3)
	assert.Equal(t, eventsHeader, events[0])
	assert.Equal(t, res.Events[0].ID, events[1][0])
	assert.Equal(t, []string{"enter", "SPY", "1", "1970-01-02T00:00:00Z", "100.000000", "200.000000", "0.000000", "signal"}, events[1][1:])
	assert.Equal(t, "exit", events[2][1])
	assert.Equal(t, "0.099000", events[2][7])
}

func TestCSVJournal_BadPath(t *testing.T) {
	t.Parallel()

	_, err := NewCSV(filepath.Join(t.TempDir(), "missing", "r.csv"), filepath.Join(t.TempDir(), "e.csv"))
	assert.Error(t, err)
}

func TestNewRun(t *testing.T) {
	t.Parallel()

	_, cfg, res := sampleRun(t)
	run := NewRun(RunMeta{RunID: "RUN1", Dataset: "spy.csv", Params: "short=3"}, cfg, res)

	assert.Equal(t, "RUN1", run.RunID)
	assert.Equal(t, "script", run.Strategy)
	assert.Equal(t, "SPY", run.Symbol)
	assert.Equal(t, 1, run.Trades)
	assert.Equal(t, 1, run.Wins)
	assert.True(t, run.RiskEnabled)
	assert.Equal(t, 10000.0, run.StartCapital)
	assert.InDelta(t, 19.8, run.NetPL, 1e-9)
	assert.Len(t, run.TradeLog, 1)
	assert.False(t, run.OpenAtEnd)
}

func TestPrintRun(t *testing.T) {
	t.Parallel()

	_, cfg, res := sampleRun(t)
	run := NewRun(RunMeta{RunID: "RUN1", Notes: []string{"first look"}}, cfg, res)
	run.AddWindows([]backtest.WindowResult{{Index: 0, Result: res}, {Index: 1, Result: res}})

	var b strings.Builder
	PrintRun(&b, run)
	out := b.String()

	assert.Contains(t, out, "Run ID:        RUN1")
	assert.Contains(t, out, "Strategy:      script")
	assert.Contains(t, out, "Trades:        1")
	assert.Contains(t, out, "Total Return:  9.90%")
	assert.Contains(t, out, "Stop Loss:     5.00%")
	assert.Contains(t, out, "Walk-Forward Windows")
	assert.Contains(t, out, "- first look")
	assert.NotContains(t, out, "Rejected:")
}

func TestWriteOrg(t *testing.T) {
	t.Parallel()

	_, cfg, res := sampleRun(t)
	path := filepath.Join(t.TempDir(), "run.org")
	run := NewRun(RunMeta{
		RunID:   "RUN1",
		Created: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		OrgPath: path,
	}, cfg, res)
	run.AddWindows([]backtest.WindowResult{{Index: 0, Result: res}})

	require.NoError(t, run.WriteOrg())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	org := string(data)

	assert.Contains(t, org, "* BACKTEST: script SPY")
	assert.Contains(t, org, ":RUN_ID:      RUN1")
	assert.Contains(t, org, ":TRADES:      1")
	assert.Contains(t, org, ":RETURN_PCT:  9.90")
	assert.Contains(t, org, ":START_CAP:   10000.00")
	assert.Contains(t, org, ":CREATED:     [2024-03-15 Fri 10:30]")
	assert.Contains(t, org, "| Stop loss %      | 5.00 |")
	assert.Contains(t, org, "** Walk-Forward Windows")
	assert.Contains(t, org, "*** Trade: SPY")
	assert.Contains(t, org, ":REASON: signal")
	assert.Contains(t, org, "(dataset?)")

	run.OrgPath = ""
	assert.Error(t, run.WriteOrg())
}

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	open := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)
	out := FormatTradeOrg(TradeRecord{
		TradeID:    "01HS0000000000000000ABCDEF",
		Instrument: "EUR_USD",
		Size:       1000,
		EntryPrice: 1.085,
		ExitPrice:  1.0875,
		OpenTime:   open,
		CloseTime:  open.Add(4 * time.Hour),
		EntryBar:   3,
		ExitBar:    7,
		Return:     0.0023,
		RealizedPL: 2.3,
		Reason:     "take_profit",
	})

	assert.Contains(t, out, "*** Trade: EUR_USD (00ABCDEF)")
	assert.Contains(t, out, ":ENTRY_PRICE: 1.08500")
	assert.Contains(t, out, ":OPEN_TIME: 2024-03-15T10:30:45Z")
	assert.Contains(t, out, ":CLOSE_TIME: 2024-03-15T14:30:45Z")
	assert.Contains(t, out, ":BARS: 3-7")
	assert.Contains(t, out, ":RETURN_PCT: 0.23")
	assert.Contains(t, out, ":REALIZED_PL: 2.30")
	assert.True(t, strings.HasSuffix(out, ":END:\n"))

	assert.Equal(t, "short", shortID("short"))
}
