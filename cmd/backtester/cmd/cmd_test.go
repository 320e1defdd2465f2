package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/feed"
	"github.com/rustyeddy/backtester/market"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writePrices(t *testing.T, dir string, n int) string {
	t.Helper()
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 100 + 10*math.Sin(float64(i)/5)
	}

	path := filepath.Join(dir, "prices.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, feed.WriteCSV(f, market.MustFromPrices(prices...)))
	require.NoError(t, f.Close())
	return path
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "backtester version 0.1.0\n", out)
}

func TestStrategies(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "strategies")
	require.NoError(t, err)
	for _, want := range []string{"MA_CROSS(10,30)", "RSI(14,30,70)", "TREND(50)", "noop", `prediction needs a "prediction" column`} {
		assert.Contains(t, out, want)
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := writePrices(t, dir, 80)
	org := filepath.Join(dir, "run.org")
	returns := filepath.Join(dir, "returns.csv")
	events := filepath.Join(dir, "events.csv")

	out, err := execute(t, "run",
		"-d", data,
		"-s", "ma_cross",
		"-p", "short_window=2",
		"-p", "long_window=4",
		"--commission", "0.001",
		"--log-level", "error",
		"--org", org,
		"--returns-csv", returns,
		"--events-csv", events,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Backtest Result")
	assert.Contains(t, out, "MA_CROSS(2,4)")
	assert.Contains(t, out, "long_window=4, short_window=2")
	assert.NotContains(t, out, "Walk-Forward Windows")

	b, err := os.ReadFile(org)
	require.NoError(t, err)
	assert.Contains(t, string(b), "* BACKTEST: MA_CROSS(2,4) SERIES")

	b, err = os.ReadFile(returns)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Equal(t, "bar,time,price,return,equity", lines[0])
	assert.Len(t, lines, 80, "header plus one row per bar after the first")

	_, err = os.Stat(events)
	assert.NoError(t, err)
}

func TestRunWithRisk(t *testing.T) {
	t.Parallel()

	data := writePrices(t, t.TempDir(), 80)
	out, err := execute(t, "run", "-d", data, "-s", "rsi", "-p", "window=5",
		"--risk", "--capital", "25000", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Start Capital: 25000.00")
}

func TestRunFromConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Data.Path = writePrices(t, dir, 60)
	cfg.Strategy.Name = "trend"
	cfg.Strategy.Params = nil
	cfg.Logging.Level = "error"
	path := filepath.Join(dir, "backtester.yaml")
	require.NoError(t, cfg.Save(path))

	out, err := execute(t, "run", "-c", path, "-p", "window=5")
	require.NoError(t, err)
	assert.Contains(t, out, "TREND(5)")

	out, err = execute(t, "run", "-c", path, "-s", "noop")
	require.NoError(t, err)
	assert.Contains(t, out, "Strategy:      noop")
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	data := writePrices(t, t.TempDir(), 20)

	tests := []struct {
		name string
		args []string
	}{
		{"missing data", []string{"run", "--log-level", "error"}},
		{"unknown strategy", []string{"run", "-d", data, "-s", "martingale", "--log-level", "error"}},
		{"bad parameter", []string{"run", "-d", data, "-p", "short_window=abc", "--log-level", "error"}},
		{"negative slippage", []string{"run", "-d", data, "--slippage", "-0.5"}},
		{"walkforward without window", []string{"walkforward", "-d", data, "--log-level", "error"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := execute(t, tt.args...)
			assert.ErrorIs(t, err, market.ErrConfig)
		})
	}
}

func writePredictions(t *testing.T, dir string, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("date,close,prediction\n")
	for i := 0; i < n; i++ {
		day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		fmt.Fprintf(&b, "%s,%.2f,%d\n", day.Format("2006-01-02"), 100+10*math.Sin(float64(i)/5), (i/10)%2)
	}
	path := filepath.Join(dir, "preds.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestRunPrediction(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := writePredictions(t, dir, 60)

	out, err := execute(t, "run", "-d", data, "-s", "prediction",
		"--column", "prediction", "-p", "cutoff=0.5", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "PREDICTION(0.5)")

	// predictions from a separate, shorter file
	short := writePredictions(t, t.TempDir(), 40)
	_, err = execute(t, "run", "-d", data, "-s", "prediction",
		"--column", "prediction", "--predictions", short, "--log-level", "error")
	require.ErrorIs(t, err, market.ErrConfig)
	assert.Contains(t, err.Error(), "40 values for 60 bars")

	_, err = execute(t, "run", "-d", data, "-s", "prediction", "--log-level", "error")
	assert.ErrorIs(t, err, market.ErrConfig)
}

func TestWalkForward(t *testing.T) {
	t.Parallel()

	data := writePrices(t, t.TempDir(), 95)
	out, err := execute(t, "walkforward", "-d", data,
		"-s", "ma_cross", "-p", "short_window=2", "-p", "long_window=4",
		"--window", "30", "--workers", "3", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Walk-Forward Windows")

	var rows int
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 7 && (fields[0] == "0" || fields[0] == "1" || fields[0] == "2") {
			rows++
		}
	}
	assert.Equal(t, 3, rows, "95 bars make three full 30 bar windows")
}

func TestConfigInitValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "backtester.yaml")

	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")

	_, err = execute(t, "config", "validate", "-f", path)
	assert.ErrorIs(t, err, market.ErrConfig, "default config has no data path")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	cfg.Data.Path = filepath.Join(dir, "prices.parquet")
	require.NoError(t, cfg.Save(path))

	out, err = execute(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "MA_CROSS(10,30)")
	assert.Contains(t, out, "disabled")
}

func TestDataConvert(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	csvPath := writePrices(t, dir, 25)
	pq := filepath.Join(dir, "prices.parquet")
	db := filepath.Join(dir, "prices.db")
	back := filepath.Join(dir, "back.csv.xz")

	for _, step := range [][2]string{{csvPath, pq}, {pq, db}, {db, back}} {
		out, err := execute(t, "data", "convert", "-i", step[0], "-o", step[1], "--symbol", "SPY")
		require.NoError(t, err)
		assert.Contains(t, out, "Wrote 25 bars")
	}

	want, err := (&feed.CSV{Path: csvPath}).Load(context.Background())
	require.NoError(t, err)
	got, err := (&feed.CSV{Path: back}).Load(context.Background())
	require.NoError(t, err)
	assert.InDeltaSlice(t, want.Closes(), got.Closes(), 1e-9)

	_, err = execute(t, "data", "convert", "-i", csvPath, "-o", filepath.Join(dir, "prices.xlsx"))
	assert.ErrorIs(t, err, market.ErrConfig)
}

func TestDataConvertStoredSymbol(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	db := filepath.Join(dir, "all.db")
	spy := market.MustFromPrices(100, 101, 102)
	qqq := market.MustFromPrices(200, 201, 202, 203)
	require.NoError(t, feed.WriteSQLite(context.Background(), db, "SPY", spy))
	require.NoError(t, feed.WriteSQLite(context.Background(), db, "QQQ", qqq))

	pq := filepath.Join(dir, "qqq.parquet")
	require.NoError(t, feed.WriteParquet(pq, "QQQ", qqq))

	// a single-symbol file converts without naming its symbol
	back := filepath.Join(dir, "qqq.csv")
	out, err := execute(t, "data", "convert", "-i", pq, "-o", back)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 4 bars")

	out, err = execute(t, "data", "convert", "-i", db, "--from", "SPY", "-o", filepath.Join(dir, "spy.parquet"), "--symbol", "SPX")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 3 bars")

	got, err := (&feed.Parquet{Path: filepath.Join(dir, "spy.parquet"), Symbol: "SPX"}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, spy.Closes(), got.Closes())
}
