// Package metrics summarizes a per-bar return series.
//
// Every statistic is defined for any input. Where a value has no meaning
// (fewer than two returns, zero variance) it is reported as 0.
package metrics

import (
	"math"

	"github.com/rustyeddy/backtester/market"
)

const DefaultPeriodsPerYear = 252

// Standard deviations below this are rounding noise around a constant
// series and are treated as zero.
const stdEpsilon = 1e-12

type Options struct {
	// Annual risk-free rate, spread evenly across periods.
	RiskFreeRate float64
	// Bars per year used to annualize Sharpe. Zero means 252 (daily bars).
	PeriodsPerYear float64
}

func (o Options) periods() float64 {
	if o.PeriodsPerYear == 0 {
		return DefaultPeriodsPerYear
	}
	return o.PeriodsPerYear
}

func (o Options) Validate() error {
	if math.IsNaN(o.RiskFreeRate) || math.IsInf(o.RiskFreeRate, 0) {
		return market.Configf("risk_free_rate", "must be finite, got %v", o.RiskFreeRate)
	}
	if !(o.PeriodsPerYear >= 0) || math.IsInf(o.PeriodsPerYear, 0) {
		return market.Configf("periods_per_year", "must be a non-negative number, got %v", o.PeriodsPerYear)
	}
	return nil
}

type Metrics struct {
	SharpeRatio float64
	MaxDrawdown float64 // <= 0
	TotalReturn float64
	NumTrades   int

	Wins         int
	Losses       int
	WinRate      float64 // wins / trades
	ProfitFactor float64 // gross wins / gross losses, 0 when there are no losses
}

// Compute derives Metrics from returns.
func Compute(returns []float64, opts Options) Metrics {
	m := Metrics{
		SharpeRatio: Sharpe(returns, opts),
		MaxDrawdown: MaxDrawdown(returns),
		TotalReturn: TotalReturn(returns),
	}

	var won, lost float64
	for _, r := range returns {
		switch {
		case r > 0:
			m.Wins++
			won += r
		case r < 0:
			m.Losses++
			lost -= r
		}
	}
	m.NumTrades = NumTrades(returns)
	if m.NumTrades > 0 {
		m.WinRate = float64(m.Wins) / float64(m.NumTrades)
	}
	if lost > 0 {
		m.ProfitFactor = won / lost
	}
	return m
}

func TotalReturn(returns []float64) float64 {
	var sum float64
	for _, r := range returns {
		sum += r
	}
	return sum
}

// NumTrades counts non-zero returns. NaN counts as a trade.
func NumTrades(returns []float64) int {
	n := 0
	for _, r := range returns {
		if r != 0 {
			n++
		}
	}
	return n
}

// Sharpe is the annualized mean excess return over its sample standard
// deviation.
func Sharpe(returns []float64, opts Options) float64 {
	n := len(returns)
	if n < 2 {
		return 0
	}

	periods := opts.periods()
	rf := opts.RiskFreeRate / periods

	var mean float64
	for _, r := range returns {
		mean += r - rf
	}
	mean /= float64(n)

	var ss float64
	for _, r := range returns {
		d := r - rf - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(n-1))
	if std < stdEpsilon || math.IsNaN(std) {
		return 0
	}

	s := mean / std * math.Sqrt(periods)
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	return s
}

// MaxDrawdown is the deepest fall of the compounded equity curve from its
// running peak, as a non-positive fraction.
func MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	cum := 1.0
	peak := math.Inf(-1)
	worst := 0.0
	for _, r := range returns {
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		if peak <= 0 {
			continue
		}
		if dd := (cum - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst
}
