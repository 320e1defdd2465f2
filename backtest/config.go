package backtest

import (
	"math"

	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/metrics"
	"github.com/rustyeddy/backtester/risk"
)

const DefaultSymbol = "SERIES"

// RiskConfig attaches a risk.Manager to every run. Each run and each
// walk-forward window gets its own Manager starting at Capital.
type RiskConfig struct {
	Capital float64
	Params  risk.Params
}

type Config struct {
	// Symbol names the instrument in events and risk bookkeeping.
	Symbol string

	// Fractional costs subtracted once from every round trip.
	Slippage   float64
	Commission float64

	// Walk-forward window length in bars, 0 disables.
	WalkForward int
	// Goroutines evaluating walk-forward windows, 0 means 1.
	Workers int

	// Fraction of capital committed per entry. 0 means the risk
	// MaxPositionSizeFraction. Only used with Risk.
	Stake float64
	// Reset the daily loss accumulator every DayLength bars, 0 never.
	DayLength int

	Metrics metrics.Options
	Risk    *RiskConfig
}

func finiteNonNeg(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// Validate returns a *market.ConfigError for the first invalid field.
func (c Config) Validate() error {
	if !finiteNonNeg(c.Slippage) {
		return market.Configf("slippage", "must be a non-negative number, got %v", c.Slippage)
	}
	if !finiteNonNeg(c.Commission) {
		return market.Configf("commission", "must be a non-negative number, got %v", c.Commission)
	}
	if c.WalkForward < 0 {
		return market.Configf("walk_forward", "must be >= 0, got %d", c.WalkForward)
	}
	if c.Workers < 0 {
		return market.Configf("workers", "must be >= 0, got %d", c.Workers)
	}
	if c.DayLength < 0 {
		return market.Configf("day_length", "must be >= 0, got %d", c.DayLength)
	}
	if c.Stake != 0 {
		if err := market.CheckFraction("stake", c.Stake); err != nil {
			return err
		}
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if c.Risk != nil {
		if _, err := risk.NewManager(c.Risk.Capital, c.Risk.Params); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) symbol() string {
	if c.Symbol == "" {
		return DefaultSymbol
	}
	return c.Symbol
}

func (c Config) workers() int {
	if c.Workers < 1 {
		return 1
	}
	return c.Workers
}

func (c Config) stake() float64 {
	if c.Stake > 0 {
		return c.Stake
	}
	if c.Risk != nil {
		return c.Risk.Params.MaxPositionSizeFraction
	}
	return 0
}
