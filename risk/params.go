package risk

import "github.com/rustyeddy/backtester/market"

// Params are the portfolio limits a Manager enforces. Fractions are of
// current capital.
type Params struct {
	// Entry limits
	MaxPositionSizeFraction float64 // 0.02
	MaxOpenTrades           int     // 5

	// Circuit breaker
	MaxDailyLossFraction float64 // 0.05

	// Exit thresholds, relative to entry price
	StopLossFraction   float64 // 0.05
	TakeProfitFraction float64 // 0.10

	// When false, realized losses never take capital below zero.
	AllowNegativeCapital bool
}

func DefaultParams() Params {
	return Params{
		MaxPositionSizeFraction: 0.02,
		MaxOpenTrades:           5,
		MaxDailyLossFraction:    0.05,
		StopLossFraction:        0.05,
		TakeProfitFraction:      0.10,
	}
}

// Validate returns a *market.ConfigError for the first out-of-range field.
func (p Params) Validate() error {
	checks := []struct {
		field string
		v     float64
	}{
		{"max_position_size_fraction", p.MaxPositionSizeFraction},
		{"max_daily_loss_fraction", p.MaxDailyLossFraction},
		{"stop_loss_fraction", p.StopLossFraction},
		{"take_profit_fraction", p.TakeProfitFraction},
	}
	for _, c := range checks {
		if err := market.CheckFraction(c.field, c.v); err != nil {
			return err
		}
	}
	if p.MaxOpenTrades < 1 {
		return market.Configf("max_open_trades", "must be >= 1, got %d", p.MaxOpenTrades)
	}
	return nil
}
