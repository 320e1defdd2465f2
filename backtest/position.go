package backtest

import "time"

// Position is the single position slot of a run: flat, or long from
// EntryPrice.
type Position struct {
	Open       bool
	EntryPrice float64
	EntryBar   int
	EntryTime  time.Time
	// Notional committed at entry. Zero without a risk config.
	Size float64
}

func (p Position) Flat() bool { return !p.Open }

// NetReturn is the round-trip return from entry to exit after costs.
func (p Position) NetReturn(exit, slippage, commission float64) float64 {
	gross := (exit - p.EntryPrice) / p.EntryPrice
	return gross - slippage - commission
}

func (p Position) String() string {
	if !p.Open {
		return "flat"
	}
	return "long"
}
