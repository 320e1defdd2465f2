package risk

import "math"

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// PositionSize is the notional a fraction of capital buys.
func PositionSize(capital, fraction float64) float64 {
	if capital <= 0 || fraction <= 0 {
		return 0
	}
	return capital * fraction
}

// Quantity converts a notional amount into units at price.
func Quantity(notional, price float64) float64 {
	if price <= 0 || math.IsNaN(notional) {
		return 0
	}
	return notional / price
}

// StopPrice and TakeProfitPrice are the long-side exit levels for entry.
func StopPrice(entry, stopFraction float64) float64 { return entry * (1 - stopFraction) }

func TakeProfitPrice(entry, takeFraction float64) float64 { return entry * (1 + takeFraction) }

// RR is reward over risk for a planned trade. Zero risk gives 0.
func RR(entry, stop, takeProfit float64) float64 {
	risk := abs(entry - stop)
	reward := abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}

// Change is the fractional move from entry to current.
func Change(entry, current float64) float64 {
	if entry == 0 {
		return 0
	}
	return (current - entry) / entry
}
