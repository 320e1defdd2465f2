// Package strategies turns price sequences into trading signals.
package strategies

// Signal is the decision a strategy makes for one bar.
type Signal int

const (
	Hold Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Strategy generates one signal per price. Signal i may only look at
// prices[0..i]. Implementations must be deterministic and, to be shared
// across walk-forward workers, safe for concurrent use.
type Strategy interface {
	Name() string
	GenerateSignals(prices []float64) []Signal
}

// holdAll returns n Hold signals.
func holdAll(n int) []Signal {
	return make([]Signal, n)
}
