// Package indicators provides technical analysis indicators over price
// sequences.
//
// Every indicator validates its window when it is built and then maps an
// input sequence to an output of the same length. Empty input gives empty
// output.
package indicators

import "github.com/rustyeddy/backtester/market"

// Indicator computes a same-length transform of a price sequence. It is
// deterministic and holds no state between calls.
type Indicator interface {
	// Name returns a stable identifier like "SMA(20)" or "RSI(14)".
	Name() string

	// Window returns the lookback the indicator was built with.
	Window() int

	// Compute returns one value per input value. Value i depends only on
	// inputs 0..i.
	Compute(xs []float64) []float64
}

func checkWindow(name string, window int) error {
	if window < 1 {
		return market.Configf(name+".window", "must be >= 1, got %d", window)
	}
	return nil
}
