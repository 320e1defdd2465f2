package backtest

import (
	"time"

	"github.com/rustyeddy/backtester/metrics"
	"github.com/rustyeddy/backtester/strategies"
)

// Result is the outcome of one run. Returns has one entry per bar after
// the first.
type Result struct {
	Strategy string
	Symbol   string

	Signals []strategies.Signal
	Returns []float64
	Events  []Event
	Metrics metrics.Metrics

	// Position left open at the last bar, if any.
	Position Position

	// Capital before and after, set only with a risk config.
	StartCapital float64
	Capital      float64

	Bars  int
	Start time.Time
	End   time.Time
}

// Count returns the number of events of kind k.
func (r Result) Count(k EventKind) int {
	n := 0
	for _, ev := range r.Events {
		if ev.Kind == k {
			n++
		}
	}
	return n
}

// WindowResult is one walk-forward window.
type WindowResult struct {
	Index    int
	FirstBar int // offset of the window in the full series
	Result   Result
}
