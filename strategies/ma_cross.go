package strategies

import (
	"fmt"

	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/market"
)

// MACrossover compares a short and a long simple moving average: short above
// long is a Buy, short below long a Sell. Bars before the long window has
// filled are held.
type MACrossover struct {
	short *indicators.SMA
	long  *indicators.SMA
	name  string
}

// NewMACrossover requires 1 <= short < long.
func NewMACrossover(short, long int) (*MACrossover, error) {
	s, err := indicators.NewSMA(short)
	if err != nil {
		return nil, market.Configf("short_window", "must be >= 1, got %d", short)
	}
	l, err := indicators.NewSMA(long)
	if err != nil {
		return nil, market.Configf("long_window", "must be >= 1, got %d", long)
	}
	if short >= long {
		return nil, market.Configf("short_window", "must be less than long_window (%d >= %d)", short, long)
	}

	return &MACrossover{
		short: s,
		long:  l,
		name:  fmt.Sprintf("MA_CROSS(%d,%d)", short, long),
	}, nil
}

func (x *MACrossover) Name() string { return x.name }

func (x *MACrossover) ShortWindow() int { return x.short.Window() }
func (x *MACrossover) LongWindow() int  { return x.long.Window() }

func (x *MACrossover) GenerateSignals(prices []float64) []Signal {
	out := holdAll(len(prices))

	shortMA := x.short.Compute(prices)
	longMA := x.long.Compute(prices)

	for i := x.long.Window(); i < len(prices); i++ {
		switch {
		case shortMA[i] > longMA[i]:
			out[i] = Buy
		case shortMA[i] < longMA[i]:
			out[i] = Sell
		}
	}
	return out
}
