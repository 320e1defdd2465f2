package strategies

import (
	"fmt"

	"github.com/rustyeddy/backtester/indicators"
)

const DefaultTrendWindow = 50

// Trend follows price relative to its moving average: above is a Buy,
// below is a Sell.
type Trend struct {
	ma *indicators.SMA
}

func NewTrend(window int) (*Trend, error) {
	ma, err := indicators.NewSMA(window)
	if err != nil {
		return nil, err
	}
	return &Trend{ma: ma}, nil
}

func (t *Trend) Name() string { return fmt.Sprintf("TREND(%d)", t.ma.Window()) }

func (t *Trend) GenerateSignals(prices []float64) []Signal {
	out := holdAll(len(prices))
	ma := t.ma.Compute(prices)

	for i := t.ma.Window(); i < len(prices); i++ {
		switch {
		case prices[i] > ma[i]:
			out[i] = Buy
		case prices[i] < ma[i]:
			out[i] = Sell
		}
	}
	return out
}
