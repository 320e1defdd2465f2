package strategies

import (
	"fmt"
	"math"

	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/market"
)

const (
	DefaultEMAFast = 12
	DefaultEMASlow = 26
)

// EMACross signals only when a fast EMA crosses a slow EMA: Buy on the bar
// the fast line moves above the slow one, Sell on the bar it moves below.
// Every other bar is a Hold, so a position opened on a cross is held until
// the opposite cross.
type EMACross struct {
	fast *indicators.EMA
	slow *indicators.EMA
	name string

	// require |fast-slow| >= minSpread (in price units) to signal
	minSpread float64
}

// NewEMACross requires 1 <= fast < slow and minSpread >= 0. A minSpread of
// 0 disables the noise filter.
func NewEMACross(fast, slow int, minSpread float64) (*EMACross, error) {
	f, err := indicators.NewEMA(fast)
	if err != nil {
		return nil, market.Configf("fast_window", "must be >= 1, got %d", fast)
	}
	s, err := indicators.NewEMA(slow)
	if err != nil {
		return nil, market.Configf("slow_window", "must be >= 1, got %d", slow)
	}
	if fast >= slow {
		return nil, market.Configf("fast_window", "must be less than slow_window (%d >= %d)", fast, slow)
	}
	if !(minSpread >= 0) || math.IsInf(minSpread, 0) {
		return nil, market.Configf("min_spread", "must be a non-negative number, got %v", minSpread)
	}

	return &EMACross{
		fast:      f,
		slow:      s,
		minSpread: minSpread,
		name:      fmt.Sprintf("EMA_CROSS(%d,%d)", fast, slow),
	}, nil
}

func (x *EMACross) Name() string { return x.name }

// GenerateSignals warms up for the slow window, takes the relationship at
// that bar as the baseline and then fires on each change of side.
func (x *EMACross) GenerateSignals(prices []float64) []Signal {
	out := holdAll(len(prices))

	fast := x.fast.Compute(prices)
	slow := x.slow.Compute(prices)

	// -1 => fast below slow, 0 => not ready, +1 => fast above slow
	prevRel := 0
	for i := x.slow.Window(); i < len(prices); i++ {
		diff := fast[i] - slow[i]
		if x.minSpread > 0 && math.Abs(diff) < x.minSpread {
			continue
		}

		rel := 0
		if diff > 0 {
			rel = +1
		} else if diff < 0 {
			rel = -1
		}
		if rel == 0 {
			continue
		}

		switch {
		case prevRel == -1 && rel == +1:
			out[i] = Buy
		case prevRel == +1 && rel == -1:
			out[i] = Sell
		}
		prevRel = rel
	}
	return out
}
