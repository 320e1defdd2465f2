package strategies

import (
	"fmt"
	"math"

	"github.com/rustyeddy/backtester/market"
)

const (
	// PredictionInput is the registry input read by the prediction strategy.
	PredictionInput = "prediction"

	// DefaultPredictionCutoff splits a 0/1 classifier output.
	DefaultPredictionCutoff = 0.5
)

// Prediction trades on values produced outside the backtest, one per bar,
// such as a model's buy probability or a 0/1 class. A value at or above the
// cutoff asks for a Buy, a value below it for a Sell, and NaN means no
// opinion. Value i must only use information up to bar i.
//
// BuyBelow and SellAbove filter on price: a Buy needs price < BuyBelow and a
// Sell needs price > SellAbove. Zero disables a filter.
type Prediction struct {
	values    []float64
	cutoff    float64
	buyBelow  float64
	sellAbove float64
}

// NewPrediction keeps its own copy of values.
func NewPrediction(values []float64, cutoff, buyBelow, sellAbove float64) (*Prediction, error) {
	if math.IsNaN(cutoff) || math.IsInf(cutoff, 0) {
		return nil, market.Configf("cutoff", "must be finite, got %v", cutoff)
	}
	if !(buyBelow >= 0) || math.IsInf(buyBelow, 0) {
		return nil, market.Configf("buy_below", "must be a non-negative number, got %v", buyBelow)
	}
	if !(sellAbove >= 0) || math.IsInf(sellAbove, 0) {
		return nil, market.Configf("sell_above", "must be a non-negative number, got %v", sellAbove)
	}

	cp := make([]float64, len(values))
	copy(cp, values)
	return &Prediction{
		values:    cp,
		cutoff:    cutoff,
		buyBelow:  buyBelow,
		sellAbove: sellAbove,
	}, nil
}

func (p *Prediction) Name() string { return fmt.Sprintf("PREDICTION(%g)", p.cutoff) }

func (p *Prediction) Len() int { return len(p.values) }

// Check returns a *market.ConfigError unless there is one value per bar.
func (p *Prediction) Check(bars int) error {
	if len(p.values) != bars {
		return market.Configf("predictions", "have %d values for %d bars", len(p.values), bars)
	}
	return nil
}

// GenerateSignals returns nil when the values do not line up with prices,
// which a backtest reports as a signal length error.
func (p *Prediction) GenerateSignals(prices []float64) []Signal {
	if p.Check(len(prices)) != nil {
		return nil
	}

	out := holdAll(len(prices))
	for i, v := range p.values {
		switch {
		case math.IsNaN(v):
		case v >= p.cutoff:
			if p.buyBelow == 0 || prices[i] < p.buyBelow {
				out[i] = Buy
			}
		default:
			if p.sellAbove == 0 || prices[i] > p.sellAbove {
				out[i] = Sell
			}
		}
	}
	return out
}
