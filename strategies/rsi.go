package strategies

import (
	"fmt"

	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/market"
)

const (
	DefaultRSIWindow = 14
	DefaultRSILower  = 30.0
	DefaultRSIUpper  = 70.0
)

// RSIReversion buys oversold and sells overbought markets. Bars before the
// RSI window has filled are held.
type RSIReversion struct {
	rsi   *indicators.RSI
	lower float64
	upper float64
	name  string
}

// NewRSIReversion requires window >= 1 and 0 <= lower < upper <= 100.
func NewRSIReversion(window int, lower, upper float64) (*RSIReversion, error) {
	rsi, err := indicators.NewRSI(window)
	if err != nil {
		return nil, err
	}
	if lower < 0 || upper > 100 || lower >= upper {
		return nil, market.Configf("lower", "need 0 <= lower < upper <= 100, got lower=%v upper=%v", lower, upper)
	}

	return &RSIReversion{
		rsi:   rsi,
		lower: lower,
		upper: upper,
		name:  fmt.Sprintf("RSI(%d,%g,%g)", window, lower, upper),
	}, nil
}

func (r *RSIReversion) Name() string { return r.name }

func (r *RSIReversion) GenerateSignals(prices []float64) []Signal {
	out := holdAll(len(prices))
	vals := r.rsi.Compute(prices)

	for i := r.rsi.Window(); i < len(prices); i++ {
		switch {
		case vals[i] < r.lower:
			out[i] = Buy
		case vals[i] > r.upper:
			out[i] = Sell
		}
	}
	return out
}
