package strategies

import (
	"sort"
	"strings"

	"github.com/rustyeddy/backtester/market"
)

// Factory builds a strategy from its parameters.
type Factory func(Params) (Strategy, error)

// Registry maps strategy names to factories. Registration and inputs are
// expected at startup; lookups after that may run concurrently.
type Registry struct {
	factories map[string]Factory
	aliases   map[string]string
	inputs    map[string][]float64
}

func NewRegistry() *Registry {
	return &Registry{
		factories: map[string]Factory{},
		aliases:   map[string]string{},
		inputs:    map[string][]float64{},
	}
}

// SetInput attaches a per-bar column, such as model predictions, for
// factories that read it with Input.
func (r *Registry) SetInput(name string, values []float64) {
	r.inputs[normalize(name)] = values
}

// Input returns the column set under name.
func (r *Registry) Input(name string) ([]float64, bool) {
	v, ok := r.inputs[normalize(name)]
	return v, ok
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds f under name and any aliases. A later registration of the
// same name replaces the earlier one.
func (r *Registry) Register(name string, f Factory, aliases ...string) {
	key := normalize(name)
	r.factories[key] = f
	for _, a := range aliases {
		r.aliases[normalize(a)] = key
	}
}

// New builds the strategy registered under name.
func (r *Registry) New(name string, p Params) (Strategy, error) {
	key := normalize(name)
	if canon, ok := r.aliases[key]; ok {
		key = canon
	}
	f, ok := r.factories[key]
	if !ok {
		return nil, market.Configf("strategy", "unknown strategy %q (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return f(p)
}

// Names returns the canonical names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Builtins returns a registry holding the strategies shipped with this
// module.
func Builtins() *Registry {
	r := NewRegistry()

	r.Register("ma_cross", func(p Params) (Strategy, error) {
		if err := p.Only("short_window", "long_window"); err != nil {
			return nil, err
		}
		short, err := p.Int("short_window", 10)
		if err != nil {
			return nil, err
		}
		long, err := p.Int("long_window", 30)
		if err != nil {
			return nil, err
		}
		return NewMACrossover(short, long)
	}, "ma_crossover", "sma_cross")

	r.Register("ema_cross", func(p Params) (Strategy, error) {
		if err := p.Only("fast_window", "slow_window", "min_spread"); err != nil {
			return nil, err
		}
		fast, err := p.Int("fast_window", DefaultEMAFast)
		if err != nil {
			return nil, err
		}
		slow, err := p.Int("slow_window", DefaultEMASlow)
		if err != nil {
			return nil, err
		}
		spread, err := p.Float("min_spread", 0)
		if err != nil {
			return nil, err
		}
		return NewEMACross(fast, slow, spread)
	}, "ema_crossover")

	r.Register("rsi", func(p Params) (Strategy, error) {
		if err := p.Only("window", "lower", "upper"); err != nil {
			return nil, err
		}
		w, err := p.Int("window", DefaultRSIWindow)
		if err != nil {
			return nil, err
		}
		lower, err := p.Float("lower", DefaultRSILower)
		if err != nil {
			return nil, err
		}
		upper, err := p.Float("upper", DefaultRSIUpper)
		if err != nil {
			return nil, err
		}
		return NewRSIReversion(w, lower, upper)
	}, "rsi_reversion", "rsi_strategy")

	r.Register("trend", func(p Params) (Strategy, error) {
		if err := p.Only("window"); err != nil {
			return nil, err
		}
		w, err := p.Int("window", DefaultTrendWindow)
		if err != nil {
			return nil, err
		}
		return NewTrend(w)
	}, "trend_following")

	r.Register("noop", func(p Params) (Strategy, error) {
		if err := p.Only(); err != nil {
			return nil, err
		}
		return Noop{}, nil
	}, "hold")

	r.Register("prediction", func(p Params) (Strategy, error) {
		if err := p.Only("cutoff", "buy_below", "sell_above"); err != nil {
			return nil, err
		}
		values, ok := r.Input(PredictionInput)
		if !ok {
			return nil, market.Configf("strategy", "prediction needs a %q column", PredictionInput)
		}
		cutoff, err := p.Float("cutoff", DefaultPredictionCutoff)
		if err != nil {
			return nil, err
		}
		buyBelow, err := p.Float("buy_below", 0)
		if err != nil {
			return nil, err
		}
		sellAbove, err := p.Float("sell_above", 0)
		if err != nil {
			return nil, err
		}
		return NewPrediction(values, cutoff, buyBelow, sellAbove)
	}, "model", "signal_column")

	return r
}
