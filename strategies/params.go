package strategies

import (
	"math"
	"sort"
	"strings"

	"github.com/rustyeddy/backtester/market"
)

// Params carries numeric strategy parameters by name, as read from a
// config file or command line.
type Params map[string]float64

// Float returns p[key] or def when the key is absent.
func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, market.Configf(key, "must be finite, got %v", v)
	}
	return v, nil
}

// Int returns p[key] as an int, or def when the key is absent. Fractional
// values are rejected.
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	if v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, market.Configf(key, "must be a whole number, got %v", v)
	}
	return int(v), nil
}

// Only returns a *market.ConfigError naming the first key, in sorted
// order, that is not in allowed.
func (p Params) Only(allowed ...string) error {
	ok := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		ok[a] = true
	}

	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !ok[k] {
			return market.Configf(k, "unknown parameter (want one of %s)", strings.Join(allowed, ", "))
		}
	}
	return nil
}
