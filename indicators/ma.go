package indicators

import "fmt"

// SMA is a simple moving average. The window shrinks at the start of the
// sequence instead of leaving the first values undefined, so output[0]
// equals input[0].
type SMA struct {
	window int
}

// NewSMA returns an SMA over window values.
func NewSMA(window int) (*SMA, error) {
	if err := checkWindow("sma", window); err != nil {
		return nil, err
	}
	return &SMA{window: window}, nil
}

func (m *SMA) Name() string { return fmt.Sprintf("SMA(%d)", m.window) }
func (m *SMA) Window() int  { return m.window }

func (m *SMA) Compute(xs []float64) []float64 {
	return rollingMean(xs, m.window)
}

// rollingMean averages xs[max(0,i-w+1)..i] for each i. Each window is
// summed on its own as offsets from its first value, so a window of equal
// values averages to exactly that value and a large value leaves no error
// behind once it drops out.
func rollingMean(xs []float64, w int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		start := max(0, i-w+1)
		base := xs[start]
		d := 0.0
		for _, x := range xs[start+1 : i+1] {
			d += x - base
		}
		out[i] = base + d/float64(i-start+1)
	}
	return out
}

// EMA is an exponential moving average with alpha = 2/(window+1), seeded
// with the first input value.
type EMA struct {
	window int
	alpha  float64
}

// NewEMA returns an EMA with the given span.
func NewEMA(window int) (*EMA, error) {
	if err := checkWindow("ema", window); err != nil {
		return nil, err
	}
	return &EMA{
		window: window,
		alpha:  2.0 / float64(window+1),
	}, nil
}

func (e *EMA) Name() string   { return fmt.Sprintf("EMA(%d)", e.window) }
func (e *EMA) Window() int    { return e.window }
func (e *EMA) Alpha() float64 { return e.alpha }

func (e *EMA) Compute(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		if i == 0 {
			out[i] = x
			continue
		}
		out[i] = e.alpha*x + (1.0-e.alpha)*out[i-1]
	}
	return out
}
