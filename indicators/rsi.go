package indicators

import "fmt"

// rsiEpsilon keeps the relative strength finite when there were no losses
// in the window.
const rsiEpsilon = 1e-9

// RSI is the relative strength index. Average gains and losses use the same
// shrinking-window mean as SMA; the first bar has no predecessor and counts
// as a zero change.
//
// Values lie in [0, 100]. A window with gains and no losses approaches 100
// without reaching it; a window with no movement at all reads 0.
type RSI struct {
	window int
}

// NewRSI returns an RSI over window price changes.
func NewRSI(window int) (*RSI, error) {
	if err := checkWindow("rsi", window); err != nil {
		return nil, err
	}
	return &RSI{window: window}, nil
}

func (r *RSI) Name() string { return fmt.Sprintf("RSI(%d)", r.window) }
func (r *RSI) Window() int  { return r.window }

func (r *RSI) Compute(xs []float64) []float64 {
	gains := make([]float64, len(xs))
	losses := make([]float64, len(xs))
	for i := 1; i < len(xs); i++ {
		d := xs[i] - xs[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	avgGain := rollingMean(gains, r.window)
	avgLoss := rollingMean(losses, r.window)

	out := make([]float64, len(xs))
	for i := range xs {
		rs := avgGain[i] / (avgLoss[i] + rsiEpsilon)
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
