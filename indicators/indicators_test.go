package indicators

import (
	"math/rand"
	"testing"

	"github.com/rustyeddy/backtester/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_RejectZeroWindow(t *testing.T) {
	t.Parallel()

	_, err := NewSMA(0)
	assert.ErrorIs(t, err, market.ErrConfig)
	_, err = NewEMA(0)
	assert.ErrorIs(t, err, market.ErrConfig)
	_, err = NewRSI(-3)
	assert.ErrorIs(t, err, market.ErrConfig)
}

func TestSMA_ShrinkingWindow(t *testing.T) {
	t.Parallel()

	sma, err := NewSMA(2)
	require.NoError(t, err)
	assert.Equal(t, "SMA(2)", sma.Name())

	got := sma.Compute([]float64{1, 2, 3, 4, 5})
	assert.InDeltaSlice(t, []float64{1, 1.5, 2.5, 3.5, 4.5}, got, 1e-12)
}

func TestSMA_WindowLargerThanInput(t *testing.T) {
	t.Parallel()

	sma, err := NewSMA(10)
	require.NoError(t, err)

	got := sma.Compute([]float64{2, 4, 6})
	assert.InDeltaSlice(t, []float64{2, 3, 4}, got, 1e-12)
}

func TestSMA_LargeValueLeavesWindow(t *testing.T) {
	t.Parallel()

	sma, err := NewSMA(3)
	require.NoError(t, err)

	got := sma.Compute([]float64{1e16, 1, 1, 1, 1, 1})
	assert.Equal(t, []float64{1, 1, 1}, got[3:])
}

func TestSMA_FlatWindowsAreExact(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		xs := make([]float64, 0, 120)
		px := 100.0
		for i := 0; i < 80; i++ {
			px *= 1 + (rng.Float64()-0.5)*0.04
			xs = append(xs, px)
		}
		for i := 0; i < 40; i++ {
			xs = append(xs, px)
		}

		for _, w := range []int{3, 7, 20} {
			sma, err := NewSMA(w)
			require.NoError(t, err)
			got := sma.Compute(xs)
			for i := 80 + w - 1; i < len(xs); i++ {
				require.Equal(t, px, got[i], "trial %d window %d bar %d", trial, w, i)
			}
		}
	}
}

func TestEMA_KnownSequence(t *testing.T) {
	t.Parallel()

	// alpha = 2/(3+1) = 0.5
	// 10, 0.5*11+0.5*10, 0.5*12+0.5*10.5, 0.5*13+0.5*11.25
	ema, err := NewEMA(3)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, ema.Alpha(), 1e-12)

	got := ema.Compute([]float64{10, 11, 12, 13})
	assert.InDeltaSlice(t, []float64{10, 10.5, 11.25, 12.125}, got, 1e-9)
}

func TestRSI_KnownSequence(t *testing.T) {
	t.Parallel()

	rsi, err := NewRSI(3)
	require.NoError(t, err)

	got := rsi.Compute([]float64{1, 2, 3, 2, 1, 2, 3})
	require.Len(t, got, 7)

	assert.InDelta(t, 0.0, got[0], 1e-9)
	assert.InDelta(t, 100.0, got[1], 1e-6)
	assert.InDelta(t, 100.0-100.0/3.0, got[3], 1e-6)
	assert.InDelta(t, 100.0-100.0/1.5, got[4], 1e-6)

	for i, v := range got {
		assert.GreaterOrEqual(t, v, 0.0, "bar %d", i)
		assert.LessOrEqual(t, v, 100.0, "bar %d", i)
	}
}

func TestEmptyInput(t *testing.T) {
	t.Parallel()

	sma, _ := NewSMA(3)
	ema, _ := NewEMA(3)
	rsi, _ := NewRSI(3)

	for _, ind := range []Indicator{sma, ema, rsi} {
		out := ind.Compute(nil)
		assert.NotNil(t, out, ind.Name())
		assert.Empty(t, out, ind.Name())
	}
}

func TestOutputLengthMatchesInput(t *testing.T) {
	t.Parallel()

	xs := []float64{5, 4, 6, 7, 3, 2, 8, 9, 1}
	for w := 1; w <= len(xs)+1; w++ {
		sma, _ := NewSMA(w)
		ema, _ := NewEMA(w)
		rsi, _ := NewRSI(w)
		for _, ind := range []Indicator{sma, ema, rsi} {
			assert.Len(t, ind.Compute(xs), len(xs), ind.Name())
		}
	}
}
