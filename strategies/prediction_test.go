package strategies

import (
	"math"
	"testing"

	"github.com/rustyeddy/backtester/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrediction_Classes(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	s, err := NewPrediction([]float64{1, 0, nan, 0.7, 0.2, 0.5}, DefaultPredictionCutoff, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "PREDICTION(0.5)", s.Name())

	got := s.GenerateSignals([]float64{10, 11, 12, 13, 14, 15})
	assert.Equal(t, []Signal{Buy, Sell, Hold, Buy, Sell, Buy}, got)
}

func TestPrediction_PriceThresholds(t *testing.T) {
	t.Parallel()

	// buy only when cheap, sell only when dear
	s, err := NewPrediction([]float64{1, 1, 0, 0}, 0.5, 100, 100)
	require.NoError(t, err)

	got := s.GenerateSignals([]float64{99, 101, 99, 101})
	assert.Equal(t, []Signal{Buy, Hold, Hold, Sell}, got)
}

func TestPrediction_CopiesValues(t *testing.T) {
	t.Parallel()

	values := []float64{1, 1}
	s, err := NewPrediction(values, 0.5, 0, 0)
	require.NoError(t, err)
	values[0] = 0

	assert.Equal(t, []Signal{Buy, Buy}, s.GenerateSignals([]float64{1, 2}))
}

func TestPrediction_LengthMismatch(t *testing.T) {
	t.Parallel()

	s, err := NewPrediction([]float64{1, 0, 1}, 0.5, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	assert.Nil(t, s.GenerateSignals(ramp(4)))
	assert.Nil(t, s.GenerateSignals(ramp(2)))

	err = s.Check(4)
	require.ErrorIs(t, err, market.ErrConfig)
	assert.Contains(t, err.Error(), "3 values for 4 bars")
	assert.NoError(t, s.Check(3))
}

func TestNewPrediction_Validation(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name                        string
		cutoff, buyBelow, sellAbove float64
	}{
		{"nan cutoff", math.NaN(), 0, 0},
		{"inf cutoff", math.Inf(1), 0, 0},
		{"negative buy_below", 0.5, -1, 0},
		{"nan sell_above", 0.5, 0, math.NaN()},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewPrediction(nil, tc.cutoff, tc.buyBelow, tc.sellAbove)
			assert.ErrorIs(t, err, market.ErrConfig)
		})
	}
}

func TestRegistry_PredictionInput(t *testing.T) {
	t.Parallel()

	reg := Builtins()
	_, err := reg.New("prediction", nil)
	require.ErrorIs(t, err, market.ErrConfig)
	assert.Contains(t, err.Error(), `"prediction" column`)

	reg.SetInput(PredictionInput, []float64{0, 1, 1})
	s, err := reg.New("model", Params{"cutoff": 0.9, "buy_below": 50})
	require.NoError(t, err)
	assert.Equal(t, "PREDICTION(0.9)", s.Name())
	assert.Equal(t, []Signal{Sell, Buy, Hold}, s.GenerateSignals([]float64{10, 20, 60}))

	_, err = reg.New("prediction", Params{"threshold": 1})
	assert.ErrorIs(t, err, market.ErrConfig)
}
