// Package market holds the price data a backtest replays.
package market

import (
	"fmt"
	"math"
	"time"
)

// Point is one bar of a price series: the bar's close and when it closed.
type Point struct {
	Time  time.Time
	Price float64
}

// Series is an ordered, immutable sequence of points with strictly
// increasing timestamps. The zero value is an empty series.
//
// A Series is owned by its caller; backtests borrow it for the length of a
// run and never modify it. Each index is one bar regardless of the wall-clock
// gap to its neighbours, so callers that need calendar-aware bars must
// resample before building the series.
type Series struct {
	points []Point
}

// NewSeries validates points and returns them as a Series. Timestamps must be
// strictly increasing and prices finite and positive.
func NewSeries(points []Point) (Series, error) {
	for i, p := range points {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price <= 0 {
			return Series{}, fmt.Errorf("series: bar %d: invalid price %v", i, p.Price)
		}
		if i > 0 && !p.Time.After(points[i-1].Time) {
			return Series{}, fmt.Errorf("series: bar %d: time %s not after %s",
				i, p.Time.Format(time.RFC3339), points[i-1].Time.Format(time.RFC3339))
		}
	}

	cp := make([]Point, len(points))
	copy(cp, points)
	return Series{points: cp}, nil
}

// FromPrices builds a Series from bare prices, stamping bar i at midnight UTC
// i days after the unix epoch.
func FromPrices(prices []float64) (Series, error) {
	points := make([]Point, len(prices))
	for i, p := range prices {
		points[i] = Point{
			Time:  time.Unix(int64(i)*86400, 0).UTC(),
			Price: p,
		}
	}
	return NewSeries(points)
}

// MustFromPrices is FromPrices for literals in tests and examples.
func MustFromPrices(prices ...float64) Series {
	s, err := FromPrices(prices)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Series) Len() int { return len(s.points) }

func (s Series) At(i int) Point { return s.points[i] }

// Closes returns a copy of the series prices.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Price
	}
	return out
}

// Points returns a copy of the series points.
func (s Series) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Start and End return the first and last bar times, or the zero time for an
// empty series.
func (s Series) Start() time.Time {
	if len(s.points) == 0 {
		return time.Time{}
	}
	return s.points[0].Time
}

func (s Series) End() time.Time {
	if len(s.points) == 0 {
		return time.Time{}
	}
	return s.points[len(s.points)-1].Time
}

// Slice returns bars [start, end). The result shares storage with s, which
// is safe because neither is ever written.
func (s Series) Slice(start, end int) Series {
	return Series{points: s.points[start:end:end]}
}

// Partition splits the series into contiguous, non-overlapping windows of
// size bars. A trailing window shorter than size is dropped. size < 1
// yields no windows.
func (s Series) Partition(size int) []Series {
	if size < 1 {
		return nil
	}
	n := len(s.points) / size
	out := make([]Series, 0, n)
	for w := 0; w < n; w++ {
		out = append(out, s.Slice(w*size, (w+1)*size))
	}
	return out
}
