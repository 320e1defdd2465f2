package feed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/rustyeddy/backtester/market"
)

// BarRecord is the on-disk Parquet row.
type BarRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Close     float64 `parquet:"close"`
}

// Parquet reads BarRecord rows from a single file. When Symbol is set only
// its rows are used. Rows are sorted by time.
type Parquet struct {
	Path   string
	Symbol string
}

func (p *Parquet) Load(ctx context.Context) (market.Series, error) {
	if err := ctx.Err(); err != nil {
		return market.Series{}, err
	}
	if _, err := os.Stat(p.Path); err != nil {
		return market.Series{}, fmt.Errorf("feed: %w", err)
	}

	rows, err := parquet.ReadFile[BarRecord](p.Path)
	if err != nil {
		return market.Series{}, malformedf("%s: %v", p.Path, err)
	}

	points := make([]market.Point, 0, len(rows))
	for _, r := range rows {
		if p.Symbol != "" && r.Symbol != p.Symbol {
			continue
		}
		points = append(points, market.Point{Time: time.UnixMilli(r.Timestamp).UTC(), Price: r.Close})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })

	s, err := market.NewSeries(points)
	if err != nil {
		return market.Series{}, malformedf("%s: %v", p.Path, err)
	}
	return s, nil
}

// WriteParquet writes s to path as BarRecord rows tagged with symbol,
// creating parent directories.
func WriteParquet(path, symbol string, s market.Series) error {
	records := make([]BarRecord, 0, s.Len())
	for _, pt := range s.Points() {
		records = append(records, BarRecord{
			Symbol:    symbol,
			Timestamp: pt.Time.UnixMilli(),
			Close:     pt.Price,
		})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}
