package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/backtester/market"
)

// CSV reads a header row followed by one bar per row. The header must name
// a time column (time, timestamp or date) and a price column (close or
// price); other columns are ignored.
//
// Times may be RFC3339, "2006-01-02 15:04:05", "2006-01-02" or integer unix
// seconds. Times without a zone are UTC. Files ending in .xz or .gz are
// decompressed.
type CSV struct {
	Path string
}

func (c *CSV) Load(ctx context.Context) (market.Series, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return market.Series{}, fmt.Errorf("feed: %w", err)
	}
	defer f.Close()

	r, err := decompress(c.Path, f)
	if err != nil {
		return market.Series{}, err
	}
	points, err := ReadCSV(ctx, r)
	if err != nil {
		return market.Series{}, fmt.Errorf("feed: %s: %w", c.Path, err)
	}

	s, err := market.NewSeries(points)
	if err != nil {
		return market.Series{}, malformedf("%s: %v", c.Path, err)
	}
	return s, nil
}

// ReadCSV parses bars from r. Empty rows are skipped.
func ReadCSV(ctx context.Context, r io.Reader) ([]market.Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, malformedf("missing header row")
	}
	if err != nil {
		return nil, malformedf("%v", err)
	}

	timeCol, priceCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "time", "timestamp", "date", "datetime":
			if timeCol < 0 {
				timeCol = i
			}
		case "close", "price":
			if priceCol < 0 {
				priceCol = i
			}
		}
	}
	if timeCol < 0 || priceCol < 0 {
		return nil, malformedf("header %v needs a time and a close column", header)
	}

	var points []market.Point
	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformedf("%v", err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) <= timeCol || len(row) <= priceCol {
			return nil, malformedf("line %d: short row", line)
		}

		t, err := ParseTime(row[timeCol])
		if err != nil {
			return nil, malformedf("line %d: %v", line, err)
		}
		px, err := strconv.ParseFloat(strings.TrimSpace(row[priceCol]), 64)
		if err != nil {
			return nil, malformedf("line %d: bad price %q", line, row[priceCol])
		}
		points = append(points, market.Point{Time: t, Price: px})
	}
	return points, nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime accepts the time formats CSV understands.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad time %q", s)
}

// WriteCSV writes s in the layout ReadCSV reads.
func WriteCSV(w io.Writer, s market.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "close"}); err != nil {
		return err
	}
	for _, p := range s.Points() {
		row := []string{
			p.Time.UTC().Format(time.RFC3339),
			strconv.FormatFloat(p.Price, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
