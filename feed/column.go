package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// LoadColumn reads one numeric column from the CSV file at path, one value
// per bar in file order. It skips the same empty rows as CSV, so a column
// stored next to the prices lines up with the series CSV loads from the same
// file. Compressed files are read like CSV does.
func LoadColumn(ctx context.Context, path, column string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	defer f.Close()

	r, err := decompress(path, f)
	if err != nil {
		return nil, err
	}
	values, err := ReadCSVColumn(ctx, r, column)
	if err != nil {
		return nil, fmt.Errorf("feed: %s: %w", path, err)
	}
	return values, nil
}

// ReadCSVColumn parses the column named column (case-insensitive) from r.
// An empty cell reads as NaN.
func ReadCSVColumn(ctx context.Context, r io.Reader, column string) ([]float64, error) {
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

	want := strings.ToLower(strings.TrimSpace(column))
	col := -1
	for i, h := range header {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, malformedf("header %v has no %q column", header, column)
	}

	var values []float64
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
		if len(row) <= col {
			return nil, malformedf("line %d: short row", line)
		}

		cell := strings.TrimSpace(row[col])
		if cell == "" {
			values = append(values, math.NaN())
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, malformedf("line %d: bad %s %q", line, column, row[col])
		}
		values = append(values, v)
	}
	return values, nil
}
