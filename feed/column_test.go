package feed

import (
	"context"
	"io/fs"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadColumn(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "preds.csv",
		"date,close,Prediction\n"+
			"2024-01-02,100,1\n"+
			"\n"+
			"2024-01-03,101,\n"+
			"2024-01-04,102,0.25\n")

	got, err := LoadColumn(context.Background(), path, "prediction")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 1.0, got[0])
	assert.True(t, math.IsNaN(got[1]))
	assert.Equal(t, 0.25, got[2])

	s, err := (&CSV{Path: path}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, s.Len(), len(got))
}

func TestLoadColumn_Compressed(t *testing.T) {
	t.Parallel()

	want := sampleSeries(t)
	path := filepath.Join(t.TempDir(), "prices.csv.xz")
	require.NoError(t, CreateCSV(path, want))

	got, err := LoadColumn(context.Background(), path, "close")
	require.NoError(t, err)
	assert.Equal(t, want.Closes(), got)
}

func TestLoadColumn_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"empty", "", "missing header"},
		{"no column", "time,close\n2024-01-02,1\n", `no "signal" column`},
		{"bad value", "time,close,signal\n2024-01-02,1,up\n", "line 2: bad signal"},
		{"short row", "time,close,signal\n2024-01-02,1\n", "line 2: short row"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadColumn(context.Background(), writeFile(t, "in.csv", tt.body), "signal")
			require.ErrorIs(t, err, ErrMalformed)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	_, err := LoadColumn(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), "signal")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
