// Package feed loads price series from files: CSV, Parquet and SQLite.
package feed

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rustyeddy/backtester/market"
)

// ErrMalformed matches errors caused by the content of a data file rather
// than by access to it. Retrying does not help.
var ErrMalformed = errors.New("malformed price data")

func malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformed}, args...)...)
}

// Source supplies a complete, time-ordered price series.
type Source interface {
	Load(ctx context.Context) (market.Series, error)
}

// Kinds accepted by Open.
const (
	KindCSV     = "csv"
	KindParquet = "parquet"
	KindSQLite  = "sqlite"
)

// Open returns the source for kind. An empty kind is inferred from the file
// extension.
func Open(kind, path, symbol string) (Source, error) {
	if path == "" {
		return nil, market.Configf("data.path", "is required")
	}
	if kind == "" {
		kind = KindFromPath(path)
	}

	switch strings.ToLower(kind) {
	case KindCSV:
		return &CSV{Path: path}, nil
	case KindParquet:
		return &Parquet{Path: path, Symbol: symbol}, nil
	case KindSQLite, "sqlite3":
		return &SQLite{Path: path, Symbol: symbol}, nil
	default:
		return nil, market.Configf("data.kind", "unknown source kind %q (want csv, parquet or sqlite)", kind)
	}
}

// KindFromPath guesses a source kind from a file extension. A trailing
// .xz or .gz is looked through.
func KindFromPath(path string) string {
	if compression(path) != "" {
		path = strings.TrimSuffix(path, filepath.Ext(path))
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return KindCSV
	case ".parquet", ".pq":
		return KindParquet
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	default:
		return ""
	}
}
