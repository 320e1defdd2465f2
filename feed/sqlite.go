package feed

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/backtester/market"
)

const Schema = `
CREATE TABLE IF NOT EXISTS bars (
	symbol TEXT NOT NULL,
	time DATETIME NOT NULL,
	close REAL NOT NULL,
	PRIMARY KEY (symbol, time)
);

CREATE INDEX IF NOT EXISTS idx_bars_time ON bars(time);
`

// Fixed width so that text order is time order.
const sqliteTimeLayout = "2006-01-02 15:04:05.000000000"

// SQLite reads closes from the bars table of a database file. When Symbol
// is empty the file must hold a single symbol.
type SQLite struct {
	Path   string
	Symbol string
}

func (s *SQLite) Load(ctx context.Context) (market.Series, error) {
	// sql.Open would create a missing file.
	if _, err := os.Stat(s.Path); err != nil {
		return market.Series{}, fmt.Errorf("feed: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+s.Path+"?mode=ro")
	if err != nil {
		return market.Series{}, fmt.Errorf("feed: %w", err)
	}
	defer db.Close()

	q := `SELECT time, close FROM bars ORDER BY time`
	var args []any
	if s.Symbol != "" {
		q = `SELECT time, close FROM bars WHERE symbol = ? ORDER BY time`
		args = append(args, s.Symbol)
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return market.Series{}, fmt.Errorf("feed: %s: %w", s.Path, err)
	}
	defer rows.Close()

	var points []market.Point
	for rows.Next() {
		var p market.Point
		if err := rows.Scan(&p.Time, &p.Price); err != nil {
			return market.Series{}, malformedf("%s: %v", s.Path, err)
		}
		p.Time = p.Time.UTC()
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return market.Series{}, fmt.Errorf("feed: %s: %w", s.Path, err)
	}

	series, err := market.NewSeries(points)
	if err != nil {
		return market.Series{}, malformedf("%s: %v", s.Path, err)
	}
	return series, nil
}

// WriteSQLite stores s under symbol in the database at path, creating the
// schema if needed. Existing bars with the same time are replaced.
func WriteSQLite(ctx context.Context, path, symbol string, s market.Series) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO bars (symbol, time, close) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range s.Points() {
		if _, err := stmt.ExecContext(ctx, symbol, p.Time.UTC().Format(sqliteTimeLayout), p.Price); err != nil {
			return err
		}
	}
	return tx.Commit()
}
