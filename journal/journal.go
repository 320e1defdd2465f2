// Package journal records backtest results: CSV files of returns and
// events, a plain text summary and an org-mode report.
package journal

import (
	"time"

	"github.com/rustyeddy/backtester/backtest"
	"github.com/rustyeddy/backtester/market"
)

// TradeRecord is one completed round trip.
type TradeRecord struct {
	TradeID    string // ID of the exit event
	Instrument string
	Size       float64
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	EntryBar   int
	ExitBar    int
	Return     float64
	RealizedPL float64 // Size * Return, 0 without a risk config
	Reason     string
}

// ReturnRow is one bar of the return series.
type ReturnRow struct {
	Bar    int
	Time   time.Time
	Price  float64
	Return float64
	Equity float64 // compounded growth of 1
}

type Journal interface {
	RecordEvent(backtest.Event) error
	RecordReturn(ReturnRow) error
	Close() error
}

// Trades pairs each exit in res with the entry before it.
func Trades(res backtest.Result) []TradeRecord {
	var (
		out   []TradeRecord
		entry *backtest.Event
	)
	for i := range res.Events {
		ev := &res.Events[i]
		switch ev.Kind {
		case backtest.Enter:
			entry = ev
		case backtest.Exit:
			if entry == nil {
				continue
			}
			out = append(out, TradeRecord{
				TradeID:    ev.ID,
				Instrument: ev.Symbol,
				Size:       entry.Size,
				EntryPrice: entry.Price,
				ExitPrice:  ev.Price,
				OpenTime:   entry.Time,
				CloseTime:  ev.Time,
				EntryBar:   entry.Bar,
				ExitBar:    ev.Bar,
				Return:     ev.Return,
				RealizedPL: entry.Size * ev.Return,
				Reason:     ev.Reason,
			})
			entry = nil
		}
	}
	return out
}

// Returns lines up res.Returns with the bars of s. Return i belongs to
// bar i+1.
func Returns(s market.Series, res backtest.Result) []ReturnRow {
	rows := make([]ReturnRow, 0, len(res.Returns))
	equity := 1.0
	for i, r := range res.Returns {
		bar := i + 1
		if bar >= s.Len() {
			break
		}
		equity *= 1 + r
		p := s.At(bar)
		rows = append(rows, ReturnRow{Bar: bar, Time: p.Time, Price: p.Price, Return: r, Equity: equity})
	}
	return rows
}

// Record writes every return row and event of res to j.
func Record(j Journal, s market.Series, res backtest.Result) error {
	for _, row := range Returns(s, res) {
		if err := j.RecordReturn(row); err != nil {
			return err
		}
	}
	for _, ev := range res.Events {
		if err := j.RecordEvent(ev); err != nil {
			return err
		}
	}
	return nil
}
