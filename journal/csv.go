package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/backtester/backtest"
)

var (
	returnsHeader = []string{"bar", "time", "price", "return", "equity"}
	eventsHeader  = []string{"event_id", "kind", "symbol", "bar", "time", "price", "size", "return", "reason"}
)

type CSVJournal struct {
	returns *csv.Writer
	events  *csv.Writer
	rf, ef  *os.File
}

func NewCSV(returnsPath, eventsPath string) (*CSVJournal, error) {
	rf, err := os.Create(returnsPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(eventsPath)
	if err != nil {
		rf.Close()
		return nil, err
	}

	j := &CSVJournal{
		returns: csv.NewWriter(rf),
		events:  csv.NewWriter(ef),
		rf:      rf,
		ef:      ef,
	}
	if err := j.write(j.returns, returnsHeader); err != nil {
		j.Close()
		return nil, err
	}
	if err := j.write(j.events, eventsHeader); err != nil {
		j.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSVJournal) write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSVJournal) RecordReturn(r ReturnRow) error {
	return j.write(j.returns, []string{
		strconv.Itoa(r.Bar),
		r.Time.UTC().Format(time.RFC3339),
		f(r.Price),
		f(r.Return),
		f(r.Equity),
	})
}

func (j *CSVJournal) RecordEvent(e backtest.Event) error {
	return j.write(j.events, []string{
		e.ID,
		string(e.Kind),
		e.Symbol,
		strconv.Itoa(e.Bar),
		e.Time.UTC().Format(time.RFC3339),
		f(e.Price),
		f(e.Size),
		f(e.Return),
		e.Reason,
	})
}

func (j *CSVJournal) Close() error {
	j.returns.Flush()
	j.events.Flush()

	var first error
	for _, err := range []error{j.returns.Error(), j.events.Error(), j.rf.Close(), j.ef.Close()} {
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
