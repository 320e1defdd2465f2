package backtest

import (
	"sync"

	"go.uber.org/zap"
)

// WalkForward splits the series into consecutive windows of
// Config.WalkForward bars, dropping a shorter trailing window, and
// backtests each independently on Config.Workers goroutines. Results are
// in window order. With WalkForward == 0 it returns no windows.
func (e *Engine) WalkForward() ([]WindowResult, error) {
	windows := e.series.Partition(e.cfg.WalkForward)
	if len(windows) == 0 {
		return nil, nil
	}

	results := make([]WindowResult, len(windows))
	errs := make([]error, len(windows))

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := min(e.cfg.workers(), len(windows))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := e.run(windows[i], nil)
				if err != nil {
					errs[i] = err
					continue
				}
				results[i] = WindowResult{
					Index:    i,
					FirstBar: i * e.cfg.WalkForward,
					Result:   res,
				}
			}
		}()
	}

	for i := range windows {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	e.log.Info("walk-forward complete",
		zap.Int("windows", len(results)),
		zap.Int("window_bars", e.cfg.WalkForward),
		zap.Int("workers", workers),
	)
	return results, nil
}
