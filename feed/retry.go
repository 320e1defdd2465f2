package feed

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/rustyeddy/backtester/market"
)

// Retrier retries a Source with exponential backoff. Configuration errors,
// missing files and malformed data fail at once.
type Retrier struct {
	Source     Source
	MaxRetries uint64
	// InitialInterval of the backoff, 0 means 200ms.
	InitialInterval time.Duration

	log *zap.Logger
}

// Retry wraps src so that transient load failures are retried up to
// maxRetries times.
func Retry(src Source, maxRetries uint64, log *zap.Logger) *Retrier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Retrier{Source: src, MaxRetries: maxRetries, log: log}
}

func permanent(err error) bool {
	return errors.Is(err, market.ErrConfig) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, ErrMalformed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (r *Retrier) Load(ctx context.Context) (market.Series, error) {
	eb := backoff.NewExponentialBackOff()
	if r.InitialInterval > 0 {
		eb.InitialInterval = r.InitialInterval
	} else {
		eb.InitialInterval = 200 * time.Millisecond
	}
	eb.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(eb, r.MaxRetries), ctx)

	var s market.Series
	attempt := 0
	op := func() error {
		attempt++
		var err error
		s, err = r.Source.Load(ctx)
		if err != nil && permanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.log.Warn("price series load failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return market.Series{}, err
	}
	return s, nil
}
