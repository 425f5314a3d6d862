package store

import (
	"context"
	"time"
)

// RetryPolicy replays a transaction that failed with a serialization failure or a
// deadlock. Any other error is returned on the first attempt.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

func (p RetryPolicy) Run(ctx context.Context, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt >= p.MaxRetries {
			return err
		}

		timer := time.NewTimer(time.Duration(attempt+1) * p.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
