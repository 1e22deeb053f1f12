package gateway

import (
	"context"
	"errors"
	"time"
)

// Policy is a bounded fixed-backoff retry policy. Passed by value; no
// hidden defaults.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
	// Retryable classifies errors; nil means DefaultRetryable.
	Retryable func(error) bool
}

// DefaultRetryable retries everything except interruption: a canceled or
// expired context propagates immediately.
func DefaultRetryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Execute runs op until it succeeds, fails unretryably, or the attempt
// cap is reached. The last error is surfaced.
func (p Policy) Execute(ctx context.Context, op func() error) error {
	retryable := p.Retryable
	if retryable == nil {
		retryable = DefaultRetryable
	}

	var err error
	for attempt := 1; ; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if !retryable(err) || attempt >= p.MaxAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Backoff):
		}
	}
}
