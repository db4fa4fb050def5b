package llm

import (
	"context"
	"errors"
	"time"
)

// retryableError marks a failure that should trigger another attempt.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	return errors.As(err, new(*retryableError))
}

// retryLinear runs fn up to attempts times. Only errors wrapped in
// retryableError are retried; the wait before attempt n+1 is n*step.
// The last error is returned when every attempt fails.
func retryLinear(ctx context.Context, attempts int, step time.Duration, sleep Sleeper, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			if err := sleep(ctx, time.Duration(i+1)*step); err != nil {
				return err
			}
		}
	}
	return lastErr
}
