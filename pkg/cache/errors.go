package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks transient failures talking to a remote backend.
var ErrNetwork = errors.New("network error")

// RetryableError marks a backend failure worth another attempt.
type RetryableError struct{ Err error }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether any error in err's chain was marked Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryDelay is the wait before the first retry; it doubles per attempt.
var retryDelay = 100 * time.Millisecond

// maxAttempts bounds RetryWithBackoff. A render never waits on the cache
// longer than retryDelay*(2^(maxAttempts-1)-1).
const maxAttempts = 3

// RetryWithBackoff calls fn until it succeeds, returns a permanent error,
// or maxAttempts is reached. The last error is returned.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := retryDelay
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !IsRetryable(err) || attempt == maxAttempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
