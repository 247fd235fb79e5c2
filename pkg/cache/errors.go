package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for caching operations.
var (
	// ErrTransform is returned when the glitch transform could not render a frame.
	ErrTransform = errors.New("transform failed")

	// ErrExhausted is returned by Retry when every attempt failed.
	ErrExhausted = errors.New("retry attempts exhausted")
)

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff configures Retry.
type Backoff struct {
	// Attempts bounds the number of calls. Zero or negative retries forever.
	Attempts int

	// Initial is the delay after the first failure. It doubles after
	// each further failure up to Max.
	Initial time.Duration
	Max     time.Duration
}

// DefaultBackoff suits cheap local work such as re-rendering a frame.
var DefaultBackoff = Backoff{
	Attempts: 100,
	Initial:  time.Millisecond,
	Max:      250 * time.Millisecond,
}

// Retry calls fn until it succeeds, returns a non-retryable error,
// runs out of attempts, or ctx is cancelled. fn receives the zero-based
// attempt number. Only errors wrapped with Retryable trigger retries.
func Retry(ctx context.Context, b Backoff, fn func(attempt int) error) error {
	delay := b.Initial
	var lastErr error

	for attempt := 0; b.Attempts <= 0 || attempt < b.Attempts; attempt++ {
		if err := fn(attempt); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if b.Attempts > 0 && attempt == b.Attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay = min(delay*2, max(b.Max, b.Initial))
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, b.Attempts, lastErr)
}
