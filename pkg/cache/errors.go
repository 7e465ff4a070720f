package cache

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidOptions is returned by [Open] for unusable configuration.
var ErrInvalidOptions = errors.New("invalid cache options")

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. Nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff calls fn up to 1+retries times, doubling the delay
// (starting at one second) after each retryable failure. Errors not wrapped
// with Retryable are returned immediately.
func RetryWithBackoff(ctx context.Context, retries int, fn func() error) error {
	delay := time.Second
	var lastErr error

	for i := 0; i <= retries; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
