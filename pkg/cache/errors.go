package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable matches errors from a Redis cache or a MongoDB source that
// did not answer: refused connections, timeouts, dropped sockets. Such
// errors are retried by RetryWithBackoff.
var ErrUnavailable = errors.New("unavailable")

// BackendError describes a failed round trip to a remote backend.
type BackendError struct {
	Backend string // "redis" or "mongo"
	Op      string // e.g. "ping localhost:6379", "find outlines"
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Backend, e.Op, ErrUnavailable, e.Err)
}

// Unwrap exposes both ErrUnavailable and the driver error.
func (e *BackendError) Unwrap() []error { return []error{ErrUnavailable, e.Err} }

// Unavailable reports that backend could not complete op. The result is
// retryable.
func Unavailable(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	return Retryable(&BackendError{Backend: backend, Op: op, Err: err})
}

// RetryableError marks an error as transient.
type RetryableError struct{ Err error }

// Retryable wraps err so RetryWithBackoff tries again. nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryDelays are the pauses between attempts; len(retryDelays)+1 attempts
// are made in total.
var retryDelays = []time.Duration{time.Second, 2 * time.Second}

// RetryWithBackoff calls fn until it succeeds, returns an error that is not
// retryable, or runs out of attempts. The last error is returned unchanged.
// Waiting between attempts stops early when ctx is done.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	err := fn()
	for _, delay := range retryDelays {
		if err == nil || !IsRetryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		err = fn()
	}
	return err
}
