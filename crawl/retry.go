package crawl

import (
	"context"
	"errors"
	"net"
	"slices"
	"syscall"
	"time"

	"github.com/fwojciec/docdex"
)

// DefaultRetryableStatuses are the HTTP statuses worth retrying.
func DefaultRetryableStatuses() []int {
	return []int{408, 429, 500, 502, 503, 504}
}

// RetryOptions configures Do.
type RetryOptions struct {
	// MaxRetries is the number of retries after the initial attempt.
	// Defaults to 3.
	MaxRetries int

	// BaseDelay is the backoff base: attempt n waits BaseDelay × 2^(n-1).
	// Defaults to 1s.
	BaseDelay time.Duration

	// RetryableStatuses overrides DefaultRetryableStatuses.
	RetryableStatuses []int

	// OnRetry, if set, is called before each retry sleep.
	OnRetry func(attempt int, delay time.Duration, err error)
}

func (o RetryOptions) withDefaults() RetryOptions {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = time.Second
	}
	if o.RetryableStatuses == nil {
		o.RetryableStatuses = DefaultRetryableStatuses()
	}
	return o
}

// Do runs op with bounded retry and exponential backoff. Only errors
// classified retryable (see Retryable) are retried; everything else returns
// immediately. The attempt count covers all attempts made, including the
// final one.
func Do[T any](ctx context.Context, op func(context.Context) (T, error), opts RetryOptions) (T, int, error) {
	opts = opts.withDefaults()

	var zero T
	var lastErr error

	maxAttempts := opts.MaxRetries + 1
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, attempt, nil
		}
		lastErr = err

		if attempt == maxAttempts || !Retryable(err, opts.RetryableStatuses) {
			return zero, attempt, err
		}

		delay := opts.BaseDelay << (attempt - 1)
		if opts.OnRetry != nil {
			opts.OnRetry(attempt, delay, err)
		}

		select {
		case <-ctx.Done():
			return zero, attempt, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, maxAttempts, lastErr
}

// Result is the outcome of one retried operation, for callers that collect
// outcomes instead of propagating errors.
type Result[T any] struct {
	Value    T
	Attempts int
	Err      error
}

// Ok reports whether the operation succeeded.
func (r Result[T]) Ok() bool { return r.Err == nil }

// DoValue runs op like Do but packages the outcome as a Result.
func DoValue[T any](ctx context.Context, op func(context.Context) (T, error), opts RetryOptions) Result[T] {
	v, attempts, err := Do(ctx, op, opts)
	return Result[T]{Value: v, Attempts: attempts, Err: err}
}

// Retryable reports whether an error is worth retrying: its HTTP status is in
// statuses, or it is a network-level failure (timeout, connection reset, DNS).
func Retryable(err error, statuses []int) bool {
	if err == nil {
		return false
	}
	if status := docdex.ErrorStatus(err); status != 0 {
		return slices.Contains(statuses, status)
	}
	return isNetworkError(err)
}

// isNetworkError classifies transport-level failures that carry no HTTP
// status.
func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE)
}
