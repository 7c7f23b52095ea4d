// Package retry provides a pluggable retry mechanism for remote calls,
// injected through the context. By default no retries are performed; callers
// opt in by placing a Retrier in the context:
//
//	retrier := retry.NewExponentialBackoffRetrier().
//	    WithMaxAttempts(3).
//	    WithInitialDelay(100 * time.Millisecond)
//	ctx = retry.ToContext(ctx, retrier)
//
// Custom policies implement the Retrier interface.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Retrier defines the interface for retry behavior.
// Implementations determine when to retry and how long to wait between attempts.
type Retrier interface {
	// ShouldRetry determines if an error should be retried.
	// attempt is the current attempt number (1-indexed).
	ShouldRetry(err error, attempt int) bool

	// Wait waits before the next retry attempt.
	// attempt is the current attempt number (1-indexed).
	// Returns an error if the context was cancelled during the wait.
	Wait(ctx context.Context, attempt int) error

	// MaxAttempts returns the maximum number of attempts (including the
	// initial attempt). Returns 0 for unlimited attempts (not recommended).
	MaxAttempts() int
}

// HTTPStatusError is implemented by errors that carry an HTTP status code.
// The backoff retrier uses it to separate transient server errors from
// client errors that must surface immediately.
type HTTPStatusError interface {
	error
	HTTPStatus() int
}

// NoopRetrier is a retrier that never retries.
// This is the default retrier used when none is provided in the context.
type NoopRetrier struct{}

// ShouldRetry always returns false for NoopRetrier.
func (r *NoopRetrier) ShouldRetry(err error, attempt int) bool {
	return false
}

// Wait is a no-op for NoopRetrier.
func (r *NoopRetrier) Wait(ctx context.Context, attempt int) error {
	return nil
}

// MaxAttempts returns 1 for NoopRetrier (no retries).
func (r *NoopRetrier) MaxAttempts() int {
	return 1
}

// ExponentialBackoffRetrier implements exponential backoff retry logic.
// It retries on network errors, timeouts, and 5xx status codes. It never
// retries 4xx client errors: in particular, conflicts and validation
// failures must reach the caller unchanged on the first attempt.
type ExponentialBackoffRetrier struct {
	// MaxAttemptsValue is the maximum number of attempts (including the
	// initial attempt). Default is 3.
	MaxAttemptsValue int

	// InitialDelay is the initial delay before the first retry.
	// Default is 100ms.
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	// Default is 5 seconds.
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier.
	// Default is 2.0.
	Multiplier float64

	// Jitter enables random jitter to prevent thundering herd.
	// Default is true.
	Jitter bool
}

// NewExponentialBackoffRetrier creates a new ExponentialBackoffRetrier with default values.
func NewExponentialBackoffRetrier() *ExponentialBackoffRetrier {
	return &ExponentialBackoffRetrier{
		MaxAttemptsValue: 3,
		InitialDelay:     100 * time.Millisecond,
		MaxDelay:         5 * time.Second,
		Multiplier:       2.0,
		Jitter:           true,
	}
}

// ShouldRetry determines if an error should be retried.
// Returns true for network errors (timeouts, connection refused) and
// 5xx server errors; false for 4xx client errors and context cancellation.
func (r *ExponentialBackoffRetrier) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}

	maxAttempts := r.MaxAttempts()
	if maxAttempts > 0 && attempt >= maxAttempts {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.HTTPStatus() >= 500
	}

	// Network-level errors without a status code are worth retrying.
	var netErr interface {
		Error() string
		Timeout() bool
	}
	return errors.As(err, &netErr)
}

// Wait waits before the next retry attempt using exponential backoff.
func (r *ExponentialBackoffRetrier) Wait(ctx context.Context, attempt int) error {
	// initialDelay * (multiplier ^ (attempt - 1)), capped at MaxDelay
	delay := float64(r.InitialDelay) * math.Pow(r.Multiplier, float64(attempt-1))
	if delay > float64(r.MaxDelay) {
		delay = float64(r.MaxDelay)
	}

	if r.Jitter {
		jitter := rand.Float64() * delay
		delay = delay*0.5 + jitter*0.5
	}

	timer := time.NewTimer(time.Duration(delay))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// MaxAttempts returns the maximum number of attempts.
func (r *ExponentialBackoffRetrier) MaxAttempts() int {
	if r.MaxAttemptsValue <= 0 {
		return 3
	}
	return r.MaxAttemptsValue
}

// WithMaxAttempts sets the maximum number of attempts.
func (r *ExponentialBackoffRetrier) WithMaxAttempts(attempts int) *ExponentialBackoffRetrier {
	r.MaxAttemptsValue = attempts
	return r
}

// WithInitialDelay sets the initial delay before the first retry.
func (r *ExponentialBackoffRetrier) WithInitialDelay(delay time.Duration) *ExponentialBackoffRetrier {
	r.InitialDelay = delay
	return r
}

// WithMaxDelay sets the maximum delay between retries.
func (r *ExponentialBackoffRetrier) WithMaxDelay(delay time.Duration) *ExponentialBackoffRetrier {
	r.MaxDelay = delay
	return r
}

// WithMultiplier sets the exponential backoff multiplier.
func (r *ExponentialBackoffRetrier) WithMultiplier(multiplier float64) *ExponentialBackoffRetrier {
	r.Multiplier = multiplier
	return r
}

// WithoutJitter disables jitter for deterministic delays in tests.
func (r *ExponentialBackoffRetrier) WithoutJitter() *ExponentialBackoffRetrier {
	r.Jitter = false
	return r
}

// Do runs fn with the retry policy found in the context. The first
// non-retryable outcome (success or permanent error) is returned.
func Do[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	retrier := FromContextOrNoop(ctx)

	var result T
	var err error
	for attempt := 1; ; attempt++ {
		result, err = fn()
		if err == nil || !retrier.ShouldRetry(err, attempt) {
			return result, err
		}
		if waitErr := retrier.Wait(ctx, attempt); waitErr != nil {
			return result, waitErr
		}
	}
}
