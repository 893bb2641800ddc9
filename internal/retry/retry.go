// Package retry runs upstream calls under a bounded retry policy.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMaxAttemptsExceeded is returned when every attempt failed.
var ErrMaxAttemptsExceeded = errors.New("max retry attempts exceeded")

// BackoffFunc returns the delay to wait after the given failed attempt (1-based).
type BackoffFunc func(attempt int) time.Duration

// Policy configures Do.
type Policy struct {
	// MaxAttempts includes the initial attempt.
	MaxAttempts int
	Backoff     BackoffFunc
	// IsRetryable decides whether an error is worth another attempt.
	// A nil IsRetryable retries every error.
	IsRetryable func(error) bool
	// OnRetry, when set, is called before sleeping.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Linear backs off base*attempt.
func Linear(base time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt)
	}
}

// Exponential backs off base*2^(attempt-1), capped at limit.
func Exponential(base, limit time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		d := base << (attempt - 1)
		if d <= 0 || d > limit {
			return limit
		}
		return d
	}
}

// NotCanceled retries everything except context cancellation and deadline errors.
func NotCanceled(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Do calls fn until it succeeds, returns a non-retryable error, runs out of
// attempts, or ctx ends. The last error is wrapped in ErrMaxAttemptsExceeded.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.Backoff == nil {
		p.Backoff = func(int) time.Duration { return 0 }
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%w: %w", err, lastErr)
			}
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if p.IsRetryable != nil && !p.IsRetryable(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}

		delay := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrMaxAttemptsExceeded, p.MaxAttempts, lastErr)
}
