// Package retry provides a reusable retry policy: a bounded number of attempts,
// a backoff function and a predicate deciding which errors are worth retrying.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"
)

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int

	// Backoff returns the delay to wait after the given failed attempt (1-based).
	// A nil Backoff retries immediately.
	Backoff func(attempt int) time.Duration

	// Retryable reports whether an error should trigger another attempt.
	// A nil Retryable never retries.
	Retryable func(err error) bool
}

// Linear returns a backoff growing by step per attempt: step, 2*step, 3*step...
func Linear(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// FeedRepairPolicy returns the policy for re-downloading a malformed feed before
// entity repair: three attempts, linear 5s backoff, retried only on timeouts.
func FeedRepairPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff:     Linear(5 * time.Second),
		Retryable:   IsTimeout,
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, or the policy's
// attempts are exhausted. The last error is returned wrapped.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn(ctx)

		if lastErr == nil {
			if attempt > 1 {
				slog.Info("operation succeeded after retry",
					slog.Int("attempt", attempt))
			}
			return nil
		}

		if p.Retryable == nil || !p.Retryable(lastErr) {
			return lastErr
		}

		// Don't wait after last attempt
		if attempt == maxAttempts {
			break
		}

		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff(attempt)
		}

		slog.Warn("operation failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("delay", delay),
			slog.Any("error", lastErr))

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}
	}

	return fmt.Errorf("max retry attempts (%d) exceeded: %w", maxAttempts, lastErr)
}

// IsTimeout reports whether err is a network timeout. A cancelled or expired
// parent context is not a timeout worth retrying.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
