package notifier

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter implements token bucket algorithm for rate limiting.
// It prevents notification APIs from being overwhelmed with too many requests.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewIntervalLimiter spaces consecutive calls to Wait at least interval apart.
// The first call returns immediately. A non-positive interval disables pacing.
func NewIntervalLimiter(interval time.Duration) *RateLimiter {
	if interval <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until a token is available or the context is canceled.
// It should be called before making a rate-limited request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
