// Package circuitbreaker guards outbound webhook calls with github.com/sony/gobreaker
// so a dead endpoint is not hammered for every article of a sweep.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name is the circuit breaker name for logging
	Name string

	// MaxRequests is the maximum number of requests allowed in half-open state
	MaxRequests uint32

	// Interval is the cyclic period of the closed state to clear counts.
	// Zero keeps counts for the lifetime of the breaker.
	Interval time.Duration

	// Timeout is how long to wait in open state before trying again
	Timeout time.Duration

	// ConsecutiveFailures trips the circuit after this many failures in a row.
	// It must be positive.
	ConsecutiveFailures uint32
}

// WebhookConfig returns the configuration used for chat webhooks.
// Within one sweep a webhook that failed five times in a row is assumed to be
// revoked or misconfigured; the remaining articles stay unmarked and are retried
// on the next run.
func WebhookConfig(name string) Config {
	return Config{
		Name:                name,
		MaxRequests:         1,
		Interval:            0,
		Timeout:             5 * time.Minute,
		ConsecutiveFailures: 5,
	}
}

// CircuitBreaker wraps gobreaker.CircuitBreaker for calls that only return an error.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
}

// New creates a new circuit breaker with the given configuration.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &CircuitBreaker{breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Run calls fn through the breaker. While the circuit is open it returns
// gobreaker.ErrOpenState without calling fn.
func (cb *CircuitBreaker) Run(fn func() error) error {
	_, err := cb.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// IsOpen returns true if the circuit breaker is in the open state.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
