package notify

import "errors"

// Sentinel errors for notify use case operations.
var (
	// ErrInvalidArticle indicates that the article is nil.
	ErrInvalidArticle = errors.New("invalid article data")

	// ErrCircuitBreakerOpen indicates that the circuit breaker is open for this channel
	// and notifications are being rejected to prevent continuous failures.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open for this channel")

	// ErrUnknownStatusPolicy is returned by ParseStatusPolicy for unknown values.
	ErrUnknownStatusPolicy = errors.New("unknown status notification policy")

	// ErrNoChannel indicates that no delivery channel is configured.
	ErrNoChannel = errors.New("no notification channel configured")
)
