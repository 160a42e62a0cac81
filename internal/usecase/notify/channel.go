// Package notify provides the delivery side of a sweep: the Channel capability
// the dispatch engine depends on, webhook-backed channels for Discord and
// Feishu, and the Router that decides which channel receives articles and
// which ones receive source status reports.
package notify

import (
	"context"

	"rss-monitor/internal/domain/entity"
)

// Channel represents a notification delivery channel (Discord, Feishu, ...).
//
// Retry Policy Contract:
//   - Channels do not retry. A failed article stays unmarked and is retried
//     by the next run.
//   - After repeated failures a channel may reject calls with
//     ErrCircuitBreakerOpen for the rest of the run.
//
// Context Handling:
//   - Implementations must respect context cancellation and timeout
type Channel interface {
	// Name returns the channel identifier (lowercase, e.g. "discord").
	// This is used for logging and metrics labels.
	Name() string

	// SendArticle delivers one article. A nil error means the platform
	// accepted the message and the article may be recorded as seen.
	SendArticle(ctx context.Context, article *entity.Article, sourceName string) error

	// SendStatus delivers a report about a source that produced no articles.
	SendStatus(ctx context.Context, report entity.StatusReport) error
}
