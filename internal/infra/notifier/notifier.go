// Package notifier delivers articles and source status reports to chat
// platforms through incoming webhooks. Discord receives plain-text messages
// and colour-coded status embeds; Feishu receives interactive cards and text
// status messages.
//
// Notifiers never retry: a failed delivery is reported to the caller, which
// leaves the article unmarked so the next run tries again.
package notifier

import (
	"context"

	"rss-monitor/internal/domain/entity"
)

// Notifier sends messages to one chat platform.
type Notifier interface {
	// NotifyArticle delivers one article. sourceName is the display name of
	// the feed it came from.
	NotifyArticle(ctx context.Context, article *entity.Article, sourceName string) error

	// NotifyStatus delivers a report about a source that yielded no articles.
	NotifyStatus(ctx context.Context, report entity.StatusReport) error
}
