package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"rss-monitor/internal/domain/entity"
	"rss-monitor/internal/observability/logging"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Discord API calls
	Timeout time.Duration
}

// DiscordNotifier sends articles and status reports to Discord via webhook.
type DiscordNotifier struct {
	config     DiscordConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewDiscordNotifier creates a new DiscordNotifier with the specified configuration.
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &DiscordNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		now: time.Now,
	}
}

// DiscordTextPayload is a plain message.
type DiscordTextPayload struct {
	Content string `json:"content"`
}

// DiscordEmbedPayload carries embeds only.
type DiscordEmbedPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordErrorResponse represents the error response from Discord API.
type DiscordErrorResponse struct {
	Message    string  `json:"message"`
	Code       int     `json:"code"`
	RetryAfter float64 `json:"retry_after"` // In seconds
}

// NotifyArticle posts the article as a plain-text message.
func (d *DiscordNotifier) NotifyArticle(ctx context.Context, article *entity.Article, sourceName string) error {
	payload := DiscordTextPayload{Content: FormatDiscordText(article, sourceName)}
	return d.send(ctx, "article", payload, slog.String("title", article.Title))
}

// NotifyStatus posts the report as a severity-coloured embed.
func (d *DiscordNotifier) NotifyStatus(ctx context.Context, report entity.StatusReport) error {
	payload := DiscordEmbedPayload{Embeds: []DiscordEmbed{BuildStatusEmbed(report, d.now())}}
	return d.send(ctx, "status", payload, slog.String("source_url", report.SourceURL))
}

func (d *DiscordNotifier) send(ctx context.Context, kind string, payload any, attr slog.Attr) error {
	ctx, requestID := withRequestID(ctx)
	logger := logging.FromContext(ctx).With(
		slog.String("request_id", requestID),
		slog.String("channel", "discord"),
		slog.String("kind", kind),
		attr)

	err := d.sendWebhookRequest(ctx, payload)
	if err != nil {
		logger.Warn("Discord notification failed", slog.Any("error", err))
		return err
	}
	logger.Info("Discord notification successful")
	return nil
}

// sendWebhookRequest posts payload to the webhook.
//
// Returns:
//   - nil: Discord answered 200 or 204
//   - *RateLimitError: 429, with the advertised retry_after
//   - *ClientError: other 4xx
//   - *ServerError: 5xx
//   - error: network failure or any other status
func (d *DiscordNotifier) sendWebhookRequest(ctx context.Context, payload any) error {
	resp, err := postJSON(ctx, d.httpClient, d.config.WebhookURL, payload)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			Message:    "Discord rate limit exceeded",
			RetryAfter: extractRetryAfter(resp),
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API client error (HTTP %d): %s", resp.StatusCode, string(resp.Body)),
		}
	case resp.StatusCode >= 500:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API server error (HTTP %d): %s", resp.StatusCode, string(resp.Body)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(resp.Body))
}

// extractRetryAfter extracts retry_after duration from Discord error response.
// It tries to parse from JSON body first, then falls back to Retry-After header.
//
// Returns:
//   - time.Duration: Retry after duration (default 5s if not found)
func extractRetryAfter(resp *webhookResponse) time.Duration {
	var discordErr DiscordErrorResponse
	if err := json.Unmarshal(resp.Body, &discordErr); err == nil && discordErr.RetryAfter > 0 {
		return time.Duration(discordErr.RetryAfter * float64(time.Second))
	}

	if retryAfterHeader := resp.Header.Get("Retry-After"); retryAfterHeader != "" {
		if seconds, err := strconv.Atoi(retryAfterHeader); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	return 5 * time.Second
}
