package notify

import (
	"context"
	"errors"
	"time"

	"rss-monitor/internal/domain/entity"
	"rss-monitor/internal/infra/notifier"
	"rss-monitor/internal/observability/metrics"
	"rss-monitor/internal/resilience/circuitbreaker"

	"github.com/sony/gobreaker"
)

// Channel names.
const (
	ChannelDiscord = "discord"
	ChannelFeishu  = "feishu"
)

// WebhookChannel adapts an infrastructure notifier to the Channel interface,
// guarding it with a circuit breaker and recording delivery metrics.
type WebhookChannel struct {
	name     string
	notifier notifier.Notifier
	breaker  *circuitbreaker.CircuitBreaker
}

// NewWebhookChannel wraps n under the given channel name.
func NewWebhookChannel(name string, n notifier.Notifier) *WebhookChannel {
	return &WebhookChannel{
		name:     name,
		notifier: n,
		breaker:  circuitbreaker.New(circuitbreaker.WebhookConfig(name + "-webhook")),
	}
}

// NewDiscordChannel creates the Discord channel.
func NewDiscordChannel(cfg notifier.DiscordConfig) *WebhookChannel {
	return NewWebhookChannel(ChannelDiscord, notifier.NewDiscordNotifier(cfg))
}

// NewFeishuChannel creates the Feishu channel.
func NewFeishuChannel(cfg notifier.FeishuConfig) *WebhookChannel {
	return NewWebhookChannel(ChannelFeishu, notifier.NewFeishuNotifier(cfg))
}

// Name returns the channel identifier.
func (c *WebhookChannel) Name() string {
	return c.name
}

// SendArticle delivers an article through the underlying notifier.
func (c *WebhookChannel) SendArticle(ctx context.Context, article *entity.Article, sourceName string) error {
	if article == nil {
		return ErrInvalidArticle
	}
	return c.run("article", func() error {
		return c.notifier.NotifyArticle(ctx, article, sourceName)
	})
}

// SendStatus delivers a status report through the underlying notifier.
func (c *WebhookChannel) SendStatus(ctx context.Context, report entity.StatusReport) error {
	return c.run("status", func() error {
		return c.notifier.NotifyStatus(ctx, report)
	})
}

// BreakerOpen reports whether deliveries are currently being rejected.
func (c *WebhookChannel) BreakerOpen() bool {
	return c.breaker.IsOpen()
}

func (c *WebhookChannel) run(kind string, fn func() error) error {
	start := time.Now()
	err := c.breaker.Run(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordDelivery(c.name, kind, false, 0)
		return ErrCircuitBreakerOpen
	}
	metrics.RecordDelivery(c.name, kind, err == nil, time.Since(start))
	return err
}
