package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"rss-monitor/internal/domain/entity"
	"rss-monitor/internal/infra/notifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	err      error
	articles atomic.Int32
	statuses atomic.Int32
}

func (f *fakeNotifier) NotifyArticle(ctx context.Context, article *entity.Article, sourceName string) error {
	f.articles.Add(1)
	return f.err
}

func (f *fakeNotifier) NotifyStatus(ctx context.Context, report entity.StatusReport) error {
	f.statuses.Add(1)
	return f.err
}

func TestWebhookChannel_Delegates(t *testing.T) {
	n := &fakeNotifier{}
	c := NewWebhookChannel("test", n)

	require.NoError(t, c.SendArticle(context.Background(), &entity.Article{Title: "a"}, "src"))
	require.NoError(t, c.SendStatus(context.Background(), entity.StatusReport{Severity: entity.SeverityEmpty}))

	assert.Equal(t, "test", c.Name())
	assert.Equal(t, int32(1), n.articles.Load())
	assert.Equal(t, int32(1), n.statuses.Load())
}

func TestWebhookChannel_NilArticle(t *testing.T) {
	c := NewWebhookChannel("test", &fakeNotifier{})

	assert.ErrorIs(t, c.SendArticle(context.Background(), nil, "src"), ErrInvalidArticle)
}

// TestCircuitBreaker_OpensAfterThresholdFailures verifies that 5 consecutive failures trigger circuit breaker
func TestCircuitBreaker_OpensAfterThresholdFailures(t *testing.T) {
	// Arrange: a notifier that always fails
	boom := errors.New("webhook revoked")
	n := &fakeNotifier{err: boom}
	c := NewWebhookChannel("test", n)
	article := &entity.Article{Title: "a"}

	// Act: five failures reach the notifier
	assert.False(t, c.BreakerOpen())
	for i := 0; i < 5; i++ {
		err := c.SendArticle(context.Background(), article, "src")
		assert.ErrorIs(t, err, boom)
	}

	// Assert: the sixth call is rejected without touching the notifier
	err := c.SendArticle(context.Background(), article, "src")
	assert.ErrorIs(t, err, ErrCircuitBreakerOpen)
	assert.Equal(t, int32(5), n.articles.Load())
	assert.True(t, c.BreakerOpen())
}

func TestDiscordChannel_EndToEnd(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewDiscordChannel(notifier.DiscordConfig{WebhookURL: srv.URL})
	err := c.SendArticle(context.Background(), &entity.Article{Title: "hello", Link: "https://example.com"}, "src")

	require.NoError(t, err)
	assert.Equal(t, ChannelDiscord, c.Name())
	assert.Equal(t, int32(1), hits.Load())
}

func TestFeishuChannel_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":9499,"msg":"bad request"}`))
	}))
	defer srv.Close()

	c := NewFeishuChannel(notifier.FeishuConfig{WebhookURL: srv.URL})
	err := c.SendArticle(context.Background(), &entity.Article{Title: "hello"}, "src")

	var be *notifier.BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 9499, be.Code)
	assert.Equal(t, ChannelFeishu, c.Name())
}
