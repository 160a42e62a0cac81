package notifier

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rss-monitor/internal/domain/entity"
	"rss-monitor/internal/observability/logging"
)

// FeishuConfig contains configuration for Feishu (Lark) custom bot webhooks.
type FeishuConfig struct {
	// WebhookURL is the bot webhook URL (includes authentication token)
	WebhookURL string

	// Secret enables signature verification when the bot requires it.
	Secret string

	// Timeout is the HTTP request timeout
	Timeout time.Duration
}

// FeishuNotifier sends articles as interactive cards and status reports as text.
type FeishuNotifier struct {
	config     FeishuConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewFeishuNotifier creates a new FeishuNotifier with the specified configuration.
func NewFeishuNotifier(config FeishuConfig) *FeishuNotifier {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &FeishuNotifier{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		now:        time.Now,
	}
}

// FeishuMessage is the webhook envelope. Timestamp and Sign are only set when
// a signing secret is configured.
type FeishuMessage struct {
	MsgType   string         `json:"msg_type"`
	Card      *FeishuCard    `json:"card,omitempty"`
	Content   *FeishuContent `json:"content,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
	Sign      string         `json:"sign,omitempty"`
}

// FeishuContent is the body of a text message.
type FeishuContent struct {
	Text string `json:"text"`
}

// FeishuCard is an interactive message card.
type FeishuCard struct {
	Config   FeishuCardConfig  `json:"config"`
	Header   FeishuCardHeader  `json:"header"`
	Elements []FeishuCardBlock `json:"elements"`
}

// FeishuCardConfig holds card-wide display options.
type FeishuCardConfig struct {
	WideScreenMode bool `json:"wide_screen_mode"`
}

// FeishuCardHeader is the card title bar; Template picks its colour.
type FeishuCardHeader struct {
	Title    FeishuText `json:"title"`
	Template string     `json:"template"`
}

// FeishuText is a text object; Tag is "plain_text" or "lark_md".
type FeishuText struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

// FeishuCardBlock is either a "div" with Text or an "action" with Actions.
type FeishuCardBlock struct {
	Tag     string         `json:"tag"`
	Text    *FeishuText    `json:"text,omitempty"`
	Actions []FeishuButton `json:"actions,omitempty"`
}

// FeishuButton is a link button inside an action block.
type FeishuButton struct {
	Tag  string     `json:"tag"`
	Text FeishuText `json:"text"`
	Type string     `json:"type"`
	URL  string     `json:"url"`
}

// feishuResponse is the business envelope every webhook answer carries.
type feishuResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func markdownDiv(content string) FeishuCardBlock {
	return FeishuCardBlock{Tag: "div", Text: &FeishuText{Tag: "lark_md", Content: content}}
}

// BuildFeishuCard renders an article as an interactive card. The date, summary
// and button blocks are omitted when the article lacks the matching field.
func BuildFeishuCard(article *entity.Article, sourceName string) FeishuMessage {
	header := "📰 New Article"
	if sourceName != "" {
		header = "📰 " + sourceName + " - New Article"
	}

	elements := []FeishuCardBlock{markdownDiv("**" + article.Title + "**")}
	if article.Published != "" {
		elements = append(elements, markdownDiv("📅 "+article.Published))
	}
	if article.Summary != "" {
		elements = append(elements, markdownDiv("📝 "+article.Summary))
	}
	if article.Link != "" {
		elements = append(elements, FeishuCardBlock{
			Tag: "action",
			Actions: []FeishuButton{{
				Tag:  "button",
				Text: FeishuText{Tag: "plain_text", Content: "Read more"},
				Type: "primary",
				URL:  article.Link,
			}},
		})
	}

	return FeishuMessage{
		MsgType: "interactive",
		Card: &FeishuCard{
			Config: FeishuCardConfig{WideScreenMode: true},
			Header: FeishuCardHeader{
				Title:    FeishuText{Tag: "plain_text", Content: header},
				Template: "blue",
			},
			Elements: elements,
		},
	}
}

// FormatFeishuStatus renders a status report as a text message.
func FormatFeishuStatus(report entity.StatusReport) FeishuMessage {
	name := report.SourceName
	if name == "" {
		name = report.SourceURL
	}
	message := report.Message
	if message == "" {
		message = defaultStatusMessage
	}

	lines := []string{
		severityIcon(report.Severity) + " RSS source issue: " + name,
		"Status: " + severityLabel(report.Severity),
		"Error: " + message,
		"Feed: " + report.SourceURL,
	}
	if report.Hint != "" {
		lines = append(lines, "Hint: "+report.Hint)
	}

	return FeishuMessage{
		MsgType: "text",
		Content: &FeishuContent{Text: strings.Join(lines, "\n")},
	}
}

// NotifyArticle posts the article as an interactive card.
func (f *FeishuNotifier) NotifyArticle(ctx context.Context, article *entity.Article, sourceName string) error {
	return f.send(ctx, "article", BuildFeishuCard(article, sourceName), slog.String("title", article.Title))
}

// NotifyStatus posts the report as a text message.
func (f *FeishuNotifier) NotifyStatus(ctx context.Context, report entity.StatusReport) error {
	return f.send(ctx, "status", FormatFeishuStatus(report), slog.String("source_url", report.SourceURL))
}

func (f *FeishuNotifier) send(ctx context.Context, kind string, msg FeishuMessage, attr slog.Attr) error {
	ctx, requestID := withRequestID(ctx)
	logger := logging.FromContext(ctx).With(
		slog.String("request_id", requestID),
		slog.String("channel", "feishu"),
		slog.String("kind", kind),
		attr)

	if f.config.Secret != "" {
		ts := f.now().Unix()
		sign, err := signFeishu(ts, f.config.Secret)
		if err != nil {
			return fmt.Errorf("sign feishu payload: %w", err)
		}
		msg.Timestamp = strconv.FormatInt(ts, 10)
		msg.Sign = sign
	}

	if err := f.sendWebhookRequest(ctx, msg); err != nil {
		logger.Warn("Feishu notification failed", slog.Any("error", err))
		return err
	}
	logger.Info("Feishu notification successful")
	return nil
}

// sendWebhookRequest posts msg and decides success from the business code in
// the response body: code 0 is success whatever the HTTP status.
func (f *FeishuNotifier) sendWebhookRequest(ctx context.Context, msg FeishuMessage) error {
	resp, err := postJSON(ctx, f.httpClient, f.config.WebhookURL, msg)
	if err != nil {
		return err
	}

	var result feishuResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		if resp.StatusCode >= 500 {
			return &ServerError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("Feishu server error (HTTP %d)", resp.StatusCode),
			}
		}
		return fmt.Errorf("decode feishu response (HTTP %d): %w", resp.StatusCode, err)
	}

	if result.Code != 0 {
		return &BusinessError{Code: result.Code, Msg: result.Msg, StatusCode: resp.StatusCode}
	}
	return nil
}

// signFeishu computes the custom bot signature: HMAC-SHA256 keyed with
// "timestamp\nsecret" over an empty message, base64 encoded.
func signFeishu(timestamp int64, secret string) (string, error) {
	key := strconv.FormatInt(timestamp, 10) + "\n" + secret
	h := hmac.New(sha256.New, []byte(key))
	if _, err := h.Write(nil); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}
