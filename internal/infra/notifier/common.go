package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const requestIDKey contextKey = "request_id"

// maxResponseBody bounds how much of a webhook response is read.
const maxResponseBody = 64 * 1024

// Common webhook error types used by the Discord and Feishu notifiers

// RateLimitError represents a 429 rate limit error from a webhook service.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string // Optional custom message
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx client error from a webhook service.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ServerError represents a 5xx server error from a webhook service.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// BusinessError is returned when a platform answers with a non-zero business
// code in its JSON body, whatever the HTTP status was.
type BusinessError struct {
	Code       int
	Msg        string
	StatusCode int
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("webhook rejected message: code=%d msg=%q (HTTP %d)", e.Code, e.Msg, e.StatusCode)
}

// webhookResponse is the raw outcome of a webhook POST.
type webhookResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// postJSON marshals payload and POSTs it to webhookURL. Transport errors are returned
// without the URL, which embeds the webhook token.
func postJSON(ctx context.Context, client *http.Client, webhookURL string, payload any) (*webhookResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if id := RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute http request: %w", unwrapURLError(err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	return &webhookResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// unwrapURLError strips the *url.Error wrapper so the webhook URL is not logged.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}

// withRequestID tags ctx with a fresh request id and returns both.
func withRequestID(ctx context.Context) (context.Context, string) {
	requestID := uuid.New().String()
	return context.WithValue(ctx, requestIDKey, requestID), requestID
}

// RequestIDFromContext returns the request id set for the current webhook call.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
