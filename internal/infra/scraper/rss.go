// Package scraper fetches RSS/Atom feeds and turns their entries into
// normalized articles. Parsing uses the gofeed library; documents broken by
// undefined character entities are re-downloaded and repaired before giving up.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"rss-monitor/internal/domain/entity"
	"rss-monitor/internal/observability/logging"
	"rss-monitor/internal/resilience/retry"

	"github.com/mmcdole/gofeed"
)

const (
	// maxBodySize caps feed downloads to prevent memory exhaustion
	maxBodySize = 10 * 1024 * 1024

	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptHeader     = "application/rss+xml, application/atom+xml, application/xml, text/xml, */*"
)

// Config holds the fetcher's HTTP and normalization settings.
type Config struct {
	UserAgent string

	// ConnectTimeout bounds TCP connection establishment.
	ConnectTimeout time.Duration

	// ReadTimeout bounds the whole primary request, body included.
	ReadTimeout time.Duration

	// RepairTimeout bounds each re-download made by the repair path.
	RepairTimeout time.Duration

	// MaxItems is the number of entries kept per feed.
	MaxItems int

	// SummaryLimit is the summary length in runes.
	SummaryLimit int
}

// DefaultConfig returns the production fetcher settings.
func DefaultConfig() Config {
	return Config{
		UserAgent:      defaultUserAgent,
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    30 * time.Second,
		RepairTimeout:  60 * time.Second,
		MaxItems:       10,
		SummaryLimit:   200,
	}
}

// RSSFetcher downloads and parses feeds.
type RSSFetcher struct {
	cfg          Config
	client       *http.Client
	repairClient *http.Client
	repairPolicy retry.Policy
}

// NewRSSFetcher creates a fetcher. repairPolicy governs the re-download made
// before entity repair; see retry.FeedRepairPolicy.
func NewRSSFetcher(cfg Config, repairPolicy retry.Policy) *RSSFetcher {
	def := DefaultConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = def.ConnectTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.RepairTimeout <= 0 {
		cfg.RepairTimeout = def.RepairTimeout
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = def.MaxItems
	}
	if cfg.SummaryLimit <= 0 {
		cfg.SummaryLimit = def.SummaryLimit
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: cfg.ConnectTimeout,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &RSSFetcher{
		cfg:          cfg,
		client:       &http.Client{Timeout: cfg.ReadTimeout, Transport: transport},
		repairClient: &http.Client{Timeout: cfg.RepairTimeout, Transport: transport},
		repairPolicy: repairPolicy,
	}
}

// Fetch retrieves the feed at feedURL and returns at most MaxItems articles,
// newest first when every entry is dated.
//
// Transport failures and non-2xx answers are returned as *entity.FetchError.
// Parse failures are not errors: they yield an empty slice.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string) ([]entity.Article, error) {
	logger := logging.FromContext(ctx).With(slog.String("url", feedURL))

	body, err := f.download(ctx, f.client, feedURL)
	if err != nil {
		return nil, err
	}

	items, parseErr := parse(body)
	bozo := checkWellFormed(body)

	if isEntityError(bozo) || isEntityError(parseErr) {
		cause := bozo
		if cause == nil {
			cause = parseErr
		}
		logger.Warn("feed contains undefined entities, attempting repair",
			slog.Any("error", cause))

		repaired, err := f.repair(ctx, feedURL)
		if err == nil {
			logger.Info("feed repaired", slog.Int("entries", len(repaired)))
			return f.finish(feedURL, repaired), nil
		}

		logger.Warn("feed repair failed",
			slog.Any("error", err),
			slog.Int("fallback_entries", len(items)))
		if len(items) > 0 {
			return f.finish(feedURL, items), nil
		}
		return []entity.Article{}, nil
	}

	if parseErr != nil {
		logger.Warn("feed parse failed", slog.Any("error", parseErr))
		return []entity.Article{}, nil
	}
	if bozo != nil {
		logger.Debug("feed is not well-formed, using lenient parse", slog.Any("error", bozo))
	}

	return f.finish(feedURL, items), nil
}

// repair re-downloads the raw document, substitutes entities and re-parses it.
func (f *RSSFetcher) repair(ctx context.Context, feedURL string) ([]*gofeed.Item, error) {
	var body []byte
	err := retry.Do(ctx, f.repairPolicy, func(ctx context.Context) error {
		b, err := f.download(ctx, f.repairClient, feedURL)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("re-download: %w", err)
	}

	items, err := parse(repairXML(body))
	if err != nil {
		return nil, fmt.Errorf("parse repaired feed: %w", err)
	}
	return items, nil
}

// download performs a GET and returns the body of a 2xx response.
func (f *RSSFetcher) download(ctx context.Context, client *http.Client, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, &entity.FetchError{URL: feedURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,zh-CN;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &entity.FetchError{URL: feedURL, Timeout: retry.IsTimeout(err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		fe := &entity.FetchError{URL: feedURL, StatusCode: resp.StatusCode}
		if isProxyHost(feedURL) {
			fe.Hint = proxyStatusHint(resp.StatusCode)
		}
		return nil, fe
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &entity.FetchError{URL: feedURL, Timeout: retry.IsTimeout(err), Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

func parse(body []byte) ([]*gofeed.Item, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return feed.Items, nil
}

// finish orders, truncates and normalizes parsed entries.
func (f *RSSFetcher) finish(feedURL string, items []*gofeed.Item) []entity.Article {
	items = newestFirst(items)
	if len(items) > f.cfg.MaxItems {
		items = items[:f.cfg.MaxItems]
	}

	articles := make([]entity.Article, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		articles = append(articles, normalizeItem(it, feedURL, f.cfg.SummaryLimit))
	}
	return articles
}
