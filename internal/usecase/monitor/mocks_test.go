package monitor_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"rss-monitor/internal/domain/entity"
)

var testTime = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

type fetchResult struct {
	articles []entity.Article
	err      error
	panics   bool
}

// stubFetcher serves canned results per URL and records every call.
type stubFetcher struct {
	results map[string]fetchResult
	calls   []string
	mu      sync.Mutex
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]entity.Article, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	r := f.results[url]
	if r.panics {
		panic("parser exploded")
	}
	return r.articles, r.err
}

// diagnosingFetcher adds a fixed empty-feed hint.
type diagnosingFetcher struct {
	*stubFetcher
	hint string
}

func (f *diagnosingFetcher) DiagnoseEmpty(string) string {
	return f.hint
}

// recordingChannel is a notify.Channel that records what it was asked to send.
type recordingChannel struct {
	name     string
	failOn   map[string]bool
	articles []string
	sources  []string
	statuses []entity.StatusReport
	mu       sync.Mutex
}

var errDelivery = errors.New("webhook rejected")

func (c *recordingChannel) Name() string {
	return c.name
}

func (c *recordingChannel) SendArticle(_ context.Context, article *entity.Article, sourceName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failOn[article.Title] {
		return errDelivery
	}
	c.articles = append(c.articles, article.Title)
	c.sources = append(c.sources, sourceName)
	return nil
}

func (c *recordingChannel) SendStatus(_ context.Context, report entity.StatusReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = append(c.statuses, report)
	return nil
}

// countingPacer never blocks; it counts calls and can cancel a context once
// a number of calls has been allowed.
type countingPacer struct {
	waits  int
	allow  int
	cancel context.CancelFunc
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	if p.cancel != nil && p.waits > p.allow {
		p.cancel()
	}
	return ctx.Err()
}

// memRepo is an in-memory state repository.
type memRepo struct {
	state   entity.SeenState
	loadErr error
	saveErr error
	saves   int
}

func (r *memRepo) Load(context.Context) (entity.SeenState, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.state.Clone(), nil
}

func (r *memRepo) Save(_ context.Context, s entity.SeenState) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.state = s.Clone()
	return nil
}

func articles(titles ...string) []entity.Article {
	out := make([]entity.Article, 0, len(titles))
	for _, t := range titles {
		out = append(out, entity.Article{
			Title:     t,
			Link:      "https://example.com/" + t,
			Published: "Mon, 01 Jan 2024 10:00:00 +0000",
		})
	}
	return out
}
