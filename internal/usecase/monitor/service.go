package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"rss-monitor/internal/domain/entity"
	"rss-monitor/internal/observability/logging"
	"rss-monitor/internal/observability/metrics"
	"rss-monitor/internal/resilience/retry"
	"rss-monitor/internal/usecase/notify"
)

// FeedFetcher is an interface for fetching RSS/Atom feeds from a URL.
// Articles come back newest first, at most ten.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]entity.Article, error)
}

// EmptyDiagnoser is optionally implemented by fetchers that can explain why
// a feed answered without entries.
type EmptyDiagnoser interface {
	DiagnoseEmpty(url string) string
}

// Pacer spaces out webhook calls.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Stats contains statistics about a sweep.
type Stats struct {
	Sources        int
	Skipped        int // sources without URL
	Failed         int // sources whose fetch failed or panicked
	Empty          int // sources that returned no entries
	FeedItems      int
	Duplicates     int
	Delivered      int
	DeliveryFailed int
	StatusSent     int
	StatusFailed   int
	Duration       time.Duration
}

// Result is the outcome of a sweep. NewEntries holds only the entries
// delivered during this sweep; the caller merges and persists them.
type Result struct {
	NewEntries entity.SeenState
	Stats      Stats
}

// Service runs sweeps. It keeps no state between calls.
type Service struct {
	fetcher FeedFetcher
	router  *notify.Router
	pacer   Pacer
	now     func() time.Time
}

// NewService creates a sweep service.
func NewService(fetcher FeedFetcher, router *notify.Router, pacer Pacer) *Service {
	return &Service{
		fetcher: fetcher,
		router:  router,
		pacer:   pacer,
		now:     time.Now,
	}
}

// Run processes every source in order and returns the entries delivered.
// sources and seen are only read. Failures of one source or one article are
// logged and counted, never returned; only context cancellation stops the
// sweep early, in which case the partial result is returned with the error.
func (s *Service) Run(ctx context.Context, sources []entity.Source, seen entity.SeenState) (*Result, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()
	result := &Result{NewEntries: entity.SeenState{}}
	result.Stats.Sources = len(sources)

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			result.Stats.Duration = time.Since(start)
			return result, err
		}
		if err := s.processSource(ctx, src, seen, result); err != nil {
			result.Stats.Duration = time.Since(start)
			return result, err
		}
	}

	result.Stats.Duration = time.Since(start)
	st := result.Stats
	logger.Info("all sources processed",
		slog.Int("sources", st.Sources),
		slog.Int("skipped", st.Skipped),
		slog.Int("failed", st.Failed),
		slog.Int("empty", st.Empty),
		slog.Int("feed_items", st.FeedItems),
		slog.Int("duplicates", st.Duplicates),
		slog.Int("delivered", st.Delivered),
		slog.Int("delivery_failed", st.DeliveryFailed),
		slog.Duration("duration", st.Duration))

	return result, nil
}

// processSource handles one source. The returned error is only ever a
// context error; everything else is absorbed here.
func (s *Service) processSource(ctx context.Context, src entity.Source, seen entity.SeenState, result *Result) (err error) {
	name := src.DisplayName()
	logger := logging.FromContext(ctx).With(slog.String("source", name))

	if !src.HasURL() {
		logger.Warn("source has no url, skipping")
		result.Stats.Skipped++
		metrics.RecordSourceFetch(name, metrics.FetchResultSkipped, 0)
		return nil
	}

	fetched := false
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		logger.Error("source processing panicked",
			slog.Any("panic", r),
			slog.String("stack", string(debug.Stack())))
		result.Stats.Failed++
		err = nil
		if fetched {
			return
		}
		metrics.RecordSourceFetch(name, metrics.FetchResultError, 0)
		err = s.sendStatus(ctx, entity.StatusReport{
			SourceName: name,
			SourceURL:  src.URL,
			Severity:   entity.SeverityError,
			Message:    fmt.Sprintf("%s: %v", ErrSourcePanicked, r),
		}, result)
	}()

	logger = logger.With(slog.String("url", src.URL))
	sourceStart := time.Now()

	articles, fetchErr := s.fetcher.Fetch(ctx, src.URL)
	if fetchErr != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	if len(articles) == 0 {
		report := s.classify(src, fetchErr)
		if fetchErr != nil {
			result.Stats.Failed++
			metrics.RecordSourceFetch(name, metrics.FetchResultError, 0)
			logger.Warn("feed fetch failed",
				slog.String("severity", string(report.Severity)),
				slog.Any("error", fetchErr))
		} else {
			result.Stats.Empty++
			metrics.RecordSourceFetch(name, metrics.FetchResultEmpty, 0)
			logger.Warn("feed returned no entries")
		}
		return s.sendStatus(ctx, report, result)
	}

	fetched = true
	result.Stats.FeedItems += len(articles)
	metrics.RecordSourceFetch(name, metrics.FetchResultOK, len(articles))
	logger.Info("feed fetched", slog.Int("entries", len(articles)))

	primary := s.router.Primary()
	for i := range articles {
		a := articles[i]
		key := entity.SeenKey(src.URL, a)
		if seen.Has(key) || result.NewEntries.Has(key) {
			result.Stats.Duplicates++
			continue
		}

		if err := s.pacer.Wait(ctx); err != nil {
			return err
		}

		if err := primary.SendArticle(ctx, &a, name); err != nil {
			result.Stats.DeliveryFailed++
			logger.Warn("article delivery failed",
				slog.String("channel", primary.Name()),
				slog.String("title", a.Title),
				slog.Any("error", err))
			continue
		}

		result.NewEntries[key] = entity.NewSeenEntry(a, s.now())
		result.Stats.Delivered++
		logger.Info("article delivered",
			slog.String("channel", primary.Name()),
			slog.String("title", a.Title))
	}

	logger.Debug("source processed", slog.Duration("duration", time.Since(sourceStart)))
	return nil
}

// classify turns a fetch outcome without articles into a status report.
func (s *Service) classify(src entity.Source, fetchErr error) entity.StatusReport {
	report := entity.StatusReport{
		SourceName: src.DisplayName(),
		SourceURL:  src.URL,
	}

	if fetchErr == nil {
		report.Severity = entity.SeverityEmpty
		report.Message = "feed returned no entries"
		if d, ok := s.fetcher.(EmptyDiagnoser); ok {
			if hint := d.DiagnoseEmpty(src.URL); hint != "" {
				report.Severity = entity.SeverityWarning
				report.Hint = hint
			}
		}
		return report
	}

	var fe *entity.FetchError
	if errors.As(fetchErr, &fe) {
		report.Hint = fe.Hint
		if fe.StatusCode != 0 {
			// 403 and 404 usually mean a dead or blocked feed; other codes are
			// reported the same way.
			report.Severity = entity.SeverityError
			report.Message = fmt.Sprintf("HTTP %d %s", fe.StatusCode, http.StatusText(fe.StatusCode))
			return report
		}
	}

	if (fe != nil && fe.Timeout) || retry.IsTimeout(fetchErr) {
		report.Severity = entity.SeverityWarning
		report.Message = "request timed out"
		return report
	}

	report.Severity = entity.SeverityError
	report.Message = fetchErr.Error()
	return report
}

// sendStatus delivers a report to every status target. Delivery failures are
// logged; only context errors are returned.
func (s *Service) sendStatus(ctx context.Context, report entity.StatusReport, result *Result) error {
	logger := logging.FromContext(ctx)
	for _, ch := range s.router.StatusTargets() {
		if err := s.pacer.Wait(ctx); err != nil {
			return err
		}
		if err := ch.SendStatus(ctx, report); err != nil {
			result.Stats.StatusFailed++
			logger.Warn("status notification failed",
				slog.String("channel", ch.Name()),
				slog.String("source", report.SourceName),
				slog.Any("error", err))
			continue
		}
		result.Stats.StatusSent++
	}
	return nil
}
