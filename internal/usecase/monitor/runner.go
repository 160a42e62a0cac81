package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rss-monitor/internal/domain/entity"
	"rss-monitor/internal/observability/logging"
	"rss-monitor/internal/observability/metrics"
	"rss-monitor/internal/repository"
)

// RunReport summarizes one complete run.
type RunReport struct {
	Stats      Stats
	NewEntries int
	StateSaved bool
	Duration   time.Duration
}

// Runner executes one run: load the seen-state, sweep, persist the merged
// state when anything new was delivered.
type Runner struct {
	repo    repository.StateRepository
	service *Service
}

// NewRunner creates a runner over the given state repository and sweep service.
func NewRunner(repo repository.StateRepository, service *Service) *Runner {
	return &Runner{repo: repo, service: service}
}

// RunOnce performs a single run. Failing to load or save the state is fatal
// and returned; per-source failures are only reflected in the stats.
//
// When ctx is cancelled mid-sweep, the entries already delivered are still
// saved before the cancellation error is returned, so they are not sent again.
func (r *Runner) RunOnce(ctx context.Context, sources []entity.Source) (report *RunReport, err error) {
	logger := logging.FromContext(ctx)
	start := time.Now()
	defer func() {
		metrics.RecordRun(time.Since(start), err == nil)
	}()

	if len(sources) == 0 {
		logger.Warn("no sources configured, nothing to do")
		return &RunReport{Duration: time.Since(start)}, nil
	}

	seen, err := r.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	logger.Info("state loaded", slog.Int("entries", len(seen)))

	result, runErr := r.service.Run(ctx, sources, seen)
	report = &RunReport{}
	if result != nil {
		report.Stats = result.Stats
		report.NewEntries = len(result.NewEntries)
	}

	if report.NewEntries > 0 {
		saveCtx := ctx
		if runErr != nil {
			saveCtx = context.WithoutCancel(ctx)
		}
		if err := r.repo.Save(saveCtx, seen.Merge(result.NewEntries)); err != nil {
			return report, fmt.Errorf("save state: %w", err)
		}
		report.StateSaved = true
		metrics.RecordNewEntries(report.NewEntries)
		logger.Info("state saved",
			slog.Int("new_entries", report.NewEntries),
			slog.Int("total_entries", len(seen)+report.NewEntries))
	} else {
		logger.Info("no new entries, state left untouched")
	}

	report.Duration = time.Since(start)
	if runErr != nil {
		return report, fmt.Errorf("run interrupted: %w", runErr)
	}
	return report, nil
}
