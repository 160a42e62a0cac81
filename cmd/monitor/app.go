package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"rss-monitor/internal/config"
	"rss-monitor/internal/domain/entity"
	"rss-monitor/internal/infra/worker"
	"rss-monitor/internal/observability/logging"
	"rss-monitor/internal/observability/metrics"
	"rss-monitor/internal/usecase/monitor"
	"rss-monitor/internal/usecase/notify"
)

const pushJob = "rss_monitor"

type app struct {
	logger  *slog.Logger
	runtime *config.Runtime
	runner  *monitor.Runner
	router  *notify.Router
	sources []entity.Source
}

// sweep performs one run tagged with a fresh run_id and pushes metrics
// afterwards. The returned error is fatal for a one-shot invocation.
func (a *app) sweep(ctx context.Context) error {
	logger := logging.WithRunID(a.logger, uuid.NewString())
	ctx = logging.WithLogger(ctx, logger)
	ctx, cancel := context.WithTimeout(ctx, a.runtime.RunTimeout)
	defer cancel()

	logger.Info("run started", slog.Int("sources", len(a.sources)))
	report, err := a.runner.RunOnce(ctx, a.sources)
	a.pushMetrics(ctx, logger)

	if err != nil {
		logger.Error("run failed", slog.String("error", logging.SanitizeError(err)))
		return err
	}
	logger.Info("run completed",
		slog.Int("new_entries", report.NewEntries),
		slog.Bool("state_saved", report.StateSaved),
		slog.Int("failed_sources", report.Stats.Failed),
		slog.Int("empty_sources", report.Stats.Empty),
		slog.Int("delivery_failures", report.Stats.DeliveryFailed),
		slog.Duration("duration", report.Duration))
	return nil
}

func (a *app) pushMetrics(ctx context.Context, logger *slog.Logger) {
	if a.runtime.PushgatewayURL == "" {
		return
	}
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := metrics.Push(pushCtx, a.runtime.PushgatewayURL, pushJob); err != nil {
		logger.Warn("failed to push metrics", slog.Any("error", err))
	}
}

// serve sweeps on schedule until ctx is cancelled. Failed sweeps are logged
// and the next tick tries again. A health server that cannot listen stops
// the whole process.
func (a *app) serve(ctx context.Context, schedule string) error {
	scheduler, err := worker.NewScheduler(schedule, a.runtime.Timezone, a.logger, func(jobCtx context.Context) {
		_ = a.sweep(jobCtx)
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	var health *worker.HealthServer
	if a.runtime.MetricsAddr != "" {
		health = worker.NewHealthServer(a.runtime.MetricsAddr, a.logger, a.channelHealth)
		g.Go(func() error {
			if err := health.Start(gctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("health server: %w", err)
			}
			return nil
		})
	}

	scheduler.Start()
	if health != nil {
		health.SetReady(true)
	}
	a.logger.Info("monitor scheduled",
		slog.String("schedule", schedule),
		slog.String("timezone", a.runtime.Timezone),
		slog.Time("next_run", scheduler.Next()))

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		if health != nil {
			health.SetReady(false)
		}
		scheduler.Stop()
		return nil
	})

	return g.Wait()
}

func (a *app) channelHealth() []worker.ChannelStatus {
	var out []worker.ChannelStatus
	for _, ch := range a.router.Channels() {
		status := worker.ChannelStatus{Name: ch.Name()}
		if b, ok := ch.(interface{ BreakerOpen() bool }); ok {
			status.CircuitBreakerOpen = b.BreakerOpen()
		}
		out = append(out, status)
	}
	return out
}
