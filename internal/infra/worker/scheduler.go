package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	pkgconfig "rss-monitor/internal/pkg/config"
)

// Job is one scheduled sweep. ctx is cancelled when the scheduler stops.
type Job func(ctx context.Context)

// Scheduler runs a Job on a cron schedule. A run that is still in progress
// when the next tick fires causes that tick to be skipped.
type Scheduler struct {
	cron     *cron.Cron
	logger   *slog.Logger
	schedule string
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewScheduler parses schedule in the given IANA time zone and registers job.
func NewScheduler(schedule, timezone string, logger *slog.Logger, job Job) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(pkgconfig.ScheduleParser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{cron: c, logger: logger, schedule: schedule, ctx: ctx, cancel: cancel}

	if _, err := c.AddFunc(schedule, func() { job(s.ctx) }); err != nil {
		cancel()
		return nil, fmt.Errorf("add cron job %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins firing the job in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", slog.String("schedule", s.schedule))
}

// Next returns the time of the next scheduled run, zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop cancels the running job's context and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// cronLogger routes cron's internal logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, slog.Any("error", err))...)
}
