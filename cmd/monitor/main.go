// Command monitor polls the configured RSS/Atom feeds and relays new articles
// to Discord and/or Feishu webhooks.
//
// By default it performs one sweep and exits. With -schedule (or
// MONITOR_SCHEDULE) it keeps running and sweeps on a cron schedule until
// SIGINT/SIGTERM.
//
// Exit codes: 0 when the sweep completed, even if individual sources failed;
// 1 on a fatal error (configuration missing or invalid, no webhook, state
// I/O failure).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"rss-monitor/internal/config"
	"rss-monitor/internal/infra/notifier"
	"rss-monitor/internal/infra/scraper"
	"rss-monitor/internal/observability/logging"
	pkgconfig "rss-monitor/internal/pkg/config"
	"rss-monitor/internal/resilience/retry"
	"rss-monitor/internal/usecase/monitor"
	"rss-monitor/internal/usecase/notify"
)

const (
	exitOK    = 0
	exitFatal = 1
)

// options are the command-line flags; unset flags fall back to the environment.
type options struct {
	configPath string
	statePath  string
	schedule   string
	once       bool
}

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		return exitFatal
	}

	rt, err := config.LoadRuntime()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		return exitFatal
	}

	opts := parseFlags(rt)
	if opts.schedule != "" && !opts.once {
		if err := pkgconfig.ValidateCronSchedule(opts.schedule); err != nil {
			fmt.Fprintf(os.Stderr, "invalid -schedule: %v\n", err)
			return exitFatal
		}
	}

	logger := logging.NewLogger(rt.LogFormat, rt.LogLevel)
	slog.SetDefault(logger)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			logger.Error("config file not found", slog.String("path", opts.configPath))
		} else {
			logger.Error("failed to load config", slog.String("error", logging.SanitizeError(err)))
		}
		return exitFatal
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", slog.Any("error", err))
		return exitFatal
	}
	if !cfg.HasWebhook() {
		logger.Error("usage error", slog.Any("error", config.ErrNoWebhook))
		return exitFatal
	}
	policy, _ := cfg.StatusPolicy() // validated above

	router, err := buildRouter(cfg, rt, policy)
	if err != nil {
		logger.Error("failed to build channels", slog.Any("error", err))
		return exitFatal
	}
	logger.Info("config check passed",
		slog.String("config", opts.configPath),
		slog.String("discord_webhook", logging.Redact(cfg.DiscordWebhook)),
		slog.String("feishu_webhook", logging.Redact(cfg.FeishuWebhook)),
		slog.String("article_channel", router.Primary().Name()),
		slog.String("status_policy", string(policy)),
		slog.Int("sources", len(cfg.Sources)),
		slog.String("state_backend", rt.State.Backend))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := newStateRepository(ctx, rt.State, opts.statePath)
	if err != nil {
		logger.Error("failed to open state backend", slog.String("error", logging.SanitizeError(err)))
		return exitFatal
	}
	defer closeRepo()

	fetcher := scraper.NewRSSFetcher(scraper.Config{
		ReadTimeout:   rt.FetchTimeout,
		RepairTimeout: rt.RepairTimeout,
	}, retry.FeedRepairPolicy())
	svc := monitor.NewService(fetcher, router, notifier.NewIntervalLimiter(rt.DeliveryInterval))
	app := &app{
		logger:  logger,
		runtime: rt,
		runner:  monitor.NewRunner(repo, svc),
		router:  router,
		sources: cfg.Sources,
	}

	if opts.schedule == "" || opts.once {
		if err := app.sweep(ctx); err != nil {
			return exitFatal
		}
		return exitOK
	}

	if err := app.serve(ctx, opts.schedule); err != nil {
		logger.Error("scheduler failed", slog.Any("error", err))
		return exitFatal
	}
	return exitOK
}

func parseFlags(rt *config.Runtime) options {
	var opts options
	flag.StringVar(&opts.configPath, "config", rt.ConfigPath, "path of the JSON configuration document")
	flag.StringVar(&opts.statePath, "state", rt.State.File, "state file for the file backend")
	flag.StringVar(&opts.schedule, "schedule", rt.Schedule, "cron expression to keep running on; empty runs once")
	flag.BoolVar(&opts.once, "once", false, "run a single sweep even when a schedule is set")

	flag.Usage = cleanenv.FUsage(os.Stderr, &config.Runtime{}, nil, func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	})
	flag.Parse()
	return opts
}

// buildRouter creates the configured channels, Discord first.
func buildRouter(cfg *config.Config, rt *config.Runtime, policy notify.StatusPolicy) (*notify.Router, error) {
	var channels []notify.Channel
	if cfg.DiscordWebhook != "" {
		channels = append(channels, notify.NewDiscordChannel(notifier.DiscordConfig{
			WebhookURL: cfg.DiscordWebhook,
			Timeout:    rt.WebhookTimeout,
		}))
	}
	if cfg.FeishuWebhook != "" {
		channels = append(channels, notify.NewFeishuChannel(notifier.FeishuConfig{
			WebhookURL: cfg.FeishuWebhook,
			Secret:     cfg.FeishuSecret,
			Timeout:    rt.WebhookTimeout,
		}))
	}
	return notify.NewRouter(policy, channels...)
}
