package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	pkgconfig "rss-monitor/internal/pkg/config"
)

// State backends.
const (
	BackendFile  = "file"
	BackendS3    = "s3"
	BackendRedis = "redis"
)

// Runtime holds process settings read from the environment only.
type Runtime struct {
	ConfigPath string `env:"CONFIG_PATH" env-default:"config.json" env-description:"path of the JSON configuration document"`

	State StateSettings

	DeliveryInterval time.Duration `env:"DELIVERY_INTERVAL" env-default:"1s" env-description:"minimum gap between webhook calls"`
	FetchTimeout     time.Duration `env:"FETCH_TIMEOUT" env-default:"30s" env-description:"feed download timeout"`
	RepairTimeout    time.Duration `env:"REPAIR_TIMEOUT" env-default:"60s" env-description:"timeout of the re-download before entity repair"`
	WebhookTimeout   time.Duration `env:"WEBHOOK_TIMEOUT" env-default:"10s" env-description:"webhook request timeout"`
	RunTimeout       time.Duration `env:"RUN_TIMEOUT" env-default:"30m" env-description:"upper bound for one sweep"`

	Schedule string `env:"MONITOR_SCHEDULE" env-description:"cron expression; empty runs once and exits"`
	Timezone string `env:"MONITOR_TIMEZONE" env-default:"UTC" env-description:"IANA time zone of the schedule"`

	PushgatewayURL string `env:"PUSHGATEWAY_URL" env-description:"Prometheus Pushgateway to push run metrics to"`
	MetricsAddr    string `env:"METRICS_ADDR" env-description:"listen address for health and metrics endpoints in scheduled mode"`
	LogLevel       string `env:"LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
	LogFormat      string `env:"LOG_FORMAT" env-default:"json" env-description:"json or text"`
}

// StateSettings selects and configures the seen-state backend.
type StateSettings struct {
	Backend string `env:"STATE_BACKEND" env-default:"file" env-description:"file, s3 or redis"`
	File    string `env:"STATE_FILE" env-default:"rss_state.json" env-description:"state file for the file backend"`

	S3Bucket    string `env:"STATE_S3_BUCKET" env-description:"bucket for the s3 backend"`
	S3Key       string `env:"STATE_S3_KEY" env-default:"rss-monitor/state.json" env-description:"object key for the s3 backend"`
	S3Region    string `env:"AWS_REGION" env-description:"AWS region for the s3 backend"`
	S3Endpoint  string `env:"STATE_S3_ENDPOINT" env-description:"custom S3-compatible endpoint"`
	S3PathStyle bool   `env:"STATE_S3_PATH_STYLE" env-default:"false" env-description:"use path-style bucket addressing"`

	RedisAddr     string `env:"REDIS_ADDR" env-default:"localhost:6379" env-description:"address for the redis backend"`
	RedisPassword string `env:"REDIS_PASSWORD" env-description:"password for the redis backend"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0" env-description:"database number for the redis backend"`
	RedisKey      string `env:"STATE_REDIS_KEY" env-default:"rss-monitor:seen" env-description:"hash key for the redis backend"`
}

// LoadRuntime reads the runtime settings from the environment and validates them.
func LoadRuntime() (*Runtime, error) {
	var rt Runtime
	if err := cleanenv.ReadEnv(&rt); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	rt.State.Backend = strings.ToLower(strings.TrimSpace(rt.State.Backend))
	if err := rt.Validate(); err != nil {
		return nil, err
	}
	return &rt, nil
}

// Validate checks durations, schedule, time zone and backend settings.
func (r *Runtime) Validate() error {
	if err := pkgconfig.ValidateDuration(r.DeliveryInterval, 0, time.Minute); err != nil {
		return fmt.Errorf("DELIVERY_INTERVAL: %w", err)
	}
	for name, d := range map[string]time.Duration{
		"FETCH_TIMEOUT":   r.FetchTimeout,
		"REPAIR_TIMEOUT":  r.RepairTimeout,
		"WEBHOOK_TIMEOUT": r.WebhookTimeout,
		"RUN_TIMEOUT":     r.RunTimeout,
	} {
		if err := pkgconfig.ValidatePositiveDuration(d); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if r.Schedule != "" {
		if err := pkgconfig.ValidateCronSchedule(r.Schedule); err != nil {
			return fmt.Errorf("MONITOR_SCHEDULE: %w", err)
		}
	}
	if err := pkgconfig.ValidateTimezone(r.Timezone); err != nil {
		return fmt.Errorf("MONITOR_TIMEZONE: %w", err)
	}

	switch r.State.Backend {
	case BackendFile:
		if r.State.File == "" {
			return fmt.Errorf("STATE_FILE must not be empty")
		}
	case BackendS3:
		if r.State.S3Bucket == "" {
			return fmt.Errorf("STATE_S3_BUCKET is required for the s3 backend")
		}
	case BackendRedis:
		if err := pkgconfig.ValidateIntRange(r.State.RedisDB, 0, 15); err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
	default:
		return fmt.Errorf("unknown STATE_BACKEND %q", r.State.Backend)
	}
	return nil
}
