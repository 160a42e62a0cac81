// Package config loads the monitor's configuration: the JSON document listing
// webhooks and sources, and the process-level runtime settings taken from the
// environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"rss-monitor/internal/domain/entity"
	"rss-monitor/internal/usecase/notify"
)

// DefaultPath is used when neither a flag nor CONFIG_PATH names a file.
const DefaultPath = "config.json"

var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrNoWebhook means neither a Discord nor a Feishu webhook is configured.
	ErrNoWebhook = errors.New("no webhook configured: set discord_webhook or feishu_webhook")
)

// Config is the configuration document. Every field can be overridden from
// the environment so secrets need not live in the file.
type Config struct {
	DiscordWebhook      string  `json:"discord_webhook" yaml:"discord_webhook" env:"DISCORD_WEBHOOK"`
	FeishuWebhook       string  `json:"feishu_webhook" yaml:"feishu_webhook" env:"FEISHU_WEBHOOK"`
	FeishuSecret        string  `json:"feishu_secret" yaml:"feishu_secret" env:"FEISHU_SECRET"`
	StatusNotifications string  `json:"status_notifications" yaml:"status_notifications" env:"STATUS_NOTIFICATIONS" env-default:"discord"`
	Sources             Sources `json:"rss_sources" yaml:"rss_sources" env:"RSS_SOURCES"`
}

// Sources is the rss_sources list. In the environment it is given as a JSON
// array of {"name", "url"} objects, which replaces the file's list.
type Sources []entity.Source

// SetValue decodes RSS_SOURCES for cleanenv. An empty value leaves the list
// from the file in place.
func (s *Sources) SetValue(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var list []entity.Source
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return fmt.Errorf("RSS_SOURCES: %w", err)
	}
	*s = list
	return nil
}

// Load reads the document at path and applies environment overrides. The
// format follows the extension; JSON is the reference format, YAML is also
// accepted.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("stat config: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg.DiscordWebhook = strings.TrimSpace(cfg.DiscordWebhook)
	cfg.FeishuWebhook = strings.TrimSpace(cfg.FeishuWebhook)
	return &cfg, nil
}

// HasWebhook reports whether at least one delivery platform is configured.
func (c *Config) HasWebhook() bool {
	return c.DiscordWebhook != "" || c.FeishuWebhook != ""
}

// StatusPolicy returns the parsed status_notifications setting.
func (c *Config) StatusPolicy() (notify.StatusPolicy, error) {
	return notify.ParseStatusPolicy(c.StatusNotifications)
}

// Validate checks webhook URLs and the status policy. It does not require a
// webhook; that is the caller's usage check (see HasWebhook).
func (c *Config) Validate() error {
	var errs []error
	if c.DiscordWebhook != "" {
		if err := entity.ValidateURL("discord_webhook", c.DiscordWebhook); err != nil {
			errs = append(errs, err)
		}
	}
	if c.FeishuWebhook != "" {
		if err := entity.ValidateURL("feishu_webhook", c.FeishuWebhook); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := c.StatusPolicy(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
