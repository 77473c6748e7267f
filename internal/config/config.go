package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all configuration for the rate sync service.
type Config struct {
	// Source page
	SourceURL     string `mapstructure:"source_url"`
	Headless      bool   `mapstructure:"headless"`
	BrowserURL    string `mapstructure:"browser_url"`
	NavTimeoutMS  int    `mapstructure:"nav_timeout_ms"`
	SettleDelayMS int    `mapstructure:"settle_delay_ms"`

	// Run coordination
	CacheTTLMS   int    `mapstructure:"cache_ttl_ms"`
	CronSchedule string `mapstructure:"cron_schedule"`

	// Sheet sink
	SheetID              string `mapstructure:"sheet_id"`
	SheetTitle           string `mapstructure:"sheet_title"`
	ServiceAccountBase64 string `mapstructure:"google_service_account_b64"`
	SheetsBaseURL        string `mapstructure:"sheets_base_url"`

	// Service
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// NavTimeout returns the navigation timeout as a duration.
func (c *Config) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutMS) * time.Millisecond
}

// SettleDelay returns the post-load settle delay as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

// CacheTTL returns the freshness window as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMS) * time.Millisecond
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	_ = level.UnmarshalText([]byte(c.LogLevel))
	return level
}

// Load reads configuration from environment variables and optional config file.
// Environment variables take precedence over config file values.
//
// Expected environment variables:
//   - SOURCE_URL (required)
//   - HEADLESS (optional, defaults to true)
//   - BROWSER_URL (optional, connect to an external Chrome instead of launching one)
//   - NAV_TIMEOUT_MS, SETTLE_DELAY_MS, CACHE_TTL_MS (optional)
//   - CRON_SCHEDULE (optional, standard 5-field cron expression)
//   - SHEET_ID, SHEET_TITLE, GOOGLE_SERVICE_ACCOUNT_B64 (checked per run, not here)
//   - SHEETS_BASE_URL (optional, defaults to production)
//   - PORT, LOG_LEVEL (optional)
//
// Sheet settings are checked on each run, so a bad secret is reported in
// the run status instead of stopping the service.
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("")
	v.AutomaticEnv()

	v.SetDefault("headless", true)
	v.SetDefault("nav_timeout_ms", 60000)
	v.SetDefault("settle_delay_ms", 4000)
	v.SetDefault("cache_ttl_ms", 60000)
	v.SetDefault("cron_schedule", "*/5 * * * *")
	v.SetDefault("sheet_title", "Rates")
	v.SetDefault("sheets_base_url", "https://sheets.googleapis.com/v4")
	v.SetDefault("port", 3000)
	v.SetDefault("log_level", "info")

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.ratesync")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	for _, key := range []string{
		"source_url", "headless", "browser_url", "nav_timeout_ms", "settle_delay_ms",
		"cache_ttl_ms", "cron_schedule", "sheet_id", "sheet_title",
		"google_service_account_b64", "sheets_base_url", "port", "log_level",
	} {
		v.BindEnv(key, strings.ToUpper(key))
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.SourceURL == "" {
		missing = append(missing, "SOURCE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	var invalid []string
	if c.NavTimeoutMS <= 0 {
		invalid = append(invalid, "NAV_TIMEOUT_MS must be positive")
	}
	if c.SettleDelayMS < 0 {
		invalid = append(invalid, "SETTLE_DELAY_MS must not be negative")
	}
	if c.CacheTTLMS < 0 {
		invalid = append(invalid, "CACHE_TTL_MS must not be negative")
	}
	if _, err := cron.ParseStandard(c.CronSchedule); err != nil {
		invalid = append(invalid, fmt.Sprintf("CRON_SCHEDULE %q: %v", c.CronSchedule, err))
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		invalid = append(invalid, fmt.Sprintf("LOG_LEVEL %q", c.LogLevel))
	}
	if c.Port <= 0 || c.Port > 65535 {
		invalid = append(invalid, "PORT out of range")
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(invalid, "; "))
	}
	return nil
}
