// Package config provides centralized configuration loaded from environment
// variables. Shared by every buzzwatch subcommand.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Baseline policies for the smoothing comparison. "oldest" compares the
// current reading against the oldest retained sample (maximum noise
// damping); "previous" compares against the immediately prior one.
const (
	BaselineOldest   = "oldest"
	BaselinePrevious = "previous"
)

// Config is populated from environment variables. A .env file, when present,
// is loaded first for local development.
type Config struct {
	// Polling
	CheckIntervalMin      int    `env:"CHECK_INTERVAL_MIN" envDefault:"5"`
	UserAgent             string `env:"USER_AGENT" envDefault:"Mozilla/5.0"`
	RequestTimeoutSeconds int    `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
	FetchRequestsPerMin   int    `env:"FETCH_REQUESTS_PER_MINUTE" envDefault:"10"`

	// Trend detection
	AddRateThreshold  float64 `env:"ADD_RATE_THRESHOLD" envDefault:"4.0"`
	DropRateThreshold float64 `env:"DROP_RATE_THRESHOLD" envDefault:"4.0"`
	MinAbsAddDelta    int     `env:"MIN_ABS_ADD_DELTA" envDefault:"15"`
	MinAbsDropDelta   int     `env:"MIN_ABS_DROP_DELTA" envDefault:"15"`
	SmoothingN        int     `env:"SMOOTHING_N" envDefault:"3"`
	BaselinePolicy    string  `env:"BASELINE_POLICY" envDefault:"oldest"`

	// Flood control
	MaxAlertsPerPlayer    int `env:"MAX_ALERTS_PER_PLAYER" envDefault:"3"`
	MaxAlertsPerIteration int `env:"MAX_ALERTS_PER_ITERATION" envDefault:"12"`
	EmbedAlertsPerMessage int `env:"EMBED_ALERTS_PER_MESSAGE" envDefault:"10"`
	MaxDiscordRetries     int `env:"MAX_DISCORD_RETRIES" envDefault:"3"`

	// Delivery
	DiscordWebhookURL string `env:"DISCORD_WEBHOOK_URL"`
	DryRun            bool   `env:"DRY_RUN" envDefault:"true"`

	// Operational status server
	StatusEnabled    bool     `env:"STATUS_ENABLED" envDefault:"true"`
	StatusHost       string   `env:"STATUS_HOST" envDefault:"0.0.0.0"`
	StatusPort       int      `env:"STATUS_PORT" envDefault:"8080"`
	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// Load reads configuration from the environment, preferring a local .env
// file when one exists. Invalid values are fatal at startup — the watcher
// never discovers bad configuration mid-run.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and cross-field constraints.
func (c *Config) Validate() error {
	if c.CheckIntervalMin < 1 {
		return fmt.Errorf("CHECK_INTERVAL_MIN must be >= 1, got %d", c.CheckIntervalMin)
	}
	if c.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be >= 1, got %d", c.RequestTimeoutSeconds)
	}
	if c.FetchRequestsPerMin < 1 {
		return fmt.Errorf("FETCH_REQUESTS_PER_MINUTE must be >= 1, got %d", c.FetchRequestsPerMin)
	}
	if c.AddRateThreshold < 0 || c.DropRateThreshold < 0 {
		return fmt.Errorf("rate thresholds must be non-negative")
	}
	if c.MinAbsAddDelta < 0 || c.MinAbsDropDelta < 0 {
		return fmt.Errorf("minimum absolute deltas must be non-negative")
	}
	if c.SmoothingN < 1 {
		return fmt.Errorf("SMOOTHING_N must be >= 1, got %d", c.SmoothingN)
	}
	if c.BaselinePolicy != BaselineOldest && c.BaselinePolicy != BaselinePrevious {
		return fmt.Errorf("BASELINE_POLICY must be %q or %q, got %q",
			BaselineOldest, BaselinePrevious, c.BaselinePolicy)
	}
	if c.MaxAlertsPerPlayer < 1 {
		return fmt.Errorf("MAX_ALERTS_PER_PLAYER must be >= 1, got %d", c.MaxAlertsPerPlayer)
	}
	if c.MaxAlertsPerIteration < 1 {
		return fmt.Errorf("MAX_ALERTS_PER_ITERATION must be >= 1, got %d", c.MaxAlertsPerIteration)
	}
	if c.EmbedAlertsPerMessage < 1 {
		return fmt.Errorf("EMBED_ALERTS_PER_MESSAGE must be >= 1, got %d", c.EmbedAlertsPerMessage)
	}
	if c.MaxDiscordRetries < 1 {
		return fmt.Errorf("MAX_DISCORD_RETRIES must be >= 1, got %d", c.MaxDiscordRetries)
	}
	if c.StatusEnabled && (c.StatusPort < 1 || c.StatusPort > 65535) {
		return fmt.Errorf("invalid STATUS_PORT: %d (must be 1-65535)", c.StatusPort)
	}
	return nil
}

// CheckInterval returns the poll interval as a duration.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalMin) * time.Minute
}

// RequestTimeout returns the outbound HTTP timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
