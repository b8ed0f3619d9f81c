// Package config loads the demo driver configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	tberrors "github.com/vnykmshr/tokenbucket/pkg/common/errors"
	"github.com/vnykmshr/tokenbucket/pkg/common/validation"
)

const module = "config"

// Config is the full demo driver configuration.
type Config struct {
	Bucket  BucketConfig  `yaml:"bucket"`
	Driver  DriverConfig  `yaml:"driver"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Report  ReportConfig  `yaml:"report"`
	Redis   RedisConfig   `yaml:"redis"`
}

// BucketConfig defines the limiter under test.
type BucketConfig struct {
	// Capacity is the maximum number of tokens (burst size)
	Capacity int64 `yaml:"capacity"`

	// RefillRate is the number of whole tokens added per second
	RefillRate int64 `yaml:"refill_rate"`
}

// DriverConfig controls the polling loop.
type DriverConfig struct {
	// Interval between attempts, e.g. "100ms"
	Interval time.Duration `yaml:"interval"`

	// MaxAttempts stops the loop after this many attempts; 0 runs until interrupted
	MaxAttempts int64 `yaml:"max_attempts"`
}

// LogConfig selects the zap logger flavour.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	Namespace string `yaml:"namespace"`
}

// ReportConfig controls the periodic summary table.
type ReportConfig struct {
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression or descriptor such as "@every 5s"
	Schedule string `yaml:"schedule"`
}

// RedisConfig configures the optional attempt event publisher.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

// Default returns the configuration of the classic demo: capacity 5,
// 3 tokens per second, one attempt every 100ms.
func Default() *Config {
	return &Config{
		Bucket: BucketConfig{
			Capacity:   5,
			RefillRate: 3,
		},
		Driver: DriverConfig{
			Interval:    100 * time.Millisecond,
			MaxAttempts: 0,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Addr:      ":9090",
			Namespace: "tokenbucket",
		},
		Report: ReportConfig{
			Enabled:  true,
			Schedule: "@every 5s",
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			Channel: "tokenbucket:attempts",
		},
	}
}

// Load reads a YAML file, overlays it on Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", tberrors.ErrInvalidConfiguration, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", tberrors.ErrInvalidConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	checks := []error{
		validation.ValidatePositive(module, "bucket.capacity", c.Bucket.Capacity),
		validation.ValidatePositive(module, "bucket.refill_rate", c.Bucket.RefillRate),
		validation.ValidatePositiveDuration(module, "driver.interval", c.Driver.Interval),
		validation.ValidateNonNegative(module, "driver.max_attempts", c.Driver.MaxAttempts),
		validation.ValidateOneOf(module, "log.level", c.Log.Level, "debug", "info", "warn", "error"),
		validation.ValidateOneOf(module, "log.format", c.Log.Format, "console", "json"),
	}
	if c.Metrics.Enabled {
		checks = append(checks, validation.ValidateNotEmpty(module, "metrics.addr", c.Metrics.Addr))
	}
	if c.Report.Enabled {
		checks = append(checks, validation.ValidateNotEmpty(module, "report.schedule", c.Report.Schedule))
	}
	if c.Redis.Enabled {
		checks = append(checks,
			validation.ValidateNotEmpty(module, "redis.addr", c.Redis.Addr),
			validation.ValidateNotEmpty(module, "redis.channel", c.Redis.Channel),
		)
	}

	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}
