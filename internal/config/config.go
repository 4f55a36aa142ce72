// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/okian/mergington/internal/domain/activity"
	"github.com/okian/mergington/internal/domain/model"
)

// ActivityConfig describes one seeded activity; the map key is its name.
type ActivityConfig struct {
	Description     string   `koanf:"description"`
	Schedule        string   `koanf:"schedule"`
	MaxParticipants int      `koanf:"max_participants"`
	Participants    []string `koanf:"participants"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// HTTP server timeouts in milliseconds.
	ReadTimeoutMS     int `koanf:"read_timeout_ms"`
	WriteTimeoutMS    int `koanf:"write_timeout_ms"`
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`

	// StatsIntervalMS sets how often runtime gauges are refreshed.
	StatsIntervalMS int `koanf:"stats_interval_ms"`

	// Activities replaces the built-in seed when non-empty.
	Activities map[string]ActivityConfig `koanf:"activities"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":8000",
		ReadTimeoutMS:     10_000,
		WriteTimeoutMS:    10_000,
		ShutdownTimeoutMS: 30_000,
		StatsIntervalMS:   10_000,
	}
}

// Seed returns the activities the registry starts with, ordered by name.
func (c *Config) Seed() []model.Activity {
	if len(c.Activities) == 0 {
		return activity.DefaultSeed()
	}
	names := make([]string, 0, len(c.Activities))
	for name := range c.Activities {
		names = append(names, name)
	}
	slices.Sort(names)

	seed := make([]model.Activity, 0, len(names))
	for _, name := range names {
		ac := c.Activities[name]
		seed = append(seed, model.Activity{
			Name:            name,
			Description:     ac.Description,
			Schedule:        ac.Schedule,
			MaxParticipants: ac.MaxParticipants,
			Participants:    slices.Clone(ac.Participants),
		})
	}
	return seed
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.ReadTimeoutMS <= 0 || c.WriteTimeoutMS <= 0 || c.ShutdownTimeoutMS <= 0:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	case c.StatsIntervalMS <= 0:
		return fmt.Errorf("%w: stats_interval_ms must be positive", ErrInvalidConfig)
	}
	for _, a := range c.Seed() {
		if err := activity.Validate(a); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// ReadTimeout returns the HTTP read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}

// WriteTimeout returns the HTTP write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns the graceful shutdown budget.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// StatsInterval returns the runtime gauge refresh period.
func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.StatsIntervalMS) * time.Millisecond
}
