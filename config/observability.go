package config

import (
	"log/slog"
	"strings"
)

// ObservabilityConfig groups configuration that controls logging and metrics.
type ObservabilityConfig struct {
	// LogLevel is one of debug, info, warn, error. Development mode defaults to debug.
	LogLevel string `env:"LOG_LEVEL" envDefault:""`

	// LogFormat is json or text.
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// MetricsEnabled exposes Prometheus metrics on /metrics.
	MetricsEnabled bool `env:"OBSERVABILITY_METRICS_ENABLED" envDefault:"true"`
}

// Sanitize normalises values and picks the default log level.
func (c *ObservabilityConfig) Sanitize(isDev bool) {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
		if isDev {
			c.LogLevel = "debug"
		}
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat != "text" {
		c.LogFormat = "json"
	}
}

// Level maps LogLevel to a slog level. Unknown values fall back to info.
func (c ObservabilityConfig) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
