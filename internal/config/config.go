// Package config defines service configuration structures and loading hooks.
//
// Values are layered: defaults from New, then an optional YAML file named by
// EVENTMATCH_CONFIG, then EVENTMATCH_* environment variables.
package config

import (
	"time"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the backend: memory or postgres.
	Store string `koanf:"store"`

	// DatabaseURL is the PostgreSQL DSN, required when Store is postgres.
	DatabaseURL string `koanf:"database_url"`

	// SeedFile optionally populates the store from a YAML fixture at startup.
	SeedFile string `koanf:"seed_file"`

	// RequestTimeoutMS bounds one match request; 0 disables the bound.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// ShutdownTimeoutMS bounds graceful shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`

	// Tracing.
	TracingEnabled    bool    `koanf:"tracing_enabled"`
	TracingExporter   string  `koanf:"tracing_exporter"`
	OTLPEndpoint      string  `koanf:"otlp_endpoint"`
	TracingSampleRate float64 `koanf:"tracing_sample_rate"`
	TracingInsecure   bool    `koanf:"tracing_insecure"`
	ServiceName       string  `koanf:"service_name"`
	Environment       string  `koanf:"environment"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		Store:             StoreMemory,
		RequestTimeoutMS:  5_000,
		ShutdownTimeoutMS: 10_000,
		TracingExporter:   "otlp-http",
		TracingSampleRate: 0.1,
		ServiceName:       "eventmatch",
		Environment:       "development",
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}
