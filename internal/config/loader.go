package config

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "EVENTMATCH_"
	envConfigPath = "EVENTMATCH_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if EVENTMATCH_CONFIG is set
//  3. env (prefix EVENTMATCH_)
//
// The result is validated before it is returned.
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// EVENTMATCH_REQUEST_TIMEOUT_MS -> request_timeout_ms; underscores are
	// kept so keys match the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg.canonicalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// canonicalize lowercases and trims the enumerated keys so that
// EVENTMATCH_STORE=Postgres selects the postgres backend.
func (c *Config) canonicalize() {
	for _, v := range []*string{&c.LogLevel, &c.LogFormat, &c.Store, &c.TracingExporter} {
		*v = strings.ToLower(strings.TrimSpace(*v))
	}
}

// Validate checks cross-field constraints. Enumerated keys must already be
// lowercase; Load takes care of that.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !oneOf(c.LogLevel, "debug", "info", "warn", "warning", "error"):
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	case !oneOf(c.LogFormat, "text", "json"):
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	case !oneOf(c.Store, StoreMemory, StorePostgres):
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	case c.Store == StorePostgres && c.DatabaseURL == "":
		return fmt.Errorf("%w: database_url is required for the postgres store", ErrInvalidConfig)
	case c.RequestTimeoutMS < 0:
		return fmt.Errorf("%w: request_timeout_ms must not be negative", ErrInvalidConfig)
	case c.ShutdownTimeoutMS <= 0:
		return fmt.Errorf("%w: shutdown_timeout_ms must be positive", ErrInvalidConfig)
	}
	if !c.TracingEnabled {
		return nil
	}
	switch {
	case c.ServiceName == "":
		return fmt.Errorf("%w: service_name is required when tracing is enabled", ErrInvalidConfig)
	case c.TracingSampleRate < 0 || c.TracingSampleRate > 1:
		return fmt.Errorf("%w: tracing_sample_rate must be within [0,1]", ErrInvalidConfig)
	case !oneOf(c.TracingExporter, "otlp-http", "otlp-grpc"):
		return fmt.Errorf("%w: unknown tracing_exporter %q", ErrInvalidConfig, c.TracingExporter)
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	return slices.Contains(allowed, v)
}
