package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/eventmatch/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.ShutdownTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.TracingEnabled, convey.ShouldBeFalse)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs that break one rule each", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":         func(c *config.Config) { c.Addr = " " },
			"bad level":          func(c *config.Config) { c.LogLevel = "verbose" },
			"bad format":         func(c *config.Config) { c.LogFormat = "xml" },
			"bad store":          func(c *config.Config) { c.Store = "redis" },
			"mixed-case store":   func(c *config.Config) { c.Store = "Postgres"; c.DatabaseURL = "postgres://localhost/eventmatch" },
			"postgres no url":    func(c *config.Config) { c.Store = config.StorePostgres },
			"negative timeout":   func(c *config.Config) { c.RequestTimeoutMS = -1 },
			"zero shutdown":      func(c *config.Config) { c.ShutdownTimeoutMS = 0 },
			"tracing no service": func(c *config.Config) { c.TracingEnabled = true; c.ServiceName = "" },
			"tracing bad rate":   func(c *config.Config) { c.TracingEnabled = true; c.TracingSampleRate = 2 },
			"tracing bad export": func(c *config.Config) { c.TracingEnabled = true; c.TracingExporter = "zipkin" },
		}

		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(name, convey.ShouldNotBeEmpty)
		}
	})

	convey.Convey("Given a valid postgres config with tracing", t, func() {
		cfg := config.New()
		cfg.Store = config.StorePostgres
		cfg.DatabaseURL = "postgres://localhost/eventmatch"
		cfg.TracingEnabled = true
		cfg.TracingExporter = "otlp-grpc"

		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}
