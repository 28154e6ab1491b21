package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/eventmatch/internal/adapters/http/api"
	"github.com/okian/eventmatch/internal/adapters/http/site"
	"github.com/okian/eventmatch/internal/adapters/http/swagger"
	"github.com/okian/eventmatch/internal/adapters/repository"
	service "github.com/okian/eventmatch/internal/app"
	"github.com/okian/eventmatch/internal/config"
	"github.com/okian/eventmatch/internal/tracing"
	"github.com/okian/eventmatch/pkg/logger"
	"github.com/okian/eventmatch/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString("eventmatch: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// defaults -> optional file -> env
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	log := logger.Get()

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		ServiceName:  cfg.ServiceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Environment,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplingRate: cfg.TracingSampleRate,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "tracing shutdown failed", logger.Error(err))
		}
	}()

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := service.New(store,
		service.WithLogger(log.Named("service")),
		service.WithBackend(cfg.Store),
		service.WithTimeout(cfg.RequestTimeout()),
	)

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
	return nil
}

// newHandler mounts every route and wraps the mux with request ids and tracing.
func newHandler(cfg *config.Config, svc *service.Service) http.Handler {
	mux := http.NewServeMux()
	api.NewServer(svc).Register(mux)
	swagger.Register(mux)
	site.Register(mux)
	return api.RequestID(api.Tracing(cfg.ServiceName, mux))
}

// buildStore opens the configured backend and applies the seed file if one is
// set. The returned func releases the backend.
func buildStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	log := logger.Named("store")

	switch cfg.Store {
	case config.StorePostgres:
		db, err := repository.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if err := db.Close(); err != nil {
				log.Warn(context.Background(), "closing database failed", logger.Error(err))
			}
		}
		if err := preparePostgres(ctx, db, cfg.SeedFile); err != nil {
			closeDB()
			return nil, nil, err
		}
		log.Info(ctx, "using postgres store")
		return repository.NewPostgresStore(db), closeDB, nil

	case config.StoreMemory:
		if cfg.SeedFile == "" {
			log.Warn(ctx, "memory store started without seed_file; every volunteer will be unknown")
			return repository.NewInMemoryStore(), func() {}, nil
		}
		store, err := repository.NewInMemoryStoreFromSeed(ctx, cfg.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		volunteers, events := store.Count()
		log.Info(ctx, "using memory store",
			logger.String("seed_file", cfg.SeedFile),
			logger.Int("volunteers", volunteers),
			logger.Int("events", events),
		)
		return store, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func preparePostgres(ctx context.Context, db *sql.DB, seedFile string) error {
	if err := repository.CreateSchema(ctx, db); err != nil {
		return err
	}
	if seedFile == "" {
		return nil
	}
	seed, err := repository.LoadSeed(seedFile)
	if err != nil {
		return err
	}
	return seed.Apply(ctx, repository.NewPostgresStore(db))
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
