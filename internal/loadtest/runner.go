package loadtest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/eventmatch/pkg/logger"
)

// Worker configuration constants.
const (
	workerChannelMultiplier = 2
	percentageMultiplier    = 100
)

// ErrNoVolunteers is returned when a run has nobody to query.
var ErrNoVolunteers = errors.New("no volunteer ids to query")

// Config describes one load run.
type Config struct {
	BaseURL      string
	VolunteerIDs []string // queried round-robin
	Requests     int
	Workers      int
	Timeout      time.Duration
}

// Stats summarizes a run.
type Stats struct {
	Requests        int
	OK              int
	NotFound        int
	Failed          int
	OrderViolations int
	Duration        time.Duration
	P50             time.Duration
	P95             time.Duration
	Max             time.Duration
}

// SuccessRate returns the share of 200 responses in percent.
func (s *Stats) SuccessRate() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.OK) / float64(s.Requests) * percentageMultiplier
}

// Run checks health, then fires cfg.Requests match requests over cfg.Workers
// goroutines and verifies the ordering of every successful response.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	if len(cfg.VolunteerIDs) == 0 {
		return nil, ErrNoVolunteers
	}
	workers := max(cfg.Workers, 1)
	client := NewClient(cfg.BaseURL, cfg.Timeout)
	log := logger.Named("loadtest")

	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", workers),
		logger.Int("volunteers", len(cfg.VolunteerIDs)),
	)

	var (
		ok, notFound, failed, violations atomic.Int64
		mu                               sync.Mutex
		latencies                        = make([]time.Duration, 0, cfg.Requests)
		wg                               sync.WaitGroup
	)
	jobs := make(chan string, workers*workerChannelMultiplier)
	start := time.Now()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				began := time.Now()
				matches, err := client.Matches(ctx, id)
				elapsed := time.Since(began)

				mu.Lock()
				latencies = append(latencies, elapsed)
				mu.Unlock()

				switch {
				case err == nil:
					ok.Add(1)
					if oerr := CheckOrder(matches); oerr != nil {
						violations.Add(1)
						log.Warn(ctx, "order violation", logger.String("volunteer_id", id), logger.Error(oerr))
					}
				case errors.Is(err, ErrNotFound):
					notFound.Add(1)
				default:
					failed.Add(1)
					log.Debug(ctx, "request failed", logger.String("volunteer_id", id), logger.Error(err))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < cfg.Requests; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- cfg.VolunteerIDs[i%len(cfg.VolunteerIDs)]:
			}
		}
	}()

	wg.Wait()

	stats := &Stats{
		Requests:        len(latencies),
		OK:              int(ok.Load()),
		NotFound:        int(notFound.Load()),
		Failed:          int(failed.Load()),
		OrderViolations: int(violations.Load()),
		Duration:        time.Since(start),
	}
	slices.Sort(latencies)
	stats.P50 = percentile(latencies, 0.50)
	stats.P95 = percentile(latencies, 0.95)
	stats.Max = percentile(latencies, 1)

	log.Info(ctx, "load run finished",
		logger.Int("requests", stats.Requests),
		logger.Int("ok", stats.OK),
		logger.Int("notFound", stats.NotFound),
		logger.Int("failed", stats.Failed),
		logger.Int("orderViolations", stats.OrderViolations),
		logger.Duration("p50", stats.P50),
		logger.Duration("p95", stats.P95),
		logger.Float64("successRate", stats.SuccessRate()),
	)
	return stats, ctx.Err()
}

// percentile reads the q-quantile from sorted latencies using nearest rank.
func percentile(sorted []time.Duration, q float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(q*float64(len(sorted))+0.5) - 1
	idx = min(max(idx, 0), len(sorted)-1)
	return sorted[idx]
}
