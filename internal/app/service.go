// Package service assembles volunteer matches: it reads preferences and events
// from the store, maps them into domain shapes and ranks them.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/okian/eventmatch/internal/adapters/repository"
	"github.com/okian/eventmatch/internal/domain/matching"
	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/internal/domain/types"
	"github.com/okian/eventmatch/internal/tracing"
	"github.com/okian/eventmatch/pkg/logger"
	"github.com/okian/eventmatch/pkg/metrics"
)

// MaxVolunteerIDLength bounds accepted volunteer ids, in bytes.
const MaxVolunteerIDLength = 128

// Store operation names used in metrics and spans.
const (
	opGetPreferences = "get_preferences"
	opGetSkills      = "get_skills"
	opListEvents     = "list_events"
)

// Service implements the matching use case for the HTTP API.
type Service struct {
	store   repository.Store
	backend string
	timeout time.Duration
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBackend names the store backend in spans and logs ("memory", "postgres").
func WithBackend(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.backend = name
		}
	}
}

// WithTimeout bounds every Matches call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New constructs a Service reading from store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		backend: "memory",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	return s
}

// Backend returns the configured store backend name.
func (s *Service) Backend() string {
	return s.backend
}

// Matches returns every event ranked for the volunteer, best match first.
// Errors wrap ErrInvalidVolunteerID, ErrNotFound or ErrStore.
func (s *Service) Matches(ctx context.Context, volunteerID string) (matches []types.Match, err error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	ctx, end := tracing.StartSpan(ctx, "service.matches")
	defer func() { end(err) }()

	id, err := ValidateVolunteerID(volunteerID)
	if err != nil {
		metrics.RecordMatchRequest(metrics.OutcomeInvalid)
		return nil, err
	}
	tracing.SetAttributes(ctx, attribute.String("volunteer.id", id))

	var prefRow repository.PreferenceRow
	err = s.query(ctx, opGetPreferences, func(ctx context.Context) (qerr error) {
		prefRow, qerr = s.store.GetVolunteerPreferences(ctx, id)
		return qerr
	})
	if errors.Is(err, repository.ErrNotFound) {
		metrics.RecordMatchRequest(metrics.OutcomeNotFound)
		s.logger.Debug(ctx, "volunteer not found", logger.String("volunteer_id", id))
		return nil, err
	}
	if err != nil {
		return nil, s.storeFailure(ctx, id, err)
	}

	var (
		skills []string
		rows   []repository.EventRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.query(gctx, opGetSkills, func(ctx context.Context) (qerr error) {
			skills, qerr = s.store.GetVolunteerSkillNames(ctx, id)
			return qerr
		})
	})
	g.Go(func() error {
		return s.query(gctx, opListEvents, func(ctx context.Context) (qerr error) {
			rows, qerr = s.store.ListEventsWithSkills(ctx)
			return qerr
		})
	})
	if err = g.Wait(); err != nil {
		return nil, s.storeFailure(ctx, id, err)
	}

	prefs := toPreferences(prefRow, skills)
	events := make([]model.Event, len(rows))
	for i, row := range rows {
		events[i] = toEvent(row)
	}

	start := time.Now()
	ranked := matching.RankEventsByMatch(prefs, events)
	elapsed := time.Since(start)

	matches = make([]types.Match, len(ranked))
	percentages := make([]int, len(ranked))
	for i, r := range ranked {
		matches[i] = toMatch(r)
		percentages[i] = r.MatchPercentage
	}
	metrics.RecordRanking(float64(elapsed.Microseconds())/1000, percentages)
	metrics.RecordMatchRequest(metrics.OutcomeOK)
	tracing.SetAttributes(ctx, attribute.Int("events.count", len(matches)))

	s.logger.Debug(ctx, "ranked events",
		logger.String("volunteer_id", id),
		logger.Int("events", len(matches)),
		logger.Duration("ranking", elapsed),
	)
	return matches, nil
}

// Ping checks the store when it supports it.
func (s *Service) Ping(ctx context.Context) error {
	if p, ok := s.store.(repository.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// ValidateVolunteerID trims id and checks it can name a volunteer.
func ValidateVolunteerID(id string) (string, error) {
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidVolunteerID)
	case len(id) > MaxVolunteerIDLength:
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidVolunteerID, MaxVolunteerIDLength)
	case strings.Contains(id, "/"):
		return "", fmt.Errorf("%w: contains '/'", ErrInvalidVolunteerID)
	}
	return id, nil
}

// query runs one store call with latency metrics and a client span.
// ErrNotFound passes through untouched; other failures wrap ErrStore.
func (s *Service) query(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, end := tracing.StartStoreSpan(ctx, s.backend, op)
	start := time.Now()
	err := fn(ctx)
	metrics.RecordStoreQuery(op, float64(time.Since(start).Microseconds())/1000)

	if err == nil || errors.Is(err, repository.ErrNotFound) {
		end(nil)
		return err
	}
	end(err)
	metrics.RecordStoreError(op)
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}

func (s *Service) storeFailure(ctx context.Context, id string, err error) error {
	metrics.RecordMatchRequest(metrics.OutcomeStoreError)
	s.logger.Error(ctx, "store failure",
		logger.String("volunteer_id", id),
		logger.String("backend", s.backend),
		logger.Error(err),
	)
	return err
}
