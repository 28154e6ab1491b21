package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/eventmatch/internal/adapters/repository"
	"github.com/okian/eventmatch/pkg/logger"
)

// failingStore wraps a store and fails the chosen operation.
type failingStore struct {
	repository.Store
	failOn     string
	err        error
	eventCalls atomic.Int32
}

func (f *failingStore) GetVolunteerPreferences(ctx context.Context, id string) (repository.PreferenceRow, error) {
	if f.failOn == opGetPreferences {
		return repository.PreferenceRow{}, f.err
	}
	return f.Store.GetVolunteerPreferences(ctx, id)
}

func (f *failingStore) GetVolunteerSkillNames(ctx context.Context, id string) ([]string, error) {
	if f.failOn == opGetSkills {
		return nil, f.err
	}
	return f.Store.GetVolunteerSkillNames(ctx, id)
}

func (f *failingStore) ListEventsWithSkills(ctx context.Context) ([]repository.EventRow, error) {
	f.eventCalls.Add(1)
	if f.failOn == opListEvents {
		return nil, f.err
	}
	return f.Store.ListEventsWithSkills(ctx)
}

func ptr[T any](v T) *T { return &v }

func seededStore(t *testing.T) *repository.InMemoryStore {
	t.Helper()
	ctx := context.Background()
	date := time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)
	other := time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC)
	store := repository.NewInMemoryStore()

	must := func(err error) {
		if err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}
	must(store.PutVolunteer(ctx, repository.VolunteerRecord{
		Preferences: repository.PreferenceRow{VolunteerID: "vol-1", PreferredCity: ptr("Houston"), PreferredDate: &date},
		SkillNames:  []string{"Cooking", "Driving"},
	}))
	must(store.PutVolunteer(ctx, repository.VolunteerRecord{
		Preferences: repository.PreferenceRow{VolunteerID: "vol-empty"},
	}))
	must(store.PutEvent(ctx, repository.EventRow{
		ID: "evt-1", Title: "PerfectMatch", Location: "123 Main St, Houston TX", Date: &date,
		SkillNames: []string{"cooking", "DRIVING"}, Urgency: "High",
	}))
	must(store.PutEvent(ctx, repository.EventRow{
		ID: "evt-2", Title: "SkillsOnly", Location: "Dallas", Date: &other,
		SkillNames: []string{"Cooking"},
	}))
	must(store.PutEvent(ctx, repository.EventRow{
		ID: "evt-3", Title: "NoMatch", Location: "Austin",
	}))
	return store
}

func TestServiceMatches(t *testing.T) {
	Convey("Given a service over a seeded store", t, func() {
		svc := New(seededStore(t), WithLogger(logger.Nop()), WithTimeout(time.Second))
		ctx := context.Background()

		Convey("When matching a known volunteer", func() {
			matches, err := svc.Matches(ctx, " vol-1 ")

			Convey("Then events are ranked best first with wire fields filled", func() {
				So(err, ShouldBeNil)
				So(len(matches), ShouldEqual, 3)
				So(matches[0].ID, ShouldEqual, "evt-1")
				So(matches[0].MatchScore, ShouldEqual, 100)
				So(matches[0].Date, ShouldEqual, "2025-11-02")
				So(matches[0].Urgency, ShouldEqual, "High")
				So(matches[1].Title, ShouldEqual, "SkillsOnly")
				So(matches[1].MatchScore, ShouldEqual, 40)
				So(matches[2].Title, ShouldEqual, "NoMatch")
				So(matches[2].MatchScore, ShouldEqual, 0)
				So(matches[2].Date, ShouldEqual, "")
				So(matches[2].SkillsNeeded, ShouldNotBeNil)
			})
		})

		Convey("When the volunteer has no preferences at all", func() {
			matches, err := svc.Matches(ctx, "vol-empty")

			Convey("Then every event scores 0 and ties break by title", func() {
				So(err, ShouldBeNil)
				So(len(matches), ShouldEqual, 3)
				So(matches[0].Title, ShouldEqual, "NoMatch")
				So(matches[1].Title, ShouldEqual, "PerfectMatch")
				So(matches[2].Title, ShouldEqual, "SkillsOnly")
				for _, m := range matches {
					So(m.MatchScore, ShouldEqual, 0)
				}
			})
		})

		Convey("When the volunteer is unknown", func() {
			store := &failingStore{Store: seededStore(t)}
			svc := New(store, WithLogger(logger.Nop()))
			_, err := svc.Matches(ctx, "nobody")

			Convey("Then ErrNotFound is returned and events are never read", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(store.eventCalls.Load(), ShouldEqual, 0)
			})
		})

		Convey("When the id is malformed", func() {
			for _, id := range []string{"", "   ", "a/b", strings.Repeat("x", MaxVolunteerIDLength+1)} {
				_, err := svc.Matches(ctx, id)
				So(errors.Is(err, ErrInvalidVolunteerID), ShouldBeTrue)
			}
		})
	})
}

func TestServiceStoreFailures(t *testing.T) {
	Convey("Given a store that fails", t, func() {
		boom := errors.New("connection refused")

		for _, op := range []string{opGetPreferences, opGetSkills, opListEvents} {
			store := &failingStore{Store: seededStore(t), failOn: op, err: boom}
			svc := New(store, WithLogger(logger.Nop()), WithBackend("postgres"))

			_, err := svc.Matches(context.Background(), "vol-1")

			So(errors.Is(err, ErrStore), ShouldBeTrue)
			So(errors.Is(err, boom), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, op)
		}
	})

	Convey("Given a context that is already cancelled", t, func() {
		svc := New(seededStore(t), WithLogger(logger.Nop()))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := svc.Matches(ctx, "vol-1")

		So(errors.Is(err, ErrStore), ShouldBeTrue)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

func TestServicePing(t *testing.T) {
	Convey("Given services over different stores", t, func() {
		Convey("When the store can be pinged", func() {
			svc := New(repository.NewInMemoryStore(), WithLogger(logger.Nop()))
			So(svc.Ping(context.Background()), ShouldBeNil)
			So(svc.Backend(), ShouldEqual, "memory")
		})

		Convey("When the store has no ping", func() {
			svc := New(&failingStore{Store: nil}, WithLogger(logger.Nop()))
			So(svc.Ping(context.Background()), ShouldBeNil)
		})
	})
}

func TestValidateVolunteerID(t *testing.T) {
	Convey("Given candidate volunteer ids", t, func() {
		id, err := ValidateVolunteerID("  vol-7\t")
		So(err, ShouldBeNil)
		So(id, ShouldEqual, "vol-7")

		_, err = ValidateVolunteerID(strings.Repeat("x", MaxVolunteerIDLength))
		So(err, ShouldBeNil)
	})
}
