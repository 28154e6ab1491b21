package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/eventmatch/internal/domain/normalize"
)

// Seed is the YAML fixture format used to populate a store:
//
//	volunteers:
//	  - id: vol-1
//	    city: Houston
//	    preferred_date: "2025-11-02"
//	    skills: [Cooking, Driving]
//	events:
//	  - id: evt-1
//	    title: Food drive
//	    location: 123 Main St, Houston TX
//	    date: "2025-11-02"
//	    skills: [cooking]
type Seed struct {
	Volunteers []SeedVolunteer `koanf:"volunteers"`
	Events     []SeedEvent     `koanf:"events"`
}

// SeedVolunteer is one volunteer entry of a Seed.
type SeedVolunteer struct {
	ID            string   `koanf:"id"`
	City          string   `koanf:"city"`
	PreferredDate string   `koanf:"preferred_date"`
	Skills        []string `koanf:"skills"`
}

// SeedEvent is one event entry of a Seed. A missing id gets a random UUID.
type SeedEvent struct {
	ID          string   `koanf:"id"`
	Title       string   `koanf:"title"`
	Location    string   `koanf:"location"`
	Date        string   `koanf:"date"`
	Description string   `koanf:"description"`
	Urgency     string   `koanf:"urgency"`
	Skills      []string `koanf:"skills"`
}

// LoadSeed reads a YAML (or JSON) seed file.
func LoadSeed(path string) (*Seed, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load seed %s: %w", path, err)
	}
	var seed Seed
	if err := k.UnmarshalWithConf("", &seed, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	return &seed, nil
}

// Apply writes every volunteer and event of the seed through w.
func (s *Seed) Apply(ctx context.Context, w Writer) error {
	for i, v := range s.Volunteers {
		rec, err := v.record()
		if err != nil {
			return fmt.Errorf("volunteer %d: %w", i, err)
		}
		if err := w.PutVolunteer(ctx, rec); err != nil {
			return fmt.Errorf("put volunteer %s: %w", rec.Preferences.VolunteerID, err)
		}
	}
	for i, e := range s.Events {
		row, err := e.row()
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		if err := w.PutEvent(ctx, row); err != nil {
			return fmt.Errorf("put event %s: %w", row.ID, err)
		}
	}
	return nil
}

// NewInMemoryStoreFromSeed loads path into a fresh InMemoryStore.
func NewInMemoryStoreFromSeed(ctx context.Context, path string) (*InMemoryStore, error) {
	seed, err := LoadSeed(path)
	if err != nil {
		return nil, err
	}
	store := NewInMemoryStore()
	if err := seed.Apply(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (v SeedVolunteer) record() (VolunteerRecord, error) {
	id := strings.TrimSpace(v.ID)
	if id == "" {
		return VolunteerRecord{}, fmt.Errorf("%w: missing id", ErrInvalidSeed)
	}
	date, err := parseSeedDate(v.PreferredDate)
	if err != nil {
		return VolunteerRecord{}, err
	}
	prefs := PreferenceRow{VolunteerID: id, PreferredDate: date}
	if city := strings.TrimSpace(v.City); city != "" {
		prefs.PreferredCity = &city
	}
	return VolunteerRecord{Preferences: prefs, SkillNames: v.Skills}, nil
}

func (e SeedEvent) row() (EventRow, error) {
	if strings.TrimSpace(e.Title) == "" {
		return EventRow{}, fmt.Errorf("%w: missing title", ErrInvalidSeed)
	}
	date, err := parseSeedDate(e.Date)
	if err != nil {
		return EventRow{}, err
	}
	id := strings.TrimSpace(e.ID)
	if id == "" {
		id = uuid.NewString()
	}
	return EventRow{
		ID:          id,
		Title:       e.Title,
		Location:    e.Location,
		Date:        date,
		Description: e.Description,
		Urgency:     e.Urgency,
		SkillNames:  e.Skills,
	}, nil
}

func parseSeedDate(s string) (*time.Time, error) {
	n := normalize.Date(s)
	if n == "" {
		return nil, nil
	}
	t, err := time.Parse(normalize.ISODate, n)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q", ErrInvalidSeed, s)
	}
	return &t, nil
}

// Encode renders the seed as YAML that LoadSeed reads back.
func (s *Seed) Encode() ([]byte, error) {
	volunteers := make([]any, 0, len(s.Volunteers))
	for _, v := range s.Volunteers {
		volunteers = append(volunteers, map[string]any{
			"id":             v.ID,
			"city":           v.City,
			"preferred_date": v.PreferredDate,
			"skills":         stringsOrEmpty(v.Skills),
		})
	}
	events := make([]any, 0, len(s.Events))
	for _, e := range s.Events {
		events = append(events, map[string]any{
			"id":          e.ID,
			"title":       e.Title,
			"location":    e.Location,
			"date":        e.Date,
			"description": e.Description,
			"urgency":     e.Urgency,
			"skills":      stringsOrEmpty(e.Skills),
		})
	}
	out, err := yaml.Parser().Marshal(map[string]any{
		"volunteers": volunteers,
		"events":     events,
	})
	if err != nil {
		return nil, fmt.Errorf("encode seed: %w", err)
	}
	return out, nil
}

func stringsOrEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
