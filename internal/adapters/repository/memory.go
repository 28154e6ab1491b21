package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// InMemoryStore keeps volunteers and events in maps guarded by a RWMutex.
// Reads return copies, so callers may keep or modify what they get.
type InMemoryStore struct {
	mu         sync.RWMutex
	volunteers map[string]VolunteerRecord
	events     map[string]EventRow
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		volunteers: make(map[string]VolunteerRecord),
		events:     make(map[string]EventRow),
	}
}

// GetVolunteerPreferences implements Store.
func (s *InMemoryStore) GetVolunteerPreferences(ctx context.Context, volunteerID string) (PreferenceRow, error) {
	if err := ctx.Err(); err != nil {
		return PreferenceRow{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.volunteers[volunteerID]
	if !ok {
		return PreferenceRow{}, ErrNotFound
	}
	return copyPreferences(rec.Preferences), nil
}

// GetVolunteerSkillNames implements Store.
func (s *InMemoryStore) GetVolunteerSkillNames(ctx context.Context, volunteerID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := slices.Clone(s.volunteers[volunteerID].SkillNames)
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// ListEventsWithSkills implements Store. Events come back ordered by id.
func (s *InMemoryStore) ListEventsWithSkills(ctx context.Context) ([]EventRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]EventRow, 0, len(s.events))
	for _, row := range s.events {
		rows = append(rows, copyEvent(row))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

// PutVolunteer inserts or replaces a volunteer.
func (s *InMemoryStore) PutVolunteer(ctx context.Context, rec VolunteerRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateVolunteer(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volunteers[rec.Preferences.VolunteerID] = VolunteerRecord{
		Preferences: copyPreferences(rec.Preferences),
		SkillNames:  slices.Clone(rec.SkillNames),
	}
	return nil
}

// PutEvent inserts or replaces an event.
func (s *InMemoryStore) PutEvent(ctx context.Context, row EventRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateEvent(row); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[row.ID] = copyEvent(row)
	return nil
}

// Ping implements Pinger; memory is always reachable.
func (s *InMemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Count returns the number of volunteers and events held.
func (s *InMemoryStore) Count() (volunteers, events int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.volunteers), len(s.events)
}

func copyPreferences(p PreferenceRow) PreferenceRow {
	c := PreferenceRow{VolunteerID: p.VolunteerID}
	if p.PreferredCity != nil {
		city := *p.PreferredCity
		c.PreferredCity = &city
	}
	c.PreferredDate = copyTime(p.PreferredDate)
	return c
}

func copyEvent(e EventRow) EventRow {
	c := e
	c.Date = copyTime(e.Date)
	c.SkillNames = slices.Clone(e.SkillNames)
	if c.SkillNames == nil {
		c.SkillNames = []string{}
	}
	return c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
