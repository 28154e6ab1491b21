// Package repository defines the read contract the matching service consumes
// and its in-memory and PostgreSQL implementations.
package repository

import (
	"context"
	"time"
)

// PreferenceRow is a volunteer's stored preference row.
type PreferenceRow struct {
	VolunteerID   string
	PreferredCity *string    // nil when the volunteer never set one
	PreferredDate *time.Time // nil when the volunteer never set one
}

// EventRow is an event joined with the names of its required skills.
type EventRow struct {
	ID          string
	Title       string
	Location    string
	Date        *time.Time
	Description string
	Urgency     string
	SkillNames  []string
}

// VolunteerRecord bundles everything written for one volunteer.
type VolunteerRecord struct {
	Preferences PreferenceRow
	SkillNames  []string
}

// Store provides the reads the matching service needs.
type Store interface {
	// GetVolunteerPreferences returns ErrNotFound when the volunteer has no profile.
	GetVolunteerPreferences(ctx context.Context, volunteerID string) (PreferenceRow, error)

	// GetVolunteerSkillNames returns the volunteer's skill names; unknown ids yield an empty list.
	GetVolunteerSkillNames(ctx context.Context, volunteerID string) ([]string, error)

	// ListEventsWithSkills returns every event with its required skill names.
	ListEventsWithSkills(ctx context.Context) ([]EventRow, error)
}

// Writer upserts volunteers and events. Used for seeding and tests.
type Writer interface {
	PutVolunteer(ctx context.Context, rec VolunteerRecord) error
	PutEvent(ctx context.Context, row EventRow) error
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func validateVolunteer(rec VolunteerRecord) error {
	if rec.Preferences.VolunteerID == "" {
		return ErrInvalidRow
	}
	return nil
}

func validateEvent(row EventRow) error {
	if row.ID == "" || row.Title == "" {
		return ErrInvalidRow
	}
	return nil
}
