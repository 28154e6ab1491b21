// Package model contains domain models passed between layers.
package model

import (
	"slices"
	"time"
)

// VolunteerPreferences is what a volunteer told us about where, what and when
// they can help. Every field may be empty; scorers treat empty as "no match".
type VolunteerPreferences struct {
	PreferredLocations []string // city names, order irrelevant
	Skills             []string // skill names, compared case-insensitively
	PreferredDates     []any    // date-like values: string, time.Time, *time.Time or nil
}

// Event is a volunteering opportunity as seen by the matching engine.
type Event struct {
	ID           string
	Title        string   // display title, also the ranking tie-break key
	Name         string   // tie-break fallback when Title is empty
	Location     string   // free-text address
	SkillsNeeded []string // required skill names
	Date         any      // single date-like value
	Description  string
	Urgency      string
}

// SortKey returns the tie-break key: Title, else Name, else "".
func (e Event) SortKey() string {
	if e.Title != "" {
		return e.Title
	}
	return e.Name
}

// Clone returns a copy of e that shares no slices with it.
func (e Event) Clone() Event {
	c := e
	c.SkillsNeeded = slices.Clone(e.SkillsNeeded)
	if p, ok := e.Date.(*time.Time); ok && p != nil {
		t := *p
		c.Date = &t
	}
	return c
}

// MatchResult is an event copy annotated with its match percentage.
// It is computed per request and never persisted.
type MatchResult struct {
	Event
	MatchPercentage int // always within [0,100]
}
