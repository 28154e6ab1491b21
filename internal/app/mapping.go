package service

import (
	"strings"

	"github.com/okian/eventmatch/internal/adapters/repository"
	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/internal/domain/normalize"
	"github.com/okian/eventmatch/internal/domain/types"
)

// toPreferences turns the single-valued stored city and date into
// one-element sets. Missing values stay empty so they score 0.
func toPreferences(row repository.PreferenceRow, skills []string) model.VolunteerPreferences {
	var prefs model.VolunteerPreferences
	if row.PreferredCity != nil && strings.TrimSpace(*row.PreferredCity) != "" {
		prefs.PreferredLocations = []string{*row.PreferredCity}
	}
	if row.PreferredDate != nil {
		prefs.PreferredDates = []any{*row.PreferredDate}
	}
	prefs.Skills = skills
	return prefs
}

func toEvent(row repository.EventRow) model.Event {
	e := model.Event{
		ID:           row.ID,
		Title:        row.Title,
		Location:     row.Location,
		SkillsNeeded: row.SkillNames,
		Description:  row.Description,
		Urgency:      row.Urgency,
	}
	if row.Date != nil {
		e.Date = *row.Date
	}
	return e
}

func toMatch(r model.MatchResult) types.Match {
	skills := r.Event.SkillsNeeded
	if skills == nil {
		skills = []string{}
	}
	return types.Match{
		ID:           r.Event.ID,
		Title:        r.Event.Title,
		Location:     r.Event.Location,
		Date:         normalize.Date(r.Event.Date),
		SkillsNeeded: skills,
		MatchScore:   r.MatchPercentage,
		Description:  r.Event.Description,
		Urgency:      r.Event.Urgency,
	}
}
