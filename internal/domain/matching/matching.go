// Package matching scores events against a volunteer's preferences and ranks
// them. Everything here is pure: no I/O, no shared state, safe for concurrent use.
package matching

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/internal/domain/normalize"
)

// Criterion weights. They sum to 1 and stay fixed even when a criterion has no data.
const (
	LocationWeight = 0.4
	SkillsWeight   = 0.4
	DateWeight     = 0.2
)

const maxPercentage = 100

// MatchByLocation returns 1 when the event location mentions any preferred
// city, 0 otherwise. Locations are free-text addresses, so the test is
// substring containment on normalized strings.
func MatchByLocation(prefs model.VolunteerPreferences, event model.Event) float64 {
	if len(prefs.PreferredLocations) == 0 {
		return 0
	}
	location := normalize.String(event.Location)
	if location == "" {
		return 0
	}
	for _, city := range prefs.PreferredLocations {
		c := normalize.String(city)
		if c != "" && strings.Contains(location, c) {
			return 1
		}
	}
	return 0
}

// MatchBySkills returns the fraction of the event's required skills the
// volunteer has, rounded to two decimals. Extra volunteer skills never lower
// the score.
func MatchBySkills(prefs model.VolunteerPreferences, event model.Event) float64 {
	if len(prefs.Skills) == 0 || len(event.SkillsNeeded) == 0 {
		return 0
	}
	required := toSet(event.SkillsNeeded)
	if len(required) == 0 {
		return 0
	}
	have := toSet(prefs.Skills)
	matched := 0
	for skill := range required {
		if _, ok := have[skill]; ok {
			matched++
		}
	}
	return roundTo(float64(matched)/float64(len(required)), 2)
}

// MatchByDate returns 1 when the event date is one of the preferred dates.
func MatchByDate(prefs model.VolunteerPreferences, event model.Event) float64 {
	if len(prefs.PreferredDates) == 0 {
		return 0
	}
	eventDate := normalize.Date(event.Date)
	if eventDate == "" {
		return 0
	}
	for _, d := range prefs.PreferredDates {
		if normalize.Date(d) == eventDate {
			return 1
		}
	}
	return 0
}

// TotalMatchPercentage combines the three criterion scores, each in [0,1],
// into an integer percentage rounded half away from zero.
func TotalMatchPercentage(locScore, skillScore, dateScore float64) int {
	raw := LocationWeight*locScore + SkillsWeight*skillScore + DateWeight*dateScore
	pct := math.Round(raw * maxPercentage)
	switch {
	case math.IsNaN(pct), pct < 0:
		return 0
	case pct > maxPercentage:
		return maxPercentage
	}
	return int(pct)
}

// Score computes the match percentage of a single event.
func Score(prefs model.VolunteerPreferences, event model.Event) int {
	return TotalMatchPercentage(
		MatchByLocation(prefs, event),
		MatchBySkills(prefs, event),
		MatchByDate(prefs, event),
	)
}

// RankEventsByMatch scores every event and orders them by percentage
// descending, then by title (or name) ascending. The result has the same
// length as events and holds copies; events is left untouched.
func RankEventsByMatch(prefs model.VolunteerPreferences, events []model.Event) []model.MatchResult {
	results := make([]model.MatchResult, len(events))
	for i, e := range events {
		results[i] = model.MatchResult{
			Event:           e.Clone(),
			MatchPercentage: Score(prefs, e),
		}
	}
	slices.SortStableFunc(results, compareResults)
	return results
}

func compareResults(a, b model.MatchResult) int {
	if c := cmp.Compare(b.MatchPercentage, a.MatchPercentage); c != 0 {
		return c
	}
	return strings.Compare(a.SortKey(), b.SortKey())
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if n := normalize.String(v); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func roundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
