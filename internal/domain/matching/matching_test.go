package matching_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/okian/eventmatch/internal/domain/matching"
	"github.com/okian/eventmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMatchByLocation(t *testing.T) {
	Convey("Given location matching", t, func() {
		prefs := model.VolunteerPreferences{PreferredLocations: []string{"Houston", "Katy"}}

		Convey("When a preferred city appears in the address", func() {
			So(matching.MatchByLocation(prefs, model.Event{Location: "123 Houston TX"}), ShouldEqual, 1)
			So(matching.MatchByLocation(prefs, model.Event{Location: "  500 Main St, KATY, tx "}), ShouldEqual, 1)
		})

		Convey("When no preferred city appears", func() {
			So(matching.MatchByLocation(prefs, model.Event{Location: "1 Dallas Pkwy"}), ShouldEqual, 0)
		})

		Convey("When data is missing", func() {
			So(matching.MatchByLocation(model.VolunteerPreferences{}, model.Event{Location: "Houston"}), ShouldEqual, 0)
			So(matching.MatchByLocation(prefs, model.Event{}), ShouldEqual, 0)
			So(matching.MatchByLocation(model.VolunteerPreferences{PreferredLocations: []string{"  "}}, model.Event{Location: "Houston"}), ShouldEqual, 0)
		})
	})
}

func TestMatchBySkills(t *testing.T) {
	Convey("Given skill matching", t, func() {
		Convey("When half of the required skills are covered", func() {
			prefs := model.VolunteerPreferences{Skills: []string{"Cooking"}}
			event := model.Event{SkillsNeeded: []string{"cooking", "driving"}}
			So(matching.MatchBySkills(prefs, event), ShouldEqual, 0.5)
		})

		Convey("When the fraction needs rounding", func() {
			prefs := model.VolunteerPreferences{Skills: []string{"a"}}
			event := model.Event{SkillsNeeded: []string{"a", "b", "c"}}
			So(matching.MatchBySkills(prefs, event), ShouldEqual, 0.33)

			prefs.Skills = []string{"a", "b"}
			So(matching.MatchBySkills(prefs, event), ShouldEqual, 0.67)
		})

		Convey("When the volunteer has extra unrelated skills", func() {
			prefs := model.VolunteerPreferences{Skills: []string{"cooking", "driving", "first aid", "juggling"}}
			event := model.Event{SkillsNeeded: []string{"Driving"}}
			So(matching.MatchBySkills(prefs, event), ShouldEqual, 1)
		})

		Convey("When required skills contain duplicates", func() {
			prefs := model.VolunteerPreferences{Skills: []string{"cooking"}}
			event := model.Event{SkillsNeeded: []string{"Cooking", "cooking ", "driving"}}
			So(matching.MatchBySkills(prefs, event), ShouldEqual, 0.5)
		})

		Convey("When casing and order differ", func() {
			a := matching.MatchBySkills(
				model.VolunteerPreferences{Skills: []string{"TEACHING", "cooking"}},
				model.Event{SkillsNeeded: []string{"Cooking", "Driving", "teaching"}},
			)
			b := matching.MatchBySkills(
				model.VolunteerPreferences{Skills: []string{"Cooking", "teaching"}},
				model.Event{SkillsNeeded: []string{"teaching", "cooking", "DRIVING"}},
			)
			So(a, ShouldEqual, b)
			So(a, ShouldEqual, 0.67)
		})

		Convey("When data is missing", func() {
			So(matching.MatchBySkills(model.VolunteerPreferences{}, model.Event{SkillsNeeded: []string{"a"}}), ShouldEqual, 0)
			So(matching.MatchBySkills(model.VolunteerPreferences{Skills: []string{"a"}}, model.Event{}), ShouldEqual, 0)
			So(matching.MatchBySkills(model.VolunteerPreferences{Skills: []string{"a"}}, model.Event{SkillsNeeded: []string{}}), ShouldEqual, 0)
			So(matching.MatchBySkills(model.VolunteerPreferences{Skills: []string{"a"}}, model.Event{SkillsNeeded: []string{" "}}), ShouldEqual, 0)
		})
	})
}

func TestMatchByDate(t *testing.T) {
	Convey("Given date matching", t, func() {
		day := time.Date(2025, time.November, 2, 0, 0, 0, 0, time.UTC)

		Convey("When the event date is a preferred date", func() {
			prefs := model.VolunteerPreferences{PreferredDates: []any{"2025-12-01", day}}
			So(matching.MatchByDate(prefs, model.Event{Date: "2025-11-02"}), ShouldEqual, 1)
			So(matching.MatchByDate(prefs, model.Event{Date: "25-12-01"}), ShouldEqual, 1)
			So(matching.MatchByDate(prefs, model.Event{Date: &day}), ShouldEqual, 1)
		})

		Convey("When it is not", func() {
			prefs := model.VolunteerPreferences{PreferredDates: []any{"2025-12-01"}}
			So(matching.MatchByDate(prefs, model.Event{Date: "2025-11-02"}), ShouldEqual, 0)
		})

		Convey("When unparseable strings are equal", func() {
			prefs := model.VolunteerPreferences{PreferredDates: []any{"weekends"}}
			So(matching.MatchByDate(prefs, model.Event{Date: " weekends "}), ShouldEqual, 1)
		})

		Convey("When data is missing", func() {
			So(matching.MatchByDate(model.VolunteerPreferences{}, model.Event{Date: "2025-11-02"}), ShouldEqual, 0)
			So(matching.MatchByDate(model.VolunteerPreferences{PreferredDates: []any{"2025-11-02"}}, model.Event{}), ShouldEqual, 0)
			So(matching.MatchByDate(model.VolunteerPreferences{PreferredDates: []any{nil}}, model.Event{Date: ""}), ShouldEqual, 0)
		})
	})
}

func TestTotalMatchPercentage(t *testing.T) {
	Convey("Given the weighted aggregate", t, func() {
		So(matching.TotalMatchPercentage(1, 0.5, 1), ShouldEqual, 80)
		So(matching.TotalMatchPercentage(1.0/3, 0, 0), ShouldEqual, 13)
		So(matching.TotalMatchPercentage(1, 1, 1), ShouldEqual, 100)
		So(matching.TotalMatchPercentage(0, 0, 0), ShouldEqual, 0)
		So(matching.TotalMatchPercentage(0, 0, 1), ShouldEqual, 20)
		So(matching.TotalMatchPercentage(0, 0.33, 0), ShouldEqual, 13)

		Convey("When inputs are out of range the result is still clamped", func() {
			So(matching.TotalMatchPercentage(5, 5, 5), ShouldEqual, 100)
			So(matching.TotalMatchPercentage(-1, -1, -1), ShouldEqual, 0)
		})
	})
}

func TestRankEventsByMatch(t *testing.T) {
	Convey("Given a volunteer and a list of events", t, func() {
		user := model.VolunteerPreferences{
			PreferredLocations: []string{"Houston"},
			Skills:             []string{"Cooking", "Driving"},
			PreferredDates:     []any{"2025-11-02"},
		}
		noMatch := model.Event{ID: "1", Title: "NoMatch", Location: "Austin", SkillsNeeded: []string{"welding"}, Date: "2025-01-01"}
		perfect := model.Event{ID: "2", Title: "PerfectMatch", Location: "10 Main St Houston", SkillsNeeded: []string{"cooking", "driving"}, Date: "2025-11-02"}
		skillsOnly := model.Event{ID: "3", Title: "SkillsOnly", Location: "Dallas", SkillsNeeded: []string{"cooking"}, Date: "2024-01-01"}

		Convey("When ranking", func() {
			ranked := matching.RankEventsByMatch(user, []model.Event{noMatch, perfect, skillsOnly})

			Convey("Then events are ordered by percentage", func() {
				So(len(ranked), ShouldEqual, 3)
				So(ranked[0].Title, ShouldEqual, "PerfectMatch")
				So(ranked[0].MatchPercentage, ShouldEqual, 100)
				So(ranked[1].Title, ShouldEqual, "SkillsOnly")
				So(ranked[1].MatchPercentage, ShouldEqual, 40)
				So(ranked[2].Title, ShouldEqual, "NoMatch")
				So(ranked[2].MatchPercentage, ShouldEqual, 0)
			})
		})

		Convey("When percentages tie", func() {
			events := []model.Event{
				{ID: "a", Title: "Zoo cleanup"},
				{ID: "b", Name: "Beach day"},
				{ID: "c", Title: "apple picking"},
				{ID: "d"},
				{ID: "e", Title: "Art class"},
			}
			ranked := matching.RankEventsByMatch(user, events)

			Convey("Then the sort key ascends using byte order", func() {
				keys := make([]string, len(ranked))
				for i, r := range ranked {
					keys[i] = r.SortKey()
				}
				So(keys, ShouldResemble, []string{"", "Art class", "Beach day", "Zoo cleanup", "apple picking"})
			})
		})

		Convey("When the input is empty", func() {
			So(matching.RankEventsByMatch(user, nil), ShouldBeEmpty)
		})

		Convey("When the result is modified", func() {
			events := []model.Event{perfect}
			ranked := matching.RankEventsByMatch(user, events)
			ranked[0].SkillsNeeded[0] = "changed"
			ranked[0].Title = "changed"

			Convey("Then the input events are untouched", func() {
				So(events[0].SkillsNeeded[0], ShouldEqual, "cooking")
				So(events[0].Title, ShouldEqual, "PerfectMatch")
			})
		})
	})
}

func TestRankEventsByMatchProperties(t *testing.T) {
	Convey("Given randomly generated volunteers and events", t, func() {
		rng := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic test data
		cities := []string{"Houston", "Katy", "Austin", "Dallas", "El Paso"}
		skills := []string{"cooking", "Driving", "TEACHING", "first aid", "carpentry"}
		dates := []string{"2025-11-02", "25-11-03", "2025-11-04", "not a date", ""}

		pick := func(pool []string, n int) []string {
			out := make([]string, 0, n)
			for i := 0; i < n; i++ {
				out = append(out, pool[rng.Intn(len(pool))])
			}
			return out
		}

		for round := 0; round < 50; round++ {
			prefs := model.VolunteerPreferences{
				PreferredLocations: pick(cities, rng.Intn(3)),
				Skills:             pick(skills, rng.Intn(4)),
			}
			for _, d := range pick(dates, rng.Intn(3)) {
				prefs.PreferredDates = append(prefs.PreferredDates, d)
			}
			events := make([]model.Event, rng.Intn(12))
			for i := range events {
				events[i] = model.Event{
					ID:           fmt.Sprintf("e%d", i),
					Title:        fmt.Sprintf("Event %d", rng.Intn(5)),
					Location:     "1 Main St " + cities[rng.Intn(len(cities))],
					SkillsNeeded: pick(skills, rng.Intn(4)),
					Date:         dates[rng.Intn(len(dates))],
				}
			}
			snapshot := make([]model.Event, len(events))
			for i, e := range events {
				snapshot[i] = e.Clone()
			}

			first := matching.RankEventsByMatch(prefs, events)
			second := matching.RankEventsByMatch(prefs, events)

			So(first, ShouldResemble, second)
			So(events, ShouldResemble, snapshot)
			So(len(first), ShouldEqual, len(events))

			seen := map[string]int{}
			for _, r := range first {
				seen[r.ID]++
				So(r.MatchPercentage, ShouldBeBetweenOrEqual, 0, 100)
			}
			for _, e := range events {
				So(seen[e.ID], ShouldEqual, 1)
			}

			for i := 0; i+1 < len(first); i++ {
				So(first[i].MatchPercentage, ShouldBeGreaterThanOrEqualTo, first[i+1].MatchPercentage)
				if first[i].MatchPercentage == first[i+1].MatchPercentage {
					So(first[i].SortKey() <= first[i+1].SortKey(), ShouldBeTrue)
				}
			}

			for _, e := range events {
				So(matching.MatchByLocation(prefs, e), ShouldBeIn, []float64{0, 1})
				So(matching.MatchByDate(prefs, e), ShouldBeIn, []float64{0, 1})
				So(matching.MatchBySkills(prefs, e), ShouldBeBetweenOrEqual, 0.0, 1.0)
			}
		}
	})
}
