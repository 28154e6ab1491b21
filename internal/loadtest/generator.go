package loadtest

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/okian/eventmatch/internal/adapters/repository"
	"github.com/okian/eventmatch/internal/domain/normalize"
)

var (
	cities = []string{"Houston", "Katy", "Dallas", "Austin", "San Antonio", "El Paso", "Sugar Land"}
	skills = []string{"Cooking", "Driving", "First Aid", "Teaching", "Carpentry", "Translation", "Logistics", "Fundraising"}
	kinds  = []string{"Food drive", "Park cleanup", "Tutoring", "Shelter support", "Blood drive", "Home repair"}
	urgent = []string{"Low", "Medium", "High"}
)

const (
	maxSkillsPerEntry = 3
	dateSpreadDays    = 30
)

// GenerateSeed builds a deterministic random fixture: the same seed value
// always yields the same volunteers and events. Volunteer ids are vol-1..vol-N.
func GenerateSeed(volunteers, events int, seed uint64, base time.Time) *repository.Seed {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := &repository.Seed{
		Volunteers: make([]repository.SeedVolunteer, volunteers),
		Events:     make([]repository.SeedEvent, events),
	}
	for i := range out.Volunteers {
		out.Volunteers[i] = repository.SeedVolunteer{
			ID:            fmt.Sprintf("vol-%d", i+1),
			City:          pick(r, cities),
			PreferredDate: randomDate(r, base),
			Skills:        pickSome(r, skills),
		}
	}
	for i := range out.Events {
		city := pick(r, cities)
		out.Events[i] = repository.SeedEvent{
			ID:          fmt.Sprintf("evt-%d", i+1),
			Title:       fmt.Sprintf("%s #%d", pick(r, kinds), i+1),
			Location:    fmt.Sprintf("%d Main St, %s TX", r.IntN(9000)+100, city),
			Date:        randomDate(r, base),
			Description: "Generated for load testing",
			Urgency:     pick(r, urgent),
			Skills:      pickSome(r, skills),
		}
	}
	return out
}

// VolunteerIDs lists the ids of a seed's volunteers.
func VolunteerIDs(seed *repository.Seed) []string {
	ids := make([]string, len(seed.Volunteers))
	for i, v := range seed.Volunteers {
		ids[i] = v.ID
	}
	return ids
}

func pick(r *rand.Rand, from []string) string {
	return from[r.IntN(len(from))]
}

func pickSome(r *rand.Rand, from []string) []string {
	n := r.IntN(maxSkillsPerEntry) + 1
	perm := r.Perm(len(from))
	out := make([]string, n)
	for i := range out {
		out[i] = from[perm[i]]
	}
	return out
}

func randomDate(r *rand.Rand, base time.Time) string {
	return base.AddDate(0, 0, r.IntN(dateSpreadDays)).Format(normalize.ISODate)
}
