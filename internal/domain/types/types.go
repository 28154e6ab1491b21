// Package types contains the wire types shared by the service and the HTTP API.
package types

// Match is one ranked event as returned by GET /matches/{volunteerId}.
type Match struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Location     string   `json:"location"`
	Date         string   `json:"date"` // YYYY-MM-DD, or "" when the event has no date
	SkillsNeeded []string `json:"skillsNeeded"`
	MatchScore   int      `json:"matchScore"`
	Description  string   `json:"description,omitempty"`
	Urgency      string   `json:"urgency,omitempty"`
}
