package loadtest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/eventmatch/internal/domain/types"
)

// ErrOrder reports a response that breaks the ranking order.
var ErrOrder = errors.New("ranking order violated")

// CheckOrder verifies scores lie in [0,100] and entries are sorted by score
// descending, then title ascending.
func CheckOrder(matches []types.Match) error {
	for i, m := range matches {
		if m.MatchScore < 0 || m.MatchScore > 100 {
			return fmt.Errorf("%w: %s has score %d", ErrOrder, m.ID, m.MatchScore)
		}
		if i == 0 {
			continue
		}
		prev := matches[i-1]
		switch {
		case prev.MatchScore < m.MatchScore:
			return fmt.Errorf("%w: %s (%d) before %s (%d)", ErrOrder, prev.ID, prev.MatchScore, m.ID, m.MatchScore)
		case prev.MatchScore == m.MatchScore && strings.Compare(prev.Title, m.Title) > 0:
			return fmt.Errorf("%w: %q before %q at score %d", ErrOrder, prev.Title, m.Title, m.MatchScore)
		}
	}
	return nil
}
