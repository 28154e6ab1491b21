package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/eventmatch/internal/app"
	"github.com/okian/eventmatch/internal/domain/types"
	"github.com/okian/eventmatch/pkg/logger"
)

// MatchesDependencies defines the interface for match operations.
type MatchesDependencies interface {
	Matches(ctx context.Context, volunteerID string) ([]types.Match, error)
}

// MatchesHandler handles match requests.
type MatchesHandler struct {
	deps MatchesDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchesDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// HandleGetMatches handles GET /matches/{volunteerId} requests.
func (h *MatchesHandler) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_matches"

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	volunteerID := strings.TrimPrefix(r.URL.Path, "/matches/")

	matches, err := h.deps.Matches(r.Context(), volunteerID)
	if err != nil {
		h.fail(w, r, WrapKind(op, kindOf(err), err))
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (h *MatchesHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Error(r.Context(), "match request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	writeError(w, status, code, publicMessage(err))
}

func kindOf(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidVolunteerID):
		return ErrBadRequest
	case errors.Is(err, service.ErrNotFound):
		return ErrNotFound
	default:
		return ErrInternal
	}
}
