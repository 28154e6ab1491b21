package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/eventmatch/pkg/logger"
)

const (
	healthTimeout       = 2 * time.Second
	storeUnreachableMsg = "store unreachable"
)

// HealthDependencies defines what the health check needs.
type HealthDependencies interface {
	Ping(ctx context.Context) error
	Backend() string
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps HealthDependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps HealthDependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Error  string `json:"error,omitempty"`
}

// HandleHealth handles GET /healthz requests. It answers 503 when the store
// cannot be reached.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.deps.Ping(ctx); err != nil {
		logger.Get().Warn(r.Context(), "health check failed",
			logger.String("store", h.deps.Backend()),
			logger.Error(err),
		)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status: "unavailable",
			Store:  h.deps.Backend(),
			Error:  storeUnreachableMsg,
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Store: h.deps.Backend()})
}
