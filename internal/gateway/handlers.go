package gateway

import (
	"net/http"
	"time"

	"github.com/medlawhq/medlaw-gateway/pkg/domain"
)

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		g.handleNotFound(w, r)
		return
	}
	g.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "MedLaw Gateway",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleNotFound is the uniform fallback for unmatched routes, regardless of
// HTTP method.
func (g *Gateway) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	g.writeJSON(w, http.StatusNotFound, domain.ErrorResponse{Error: "Not found"})
}
