package gateway

import (
	"fmt"
	"net/http"

	"github.com/medlawhq/medlaw-gateway/internal/retrieval"
	"github.com/medlawhq/medlaw-gateway/pkg/domain"
)

func (g *Gateway) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.handleNotFound(w, r)
		return
	}

	var req retrieval.AnalyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		g.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrValidation, err), "invalid JSON body")
		return
	}

	result, err := g.bridge.Analyze(r.Context(), req)
	if err != nil {
		if domain.IsUpstream(err) {
			g.writeError(w, r, err, "Failed to call retrieval service")
		} else {
			g.writeError(w, r, err, "query is required")
		}
		return
	}

	g.writeJSON(w, http.StatusOK, result)
}

func (g *Gateway) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.handleNotFound(w, r)
		return
	}

	if err := g.bridge.Upload(r.Context()); err != nil {
		g.writeError(w, r, err, "Upload not implemented in backend stub. Use pipeline ingestion directly.")
		return
	}

	g.writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}
