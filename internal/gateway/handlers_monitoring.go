package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/medlawhq/medlaw-gateway/internal/auth"
	"github.com/medlawhq/medlaw-gateway/pkg/domain"
	"github.com/medlawhq/medlaw-gateway/pkg/storage"
)

const preferencesCollection = "preferences"

// handlePreferences reads or replaces the caller's monitoring preferences.
// The document shape is owned by the frontend; the gateway stores it opaquely.
func (g *Gateway) handlePreferences(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		g.writeError(w, r, domain.ErrUnauthenticated, "Unauthorized")
		return
	}

	switch r.Method {
	case http.MethodGet:
		doc, err := g.store.Get(r.Context(), preferencesCollection, identity.ID)
		if errors.Is(err, storage.ErrDocumentNotFound) {
			g.writeJSON(w, http.StatusOK, map[string]any{})
			return
		}
		if err != nil {
			g.writeError(w, r, err, "failed to load preferences")
			return
		}
		g.writeJSON(w, http.StatusOK, doc)

	case http.MethodPost:
		var doc storage.Document
		if err := decodeJSON(r, &doc); err != nil {
			g.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrValidation, err), "invalid JSON body")
			return
		}
		if doc == nil {
			doc = storage.Document{}
		}
		if err := g.store.Put(r.Context(), preferencesCollection, identity.ID, doc); err != nil {
			g.writeError(w, r, err, "failed to save preferences")
			return
		}
		g.writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})

	default:
		g.handleNotFound(w, r)
	}
}
