package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/medlawhq/medlaw-gateway/internal/auth"
	"github.com/medlawhq/medlaw-gateway/pkg/domain"
	"github.com/medlawhq/medlaw-gateway/pkg/storage"
)

const orgFormCollection = "orgForms"

func (g *Gateway) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		g.handleNotFound(w, r)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		g.writeError(w, r, domain.ErrUnauthenticated, "Unauthorized")
		return
	}

	var orgID any
	doc, err := g.store.Get(r.Context(), orgFormCollection, identity.ID)
	switch {
	case err == nil:
		orgID = doc["organizationId"]
	case errors.Is(err, storage.ErrDocumentNotFound):
		orgID = nil
	default:
		g.writeError(w, r, err, "failed to load profile")
		return
	}

	g.writeJSON(w, http.StatusOK, map[string]any{
		"uid":            identity.ID,
		"email":          identity.Email,
		"organizationId": orgID,
	})
}

type orgFormRequest struct {
	Name             string   `json:"name"`
	Size             string   `json:"size"`
	DeviceCategories []string `json:"deviceCategories"`
	Regulations      []string `json:"regulations"`
}

func (g *Gateway) handleOrgForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.handleNotFound(w, r)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		g.writeError(w, r, domain.ErrUnauthenticated, "Unauthorized")
		return
	}

	var req orgFormRequest
	if err := decodeJSON(r, &req); err != nil {
		g.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrValidation, err), "invalid JSON body")
		return
	}

	orgID := "org_" + uuid.NewString()
	doc := storage.Document{
		"organizationId":   orgID,
		"name":             req.Name,
		"size":             req.Size,
		"deviceCategories": req.DeviceCategories,
		"regulations":      req.Regulations,
	}
	if err := g.store.Put(r.Context(), orgFormCollection, identity.ID, doc); err != nil {
		g.writeError(w, r, err, "failed to save organization form")
		return
	}

	g.writeJSON(w, http.StatusOK, map[string]string{
		"organizationId": orgID,
		"status":         "saved",
	})
}
