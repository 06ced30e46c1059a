package gateway

import (
	"fmt"
	"net/http"

	"github.com/medlawhq/medlaw-gateway/pkg/domain"
)

type tokenRequest struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// handleIssueToken exchanges an identity assertion for a short-lived local
// JWT. Dev-mode only: the endpoint is disabled unless a JWT secret is
// configured, and production callers obtain tokens from the real identity
// provider instead.
func (g *Gateway) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || g.issuer == nil {
		g.handleNotFound(w, r)
		return
	}

	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		g.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrValidation, err), "invalid JSON body")
		return
	}
	if req.UID == "" {
		g.writeError(w, r, fmt.Errorf("%w: uid missing", domain.ErrValidation), "uid is required")
		return
	}

	ttl := g.cfg.Auth.TokenTTL
	token, err := g.issuer.IssueToken(domain.Identity{ID: req.UID, Email: req.Email}, ttl)
	if err != nil {
		g.writeError(w, r, err, "token issuance failed")
		return
	}

	g.writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_in": int(ttl.Seconds()),
	})
}
