package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/medlawhq/medlaw-gateway/pkg/domain"
)

const defaultVerifyTimeout = 5 * time.Second

// RemoteVerifier verifies tokens against an external identity provider over
// HTTP. Every failure mode (bad token, timeout, provider outage) resolves to
// domain.ErrUnauthenticated so callers cannot distinguish verification
// internals; the underlying cause is logged instead.
type RemoteVerifier struct {
	verifyURL string
	client    *http.Client
	logger    *slog.Logger
}

// NewRemoteVerifier creates a verifier for the given verification endpoint.
func NewRemoteVerifier(verifyURL string, timeout time.Duration, logger *slog.Logger) *RemoteVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultVerifyTimeout
	}
	return &RemoteVerifier{
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Verify posts the token to the identity provider and maps the verified
// claims to an Identity.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (domain.Identity, error) {
	body, err := json.Marshal(verifyRequest{Token: token})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: encode verify request", domain.ErrUnauthenticated)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, bytes.NewReader(body))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: build verify request", domain.ErrUnauthenticated)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn("Identity provider unreachable", "error", err)
		return domain.Identity{}, fmt.Errorf("%w: identity provider unreachable", domain.ErrUnauthenticated)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.Debug("Token verification rejected", "status", resp.StatusCode)
		return domain.Identity{}, fmt.Errorf("%w: token rejected", domain.ErrUnauthenticated)
	}

	var claims verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		v.logger.Warn("Malformed verification response", "error", err)
		return domain.Identity{}, fmt.Errorf("%w: malformed verification response", domain.ErrUnauthenticated)
	}
	if claims.UID == "" {
		return domain.Identity{}, fmt.Errorf("%w: verification response missing uid", domain.ErrUnauthenticated)
	}

	return domain.Identity{ID: claims.UID, Email: claims.Email}, nil
}
