// Package auth authenticates inbound requests against an identity provider
// and attaches the resolved caller identity to the request context.
package auth

import (
	"context"

	"github.com/medlawhq/medlaw-gateway/pkg/domain"
)

// TokenVerifier validates a bearer token and resolves the caller identity.
// Implementations must bound their work with the supplied context.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
}

// VerifierFunc adapts a function to the TokenVerifier interface.
type VerifierFunc func(ctx context.Context, token string) (domain.Identity, error)

// Verify implements TokenVerifier.
func (f VerifierFunc) Verify(ctx context.Context, token string) (domain.Identity, error) {
	return f(ctx, token)
}
