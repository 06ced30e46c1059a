package auth

import (
	"context"

	"github.com/medlawhq/medlaw-gateway/pkg/domain"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityContextKey contextKey = "identity"

// WithIdentity returns a context carrying the caller identity.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext extracts the caller identity from the request context.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(domain.Identity)
	return id, ok
}
