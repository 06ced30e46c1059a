package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlawhq/medlaw-gateway/pkg/domain"
)

func TestJWTVerifier_IssueAndVerify(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token, err := v.IssueToken(domain.Identity{ID: "user-1", Email: "u@example.com"}, time.Hour)
	require.NoError(t, err)

	identity, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.ID)
	assert.Equal(t, "u@example.com", identity.Email)
}

func TestJWTVerifier_WrongSecret(t *testing.T) {
	issuer := NewJWTVerifier("secret-a")
	verifier := NewJWTVerifier("secret-b")

	token, err := issuer.IssueToken(domain.Identity{ID: "user-1"}, time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
}

func TestJWTVerifier_ExpiredToken(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token, err := v.IssueToken(domain.Identity{ID: "user-1"}, -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
}

func TestJWTVerifier_Garbage(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	_, err := v.Verify(context.Background(), "not-a-jwt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
}
