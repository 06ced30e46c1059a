package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/medlawhq/medlaw-gateway/pkg/domain"
)

// Claims carried by locally issued tokens.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies HS256 tokens signed with a shared secret. It backs
// offline/dev deployments where no external identity provider is reachable.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for the given shared secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token, mapping its subject and email
// claims to an Identity. All failures resolve to domain.ErrUnauthenticated.
func (v *JWTVerifier) Verify(_ context.Context, token string) (domain.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return domain.Identity{}, fmt.Errorf("%w: token rejected", domain.ErrUnauthenticated)
	}
	if claims.Subject == "" {
		return domain.Identity{}, fmt.Errorf("%w: token missing subject", domain.ErrUnauthenticated)
	}

	return domain.Identity{ID: claims.Subject, Email: claims.Email}, nil
}

// IssueToken signs a short-lived HS256 token for the given identity.
// This is the dev-mode counterpart to Verify; production callers obtain
// tokens from the real identity provider.
func (v *JWTVerifier) IssueToken(id domain.Identity, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	claims := Claims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
