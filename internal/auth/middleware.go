package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/medlawhq/medlaw-gateway/pkg/domain"
)

// UserHeader is the development identity-override header.
const UserHeader = "X-User"

const bearerPrefix = "Bearer "

// Middleware authenticates requests on the protected route group.
type Middleware struct {
	verifier        TokenVerifier
	allowUserHeader bool
	logger          *slog.Logger
}

// NewMiddleware creates the authentication middleware. allowUserHeader
// enables the unverified X-User bypass and must only be set from explicit
// configuration, never defaulted on.
func NewMiddleware(verifier TokenVerifier, allowUserHeader bool, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{
		verifier:        verifier,
		allowUserHeader: allowUserHeader,
		logger:          logger,
	}
}

// Wrap wraps an HTTP handler with bearer-token authentication.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)

		if token == "" && m.allowUserHeader {
			if user := r.Header.Get(UserHeader); user != "" {
				// Unverified dev bypass, gated by startup configuration.
				ctx := WithIdentity(r.Context(), domain.Identity{ID: user})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		if token == "" {
			m.reject(w, r)
			return
		}

		identity, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			m.logger.Warn("Authentication failed",
				"path", r.URL.Path,
				"method", r.Method,
				"error", err,
			)
			m.reject(w, r)
			return
		}

		ctx := WithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// reject sends the uniform 401 response. Rejection reasons are not
// differentiated to the caller.
func (m *Middleware) reject(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(domain.ErrorResponse{Error: "Unauthorized"})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, bearerPrefix) {
		return header[len(bearerPrefix):]
	}
	return ""
}
