package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlawhq/medlaw-gateway/internal/auth"
	"github.com/medlawhq/medlaw-gateway/internal/governance"
	"github.com/medlawhq/medlaw-gateway/internal/llm"
	"github.com/medlawhq/medlaw-gateway/internal/retrieval"
	"github.com/medlawhq/medlaw-gateway/pkg/config"
	"github.com/medlawhq/medlaw-gateway/pkg/domain"
	"github.com/medlawhq/medlaw-gateway/pkg/storage"
	"github.com/medlawhq/medlaw-gateway/pkg/telemetry"
)

const testToken = "good-token"

func staticVerifier() auth.TokenVerifier {
	return auth.VerifierFunc(func(_ context.Context, token string) (domain.Identity, error) {
		if token == testToken {
			return domain.Identity{ID: "user-1", Email: "user-1@example.com"}, nil
		}
		return domain.Identity{}, domain.ErrUnauthenticated
	})
}

// newTestHandler assembles a gateway with in-memory dependencies. Mutators
// run before the auth middleware and router are built, so tests can adjust
// config and swap dependencies.
func newTestHandler(t *testing.T, mutators ...func(cfg *config.Config, opts *Options)) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Default()
	cfg.Auth.AllowUserHeader = true

	opts := Options{
		Config:     cfg,
		Logger:     logger,
		Dispatcher: llm.NewDispatcher(llm.NewStubProvider(), logger),
		Bridge:     retrieval.NewBridge("http://127.0.0.1:1", time.Second, logger),
		Store:      storage.NewMemoryStore(),
		Metrics:    telemetry.NewMetrics(),
	}
	for _, m := range mutators {
		m(cfg, &opts)
	}
	if opts.Limiter == nil {
		opts.Limiter = governance.NewRateLimiter(governance.RateLimiterConfig{
			Window:      cfg.RateLimit.Window,
			MaxRequests: cfg.RateLimit.MaxRequests,
		})
	}
	if opts.Auth == nil {
		opts.Auth = auth.NewMiddleware(staticVerifier(), cfg.Auth.AllowUserHeader, logger)
	}

	return New(opts).Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthIsPublic(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/health", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "MedLaw Gateway", body["service"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestUnknownRoutesReturnUniformNotFound(t *testing.T) {
	h := newTestHandler(t)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := doJSON(t, h, method, "/no/such/route", nil, nil)
		require.Equal(t, http.StatusNotFound, rec.Code, method)
		assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String(), method)
	}
}

func TestWrongMethodReturnsNotFound(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodDelete, "/health", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
}

func TestProtectedRouteRejectsAnonymous(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/user/profile", nil, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestProtectedRouteRejectsBadToken(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/user/profile", nil, map[string]string{
		"Authorization": "Bearer bogus",
	})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestProtectedRouteAcceptsBearerToken(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/user/profile", nil, map[string]string{
		"Authorization": "Bearer " + testToken,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "user-1", body["uid"])
	assert.Equal(t, "user-1@example.com", body["email"])
}

func TestUserHeaderBypass(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/user/profile", nil, map[string]string{
		auth.UserHeader: "dev-alice",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev-alice", decodeBody(t, rec)["uid"])
}

func TestUserHeaderIgnoredWhenDisabled(t *testing.T) {
	h := newTestHandler(t, func(cfg *config.Config, _ *Options) {
		cfg.Auth.AllowUserHeader = false
	})

	rec := doJSON(t, h, http.MethodGet, "/api/user/profile", nil, map[string]string{
		auth.UserHeader: "dev-alice",
	})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestBearerTokenTakesPrecedenceOverUserHeader(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/user/profile", nil, map[string]string{
		"Authorization": "Bearer " + testToken,
		auth.UserHeader: "dev-alice",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", decodeBody(t, rec)["uid"])
}

func TestRateLimitExceeded(t *testing.T) {
	const maxRequests = 3
	h := newTestHandler(t, func(_ *config.Config, opts *Options) {
		opts.Limiter = governance.NewRateLimiter(governance.RateLimiterConfig{
			Window:      time.Minute,
			MaxRequests: maxRequests,
		})
	})

	for i := 0; i < maxRequests; i++ {
		rec := doJSON(t, h, http.MethodGet, "/health", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := doJSON(t, h, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Too many requests, please try again later"}`, rec.Body.String())
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestBodyLimitRejectsOversizedPayload(t *testing.T) {
	h := newTestHandler(t, func(cfg *config.Config, _ *Options) {
		cfg.Server.MaxBodyBytes = 64
	})

	payload := map[string]string{"prompt": strings.Repeat("x", 256)}
	rec := doJSON(t, h, http.MethodPost, "/api/llm/generate", payload, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid JSON body"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t, func(cfg *config.Config, _ *Options) {
		cfg.Server.CORSOrigin = "https://app.medlaw.example"
	})

	rec := doJSON(t, h, http.MethodOptions, "/api/llm/generate", nil, nil)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.medlaw.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-User")
}

func TestSecurityHeadersOnEveryResponse(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/health", nil, nil)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRequestIDAssignedAndEchoed(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/health", nil, nil)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	rec = doJSON(t, h, http.MethodGet, "/health", nil, map[string]string{
		RequestIDHeader: "req-123",
	})
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t)

	// Generate some traffic first.
	doJSON(t, h, http.MethodGet, "/health", nil, nil)

	rec := doJSON(t, h, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gateway_http_requests_total")
}

func TestShutdownWithoutStart(t *testing.T) {
	g := New(Options{Config: config.Default()})
	assert.NoError(t, g.Shutdown(context.Background()))
}
