package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/medlawhq/medlaw-gateway/internal/governance"
	"github.com/medlawhq/medlaw-gateway/pkg/domain"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const requestIDContextKey contextKey = "requestID"

// RequestIDFromContext extracts the request id from the request context.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey).(string)
	return id, ok
}

// securityHeaders sets the baseline response headers on every request.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

// cors applies the configured allowed origin and answers preflights.
func (g *Gateway) cors(next http.Handler) http.Handler {
	origin := g.cfg.Server.CORSOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestID assigns a correlation id to each request, honouring one supplied
// by a trusted upstream proxy.
func (g *Gateway) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// observe logs each completed request and records HTTP metrics.
func (g *Gateway) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		id, _ := RequestIDFromContext(r.Context())
		g.logger.Info("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", duration.Milliseconds(),
			"request_id", id,
		)
		g.metrics.RecordRequest(r.Method, r.URL.Path, rec.status, duration)
	})
}

// bodyLimit caps request bodies before they reach any handler. Oversized
// bodies fail at decode time with a 400.
func (g *Gateway) bodyLimit(next http.Handler) http.Handler {
	limit := g.cfg.Server.MaxBodyBytes
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimit throttles by transport address (or trusted proxy header),
// independent of identity. It runs before authentication.
func (g *Gateway) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := g.limiter.ClientKey(r)
		allowed, remaining, reset := g.limiter.Allow(key)

		governance.WriteRateLimitHeaders(w, g.limiter.Limit(), remaining, reset)

		if !allowed {
			governance.WriteRetryAfter(w, reset)
			g.metrics.RecordRateLimited()
			g.writeJSON(w, http.StatusTooManyRequests, domain.ErrorResponse{
				Error: "Too many requests, please try again later",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
