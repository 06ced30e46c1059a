// Package gateway composes the HTTP surface of the MedLaw Gateway: the
// ordered middleware chain, the public and protected route groups, and the
// handlers that front the LLM dispatcher, the retrieval bridge, and the
// document store.
package gateway

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/medlawhq/medlaw-gateway/internal/auth"
	"github.com/medlawhq/medlaw-gateway/internal/governance"
	"github.com/medlawhq/medlaw-gateway/internal/llm"
	"github.com/medlawhq/medlaw-gateway/internal/retrieval"
	"github.com/medlawhq/medlaw-gateway/pkg/config"
	"github.com/medlawhq/medlaw-gateway/pkg/storage"
	"github.com/medlawhq/medlaw-gateway/pkg/telemetry"
)

// Options carries the dependencies for a Gateway.
type Options struct {
	Config     *config.Config
	Logger     *slog.Logger
	Limiter    *governance.RateLimiter
	Auth       *auth.Middleware
	Dispatcher *llm.Dispatcher
	Bridge     *retrieval.Bridge
	Store      storage.DocumentStore
	Metrics    *telemetry.Metrics
	// TokenIssuer enables POST /api/auth/token. Nil disables the endpoint.
	TokenIssuer *auth.JWTVerifier
}

// Gateway is the top-level HTTP composition.
type Gateway struct {
	cfg        *config.Config
	logger     *slog.Logger
	limiter    *governance.RateLimiter
	auth       *auth.Middleware
	dispatcher *llm.Dispatcher
	bridge     *retrieval.Bridge
	store      storage.DocumentStore
	metrics    *telemetry.Metrics
	issuer     *auth.JWTVerifier

	server *http.Server
}

// New creates a Gateway from its dependencies.
func New(opts Options) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		cfg:        opts.Config,
		logger:     logger,
		limiter:    opts.Limiter,
		auth:       opts.Auth,
		dispatcher: opts.Dispatcher,
		bridge:     opts.Bridge,
		store:      opts.Store,
		metrics:    opts.Metrics,
		issuer:     opts.TokenIssuer,
	}
}

// Router builds the full handler chain. Order: security headers, CORS,
// request id, observation, body cap, rate limiter, then routing. The rate
// limiter sits in front of authentication so unauthenticated floods are
// throttled too.
func (g *Gateway) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes.
	mux.HandleFunc("/health", g.handleHealth)
	mux.Handle("/metrics", g.metrics.Handler())
	mux.HandleFunc("/api/llm/generate", g.handleGenerate)
	mux.HandleFunc("/api/llm/classify", g.handleClassify)
	mux.HandleFunc("/api/llm/extract-entities", g.handleExtractEntities)
	mux.HandleFunc("/api/auth/token", g.handleIssueToken)

	// Protected routes.
	protected := http.NewServeMux()
	protected.HandleFunc("/api/user/profile", g.handleProfile)
	protected.HandleFunc("/api/user/orgForm", g.handleOrgForm)
	protected.HandleFunc("/api/dashboard/overview", g.handleDashboardOverview)
	protected.HandleFunc("/api/monitoring/preferences", g.handlePreferences)
	protected.HandleFunc("/api/rag/analyze", g.handleAnalyze)
	protected.HandleFunc("/api/rag/upload", g.handleUpload)
	protected.HandleFunc("/", g.handleNotFound)
	mux.Handle("/api/user/", g.auth.Wrap(protected))
	mux.Handle("/api/dashboard/", g.auth.Wrap(protected))
	mux.Handle("/api/monitoring/", g.auth.Wrap(protected))
	mux.Handle("/api/rag/", g.auth.Wrap(protected))

	// Everything else is a uniform 404.
	mux.HandleFunc("/", g.handleNotFound)

	var handler http.Handler = mux
	handler = g.rateLimit(handler)
	handler = g.bodyLimit(handler)
	handler = g.observe(handler)
	handler = g.requestID(handler)
	handler = g.cors(handler)
	handler = securityHeaders(handler)
	return handler
}

// Start binds the listener and serves in the background.
func (g *Gateway) Start(handler http.Handler) error {
	g.server = &http.Server{
		Handler:      handler,
		ReadTimeout:  g.cfg.Server.ReadTimeout,
		WriteTimeout: g.cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	listener, err := net.Listen("tcp", g.cfg.Server.ListenAddr)
	if err != nil {
		return err
	}

	// Log the actual resolved address (useful when addr is :0)
	g.logger.Info("Gateway listening", "addr", listener.Addr().String(), "provider", g.dispatcher.ProviderName())

	go func() {
		if err := g.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			g.logger.Error("Server failed", "error", err)
		}
	}()

	return nil
}

// Shutdown drains in-flight requests.
func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}
