// Package main is the entry point for the medlaw-gateway binary.
// It wires configuration, authentication, the LLM dispatcher, the retrieval
// bridge, and the HTTP gateway, then serves until interrupted.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/medlawhq/medlaw-gateway/internal/auth"
	"github.com/medlawhq/medlaw-gateway/internal/gateway"
	"github.com/medlawhq/medlaw-gateway/internal/governance"
	"github.com/medlawhq/medlaw-gateway/internal/llm"
	"github.com/medlawhq/medlaw-gateway/internal/retrieval"
	"github.com/medlawhq/medlaw-gateway/pkg/config"
	"github.com/medlawhq/medlaw-gateway/pkg/domain"
	"github.com/medlawhq/medlaw-gateway/pkg/logging"
	"github.com/medlawhq/medlaw-gateway/pkg/storage"
	"github.com/medlawhq/medlaw-gateway/pkg/telemetry"
)

const defaultLogLevel = "info"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "medlaw-gateway",
		Short: "HTTP gateway for the MedLaw regulatory assistant",
		Long: `The gateway authenticates callers, rate-limits by client, dispatches LLM
requests to the configured provider, and proxies analysis queries to the
retrieval service.

Example:
  medlaw-gateway --config config.yaml --log-level debug`,
		RunE: runGateway,
	}

	rootCmd.Flags().StringP("config", "c", "", "Path to configuration file (YAML)")
	rootCmd.Flags().String("listen", "", "Address to listen on (overrides config)")
	rootCmd.Flags().StringP("log-level", "l", defaultLogLevel, "Log level (debug, info, warn, error)")
	rootCmd.Flags().Bool("pretty", false, "Enable pretty console logging")

	return rootCmd
}

func runGateway(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	listenAddr, _ := cmd.Flags().GetString("listen")
	logLevel, _ := cmd.Flags().GetString("log-level")
	pretty, _ := cmd.Flags().GetBool("pretty")

	logger := logging.NewLogger(logging.Config{
		Level:  logLevel,
		Pretty: pretty,
	})
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Configuration, with hot reload when a file is given.
	var watcher *config.Watcher
	var cfg *config.Config
	if configPath != "" {
		var err error
		watcher, err = config.NewWatcher(configPath, logger)
		if err != nil {
			logger.Error("Failed to load configuration", "path", configPath, "error", err)
			return err
		}
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Error("Failed to close config watcher", "error", err)
			}
		}()
		cfg = watcher.Current()
	} else {
		var err error
		cfg, err = config.Load("")
		if err != nil {
			logger.Error("Failed to load configuration", "error", err)
			return err
		}
	}
	if listenAddr != "" {
		cfg.Server.ListenAddr = listenAddr
	}

	// Tracing.
	shutdownTracing, err := telemetry.SetupProvider(ctx, telemetry.Config{
		ServiceName: "medlaw-gateway",
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		logger.Error("Failed to initialize tracing", "error", err)
		return err
	}

	// Rate limiter with background eviction of idle client windows.
	limiter := governance.NewRateLimiter(governance.RateLimiterConfig{
		Window:      cfg.RateLimit.Window,
		MaxRequests: cfg.RateLimit.MaxRequests,
		ProxyHeader: cfg.RateLimit.ProxyHeader,
	})
	evictStop := make(chan struct{})
	defer close(evictStop)
	go limiter.EvictLoop(evictStop)

	// Only rate limit settings are applied on reload. The provider, listener,
	// and auth mode are fixed for the process lifetime.
	if watcher != nil {
		if err := watcher.Watch(func(next *config.Config) {
			limiter.Configure(governance.RateLimiterConfig{
				Window:      next.RateLimit.Window,
				MaxRequests: next.RateLimit.MaxRequests,
				ProxyHeader: next.RateLimit.ProxyHeader,
			})
			logger.Info("Rate limit settings reloaded",
				"window", next.RateLimit.Window,
				"max_requests", next.RateLimit.MaxRequests,
			)
		}); err != nil {
			logger.Error("Failed to start config watcher", "error", err)
			return err
		}
	}

	// Identity verification.
	verifier, issuer := buildVerifier(cfg, logger)
	if cfg.Auth.AllowUserHeader {
		logger.Warn("X-User identity bypass is enabled; do not use in production")
	}
	authMiddleware := auth.NewMiddleware(verifier, cfg.Auth.AllowUserHeader, logger)

	// LLM provider, selected once at startup.
	provider, err := llm.NewProvider(cfg.LLM, logger)
	if err != nil {
		logger.Error("Failed to initialize LLM provider", "error", err)
		return err
	}
	dispatcher := llm.NewDispatcher(provider, logger)

	bridge := retrieval.NewBridge(cfg.Retrieval.BaseURL, cfg.Retrieval.Timeout, logger)
	store, err := buildStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to open document store", "error", err)
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close document store", "error", err)
		}
	}()

	gw := gateway.New(gateway.Options{
		Config:      cfg,
		Logger:      logger,
		Limiter:     limiter,
		Auth:        authMiddleware,
		Dispatcher:  dispatcher,
		Bridge:      bridge,
		Store:       store,
		Metrics:     telemetry.NewMetrics(),
		TokenIssuer: issuer,
	})

	handler := otelhttp.NewHandler(gw.Router(), "medlaw-gateway")
	if err := gw.Start(handler); err != nil {
		logger.Error("Failed to start server", "error", err)
		return err
	}

	// Wait for shutdown signal.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := gw.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Error shutting down tracing", "error", err)
	}

	logger.Info("Gateway stopped")
	return nil
}

// buildVerifier picks the token verifier from configuration: a remote
// identity provider when a verify URL is set, otherwise local HS256 when a
// secret is set. With neither, bearer tokens are always rejected and only
// the X-User bypass (if enabled) grants access.
func buildVerifier(cfg *config.Config, logger *slog.Logger) (auth.TokenVerifier, *auth.JWTVerifier) {
	var issuer *auth.JWTVerifier
	if cfg.Auth.JWTSecret != "" {
		issuer = auth.NewJWTVerifier(cfg.Auth.JWTSecret)
	}

	if cfg.Auth.VerifyURL != "" {
		logger.Info("Using remote token verification", "url", cfg.Auth.VerifyURL)
		return auth.NewRemoteVerifier(cfg.Auth.VerifyURL, cfg.Auth.VerifyTimeout, logger), issuer
	}
	if issuer != nil {
		logger.Info("Using local JWT token verification")
		return issuer, issuer
	}

	logger.Warn("No token verifier configured; all bearer tokens will be rejected")
	return auth.VerifierFunc(func(context.Context, string) (domain.Identity, error) {
		return domain.Identity{}, fmt.Errorf("%w: no verifier configured", domain.ErrUnauthenticated)
	}), nil
}

// buildStore selects the document store: SQLite when a path is configured,
// otherwise in-memory.
func buildStore(cfg *config.Config, logger *slog.Logger) (storage.DocumentStore, error) {
	if cfg.Storage.Path != "" {
		logger.Info("Using SQLite document store", "path", cfg.Storage.Path)
		return storage.NewSQLiteStore(cfg.Storage.Path)
	}
	logger.Info("No storage path configured; documents are held in memory only")
	return storage.NewMemoryStore(), nil
}
