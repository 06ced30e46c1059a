// Package config provides configuration structures and loading logic for the gateway.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider names accepted by the llm section. Exactly one provider is active
// per process lifetime; there is no runtime switching.
const (
	ProviderStub      = "stub"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds the global configuration for the gateway.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Auth      AuthConfig      `yaml:"auth"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Storage   StorageConfig   `yaml:"storage"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	ListenAddr   string        `yaml:"listen_addr"`
	CORSOrigin   string        `yaml:"cors_origin"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RateLimitConfig holds fixed-window rate limiting settings.
type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxRequests int           `yaml:"max_requests"`
	// ProxyHeader names a trusted header carrying the real client address
	// (e.g. X-Forwarded-For). Empty means the transport RemoteAddr is used.
	ProxyHeader string `yaml:"proxy_header"`
}

// AuthConfig holds identity verification settings.
type AuthConfig struct {
	// VerifyURL is the identity provider's token verification endpoint.
	VerifyURL     string        `yaml:"verify_url"`
	VerifyTimeout time.Duration `yaml:"verify_timeout"`
	// JWTSecret enables local HS256 verification and the dev token endpoint.
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	// AllowUserHeader enables the X-User identity bypass. Development only;
	// the flag is checked once at startup, never inferred from header presence.
	AllowUserHeader bool `yaml:"allow_user_header"`
}

// LLMConfig selects and configures the generation backend.
type LLMConfig struct {
	Provider string        `yaml:"provider"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// RetrievalConfig points at the external retrieval (RAG) service.
type RetrievalConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// StorageConfig holds the optional path to the SQLite document database.
// An empty path is a valid dev mode and selects the in-memory store.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// TelemetryConfig holds configuration for OpenTelemetry.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
}

// LoggingConfig holds configuration for logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when no file and no overrides are present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:   ":3001",
			CORSOrigin:   "*",
			MaxBodyBytes: 10 << 20,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Window:      15 * time.Minute,
			MaxRequests: 100,
		},
		Auth: AuthConfig{
			VerifyTimeout: 5 * time.Second,
			TokenTTL:      24 * time.Hour,
		},
		LLM: LLMConfig{
			Provider: ProviderStub,
			Timeout:  30 * time.Second,
		},
		Retrieval: RetrievalConfig{
			BaseURL: "http://localhost:5001",
			Timeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a file and applies environment variable overrides.
// An empty path skips the file and loads defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		//nolint:gosec // Config file path is controlled by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		expanded := []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(expanded, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("PORT"); val != "" {
		cfg.Server.ListenAddr = ":" + val
	}
	if val := os.Getenv("CORS_ORIGIN"); val != "" {
		cfg.Server.CORSOrigin = val
	}

	if val := os.Getenv("RATE_LIMIT_WINDOW_MS"); val != "" {
		if ms, err := strconv.Atoi(val); err == nil && ms > 0 {
			cfg.RateLimit.Window = time.Duration(ms) * time.Millisecond
		}
	}
	if val := os.Getenv("RATE_LIMIT_MAX_REQUESTS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.RateLimit.MaxRequests = n
		}
	}

	if val := os.Getenv("AUTH_VERIFY_URL"); val != "" {
		cfg.Auth.VerifyURL = val
	}
	if val := os.Getenv("AUTH_JWT_SECRET"); val != "" {
		cfg.Auth.JWTSecret = val
	}
	if val := os.Getenv("AUTH_ALLOW_USER_HEADER"); val == "true" {
		cfg.Auth.AllowUserHeader = true
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		cfg.LLM.Provider = strings.ToLower(val)
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		cfg.LLM.Model = val
	}
	switch cfg.LLM.Provider {
	case ProviderOpenAI:
		if val := os.Getenv("OPENAI_API_KEY"); val != "" {
			cfg.LLM.APIKey = val
		}
	case ProviderAnthropic:
		if val := os.Getenv("ANTHROPIC_API_KEY"); val != "" {
			cfg.LLM.APIKey = val
		}
	}

	if val := os.Getenv("PYTHON_RAG_URL"); val != "" {
		cfg.Retrieval.BaseURL = val
	}
	if val := os.Getenv("STORAGE_PATH"); val != "" {
		cfg.Storage.Path = val
	}

	if val := os.Getenv("OTLP_ENDPOINT"); val != "" {
		cfg.Telemetry.OTLPEndpoint = val
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderStub:
	case ProviderOpenAI, ProviderAnthropic:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm provider %q requires an API key", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}

	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate limit max_requests must be positive, got %d", c.RateLimit.MaxRequests)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %s", c.RateLimit.Window)
	}

	if c.Retrieval.BaseURL == "" {
		return fmt.Errorf("retrieval base_url must be set")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}

	return nil
}
