// Package llm provides the generation provider abstraction and the request
// dispatcher for generation, intent classification, and entity extraction.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/medlawhq/medlaw-gateway/pkg/config"
)

// Request represents a generation request to an LLM provider.
type Request struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Provider is the interface all generation backends implement. Exactly one
// provider is selected at startup; there is no runtime switching and no
// fallback between providers on failure.
type Provider interface {
	// Name returns the provider identifier (e.g. "openai", "stub").
	Name() string

	// Generate performs one generation call and returns the produced text.
	// The context should carry a deadline.
	Generate(ctx context.Context, req Request) (string, error)
}

// NewProvider builds the provider selected by configuration.
func NewProvider(cfg config.LLMConfig, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Provider {
	case config.ProviderStub, "":
		return NewStubProvider(), nil
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg, logger), nil
	case config.ProviderAnthropic:
		return NewAnthropicProvider(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
