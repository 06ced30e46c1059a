package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/medlawhq/medlaw-gateway/pkg/config"
	"github.com/medlawhq/medlaw-gateway/pkg/domain"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	defaultAnthropicModel   = "claude-3-haiku-20240307"
	anthropicVersion        = "2023-06-01"
)

// AnthropicProvider generates text through the Anthropic Messages API.
type AnthropicProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewAnthropicProvider creates the provider from configuration.
func NewAnthropicProvider(cfg config.LLMConfig, logger *slog.Logger) *AnthropicProvider {
	if logger == nil {
		logger = slog.Default()
	}
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &AnthropicProvider{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Name implements Provider.
func (p *AnthropicProvider) Name() string { return "anthropic" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Generate implements Provider. Any upstream failure (transport, non-2xx,
// malformed payload) surfaces as a domain.ErrUpstream-wrapped error.
func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:       p.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encode anthropic request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build anthropic request: %w", err)
	}
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.logger.Warn("Anthropic call failed", "error", err)
		return "", fmt.Errorf("%w: anthropic: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.logger.Warn("Anthropic returned error status", "status", resp.StatusCode)
		return "", fmt.Errorf("%w: anthropic status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var parsed anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: malformed anthropic response: %v", domain.ErrUpstream, err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("%w: anthropic response missing content", domain.ErrUpstream)
	}

	return parsed.Content[0].Text, nil
}
