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
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAIProvider generates text through the OpenAI Responses API.
type OpenAIProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewOpenAIProvider creates the provider from configuration.
func NewOpenAIProvider(cfg config.LLMConfig, logger *slog.Logger) *OpenAIProvider {
	if logger == nil {
		logger = slog.Default()
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIProvider{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return "openai" }

type openAIRequest struct {
	Model           string  `json:"model"`
	Input           string  `json:"input"`
	MaxOutputTokens int     `json:"max_output_tokens"`
	Temperature     float64 `json:"temperature"`
}

type openAIResponse struct {
	Output []struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// Generate implements Provider. Any upstream failure (transport, non-2xx,
// malformed payload) surfaces as a domain.ErrUpstream-wrapped error.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(openAIRequest{
		Model:           p.model,
		Input:           req.Prompt,
		MaxOutputTokens: req.MaxTokens,
		Temperature:     req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode openai request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/responses", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build openai request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.logger.Warn("OpenAI call failed", "error", err)
		return "", fmt.Errorf("%w: openai: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.logger.Warn("OpenAI returned error status", "status", resp.StatusCode)
		return "", fmt.Errorf("%w: openai status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var parsed openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: malformed openai response: %v", domain.ErrUpstream, err)
	}
	if len(parsed.Output) == 0 || len(parsed.Output[0].Content) == 0 {
		return "", fmt.Errorf("%w: openai response missing output text", domain.ErrUpstream)
	}

	return parsed.Output[0].Content[0].Text, nil
}
