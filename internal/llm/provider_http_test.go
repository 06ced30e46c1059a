package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlawhq/medlaw-gateway/pkg/config"
	"github.com/medlawhq/medlaw-gateway/pkg/domain"
)

func TestOpenAIProvider_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])
		assert.Equal(t, "explain MDR", req["input"])
		assert.Equal(t, float64(500), req["max_output_tokens"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"output": []map[string]any{
				{"content": []map[string]any{{"text": "MDR is the EU Medical Device Regulation."}}},
			},
		})
	}))
	defer srv.Close()

	p := NewOpenAIProvider(config.LLMConfig{APIKey: "sk-test", BaseURL: srv.URL}, nil)

	text, err := p.Generate(context.Background(), Request{Prompt: "explain MDR", Temperature: 0.1, MaxTokens: 500})
	require.NoError(t, err)
	assert.Equal(t, "MDR is the EU Medical Device Regulation.", text)
}

func TestOpenAIProvider_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(config.LLMConfig{APIKey: "sk-test", BaseURL: srv.URL}, nil)

	_, err := p.Generate(context.Background(), Request{Prompt: "x", MaxTokens: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
}

func TestOpenAIProvider_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output": []}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(config.LLMConfig{APIKey: "sk-test", BaseURL: srv.URL}, nil)

	_, err := p.Generate(context.Background(), Request{Prompt: "x", MaxTokens: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
}

func TestAnthropicProvider_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-3-haiku-20240307", req["model"])
		messages := req["messages"].([]any)
		require.Len(t, messages, 1)
		assert.Equal(t, "user", messages[0].(map[string]any)["role"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": "Class IIa under MDR."}},
		})
	}))
	defer srv.Close()

	p := NewAnthropicProvider(config.LLMConfig{APIKey: "sk-ant", BaseURL: srv.URL}, nil)

	text, err := p.Generate(context.Background(), Request{Prompt: "classify device", Temperature: 0.1, MaxTokens: 500})
	require.NoError(t, err)
	assert.Equal(t, "Class IIa under MDR.", text)
}

func TestAnthropicProvider_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewAnthropicProvider(config.LLMConfig{APIKey: "sk-ant", BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, nil)

	_, err := p.Generate(context.Background(), Request{Prompt: "x", MaxTokens: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
}

func TestNewProvider_Selection(t *testing.T) {
	p, err := NewProvider(config.LLMConfig{Provider: config.ProviderStub}, nil)
	require.NoError(t, err)
	assert.Equal(t, "stub", p.Name())

	p, err = NewProvider(config.LLMConfig{Provider: config.ProviderOpenAI, APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	p, err = NewProvider(config.LLMConfig{Provider: config.ProviderAnthropic, APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())

	_, err = NewProvider(config.LLMConfig{Provider: "mistral"}, nil)
	require.Error(t, err)
}
