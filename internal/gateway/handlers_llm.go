package gateway

import (
	"fmt"
	"net/http"

	"github.com/medlawhq/medlaw-gateway/internal/llm"
	"github.com/medlawhq/medlaw-gateway/pkg/domain"
)

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

func (g *Gateway) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.handleNotFound(w, r)
		return
	}

	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		g.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrValidation, err), "invalid JSON body")
		return
	}
	if req.Prompt == "" {
		g.writeError(w, r, fmt.Errorf("%w: prompt missing", domain.ErrValidation), "prompt is required")
		return
	}

	text, err := g.dispatcher.Generate(r.Context(), llm.Request{
		Prompt:      req.Prompt,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	g.metrics.RecordGenerate(g.dispatcher.ProviderName(), err)
	if err != nil {
		g.writeError(w, r, err, "LLM generate failed")
		return
	}

	g.writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

type queryRequest struct {
	Query string `json:"query"`
}

func (g *Gateway) handleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.handleNotFound(w, r)
		return
	}

	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		g.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrValidation, err), "invalid JSON body")
		return
	}
	if req.Query == "" {
		g.writeError(w, r, fmt.Errorf("%w: query missing", domain.ErrValidation), "query is required")
		return
	}

	g.writeJSON(w, http.StatusOK, g.dispatcher.Classify(req.Query))
}

func (g *Gateway) handleExtractEntities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.handleNotFound(w, r)
		return
	}

	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		g.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrValidation, err), "invalid JSON body")
		return
	}
	if req.Query == "" {
		g.writeError(w, r, fmt.Errorf("%w: query missing", domain.ErrValidation), "query is required")
		return
	}

	g.writeJSON(w, http.StatusOK, g.dispatcher.ExtractEntities(req.Query))
}
