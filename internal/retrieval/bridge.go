// Package retrieval forwards analysis queries to the external retrieval (RAG)
// service and normalizes its responses and failures into gateway-level errors.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/medlawhq/medlaw-gateway/pkg/domain"
)

const (
	defaultTimeout = 15 * time.Second
	defaultK       = 5
)

// AnalyzeRequest is an inbound analysis query.
type AnalyzeRequest struct {
	Query  string   `json:"query"`
	DocIDs []string `json:"docIds,omitempty"`
	K      int      `json:"k,omitempty"`
}

// AnalyzeResult is the normalized analysis response.
type AnalyzeResult struct {
	Query   string `json:"query"`
	Results []any  `json:"results"`
	Count   int    `json:"count"`
}

// Bridge is the HTTP client for the retrieval service.
type Bridge struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewBridge creates a bridge for the given retrieval service base URL.
func NewBridge(baseURL string, timeout time.Duration, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Bridge{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type searchRequest struct {
	Query   string            `json:"query"`
	K       int               `json:"k"`
	Filters map[string]string `json:"filters,omitempty"`
}

type searchResponse struct {
	Results []any `json:"results"`
	Count   int   `json:"count"`
}

// Analyze validates the query, forwards it to the retrieval service's vector
// search endpoint, and normalizes the response.
//
// When multiple doc ids are supplied, only the first is forwarded as a
// filter. The retrieval service accepts a single doc_id filter; widening
// this to multi-id filtering is pending on the service side.
func (b *Bridge) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return AnalyzeResult{}, fmt.Errorf("%w: query is required", domain.ErrValidation)
	}

	k := req.K
	if k <= 0 {
		k = defaultK
	}

	search := searchRequest{Query: req.Query, K: k}
	if len(req.DocIDs) > 0 {
		search.Filters = map[string]string{"doc_id": req.DocIDs[0]}
	}

	body, err := json.Marshal(search)
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("encode search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/vector/search", bytes.NewReader(body))
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		b.logger.Warn("Retrieval service call failed", "error", err)
		return AnalyzeResult{}, fmt.Errorf("%w: retrieval service: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b.logger.Warn("Retrieval service returned error status", "status", resp.StatusCode)
		return AnalyzeResult{}, fmt.Errorf("%w: retrieval service status %d", domain.ErrUpstream, resp.StatusCode)
	}

	// A malformed success payload degrades to an empty result set; only a
	// failed call surfaces as an upstream error.
	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		b.logger.Warn("Malformed retrieval response, defaulting to empty result set", "error", err)
		parsed = searchResponse{}
	}

	results := parsed.Results
	if results == nil {
		results = []any{}
	}

	return AnalyzeResult{Query: req.Query, Results: results, Count: parsed.Count}, nil
}

// Upload is not implemented at this layer; documents are ingested directly
// through the retrieval pipeline.
func (b *Bridge) Upload(_ context.Context) error {
	return fmt.Errorf("%w: upload not supported by the gateway, use pipeline ingestion directly", domain.ErrNotImplemented)
}
