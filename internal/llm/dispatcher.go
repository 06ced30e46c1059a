package llm

import (
	"context"
	"log/slog"
	"strings"
)

// Generation defaults applied when the caller omits them.
const (
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 500
)

// ClassificationResult is the outcome of the intent classifier.
type ClassificationResult struct {
	Flow         string         `json:"flow"`
	IntendedPage string         `json:"intendedPage"`
	Entities     map[string]any `json:"entities"`
	Confidence   float64        `json:"confidence"`
}

// Entities is the placeholder entity-extraction result.
type Entities struct {
	Regulations []string `json:"regulations"`
	DeviceTypes []string `json:"deviceTypes"`
	DateRange   *string  `json:"dateRange"`
	Raw         string   `json:"raw"`
}

// Keyword sets evaluated by Classify, in priority order.
var (
	templateKeywords = []string{"template", "dhf", "sop"}
	alertKeywords    = []string{"alert", "update", "recall"}
)

// Dispatcher orchestrates generation, heuristic intent classification, and
// entity extraction over the selected provider.
type Dispatcher struct {
	provider Provider
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher for the given provider.
func NewDispatcher(provider Provider, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{provider: provider, logger: logger}
}

// ProviderName returns the active provider's identifier.
func (d *Dispatcher) ProviderName() string {
	return d.provider.Name()
}

// Generate applies parameter defaults and delegates to the provider.
func (d *Dispatcher) Generate(ctx context.Context, req Request) (string, error) {
	if req.Temperature == 0 {
		req.Temperature = DefaultTemperature
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	return d.provider.Generate(ctx, req)
}

// Classify maps a query to a flow and intended page with a fixed keyword
// heuristic. It is deterministic and stateless: identical input always
// yields identical output, and no network call is made.
func (d *Dispatcher) Classify(query string) ClassificationResult {
	lower := strings.ToLower(query)

	if containsAny(lower, templateKeywords) {
		return ClassificationResult{
			Flow:         "C",
			IntendedPage: "templates",
			Entities:     map[string]any{"templateType": query},
			Confidence:   0.8,
		}
	}
	if containsAny(lower, alertKeywords) {
		return ClassificationResult{
			Flow:         "C",
			IntendedPage: "alerts",
			Entities:     map[string]any{},
			Confidence:   0.75,
		}
	}
	return ClassificationResult{
		Flow:         "A",
		IntendedPage: "chat",
		Entities:     map[string]any{},
		Confidence:   0.6,
	}
}

// ExtractEntities is a placeholder for a future NLP step: it returns empty
// structured fields and echoes the raw query.
func (d *Dispatcher) ExtractEntities(query string) Entities {
	return Entities{
		Regulations: []string{},
		DeviceTypes: []string{},
		DateRange:   nil,
		Raw:         query,
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
