package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// recordingProvider captures the request it receives.
type recordingProvider struct {
	last Request
	text string
	err  error
}

func (p *recordingProvider) Name() string { return "recording" }

func (p *recordingProvider) Generate(_ context.Context, req Request) (string, error) {
	p.last = req
	return p.text, p.err
}

func TestDispatcher_GenerateAppliesDefaults(t *testing.T) {
	provider := &recordingProvider{text: "ok"}
	d := NewDispatcher(provider, nil)

	text, err := d.Generate(context.Background(), Request{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, DefaultTemperature, provider.last.Temperature)
	assert.Equal(t, DefaultMaxTokens, provider.last.MaxTokens)
}

func TestDispatcher_GenerateKeepsExplicitParams(t *testing.T) {
	provider := &recordingProvider{text: "ok"}
	d := NewDispatcher(provider, nil)

	_, err := d.Generate(context.Background(), Request{Prompt: "hello", Temperature: 0.9, MaxTokens: 64})
	require.NoError(t, err)
	assert.Equal(t, 0.9, provider.last.Temperature)
	assert.Equal(t, 64, provider.last.MaxTokens)
}

func TestStubProvider_NoNetworkFixedText(t *testing.T) {
	d := NewDispatcher(NewStubProvider(), nil)

	for i := 0; i < 3; i++ {
		text, err := d.Generate(context.Background(), Request{Prompt: "anything"})
		require.NoError(t, err)
		assert.Equal(t, StubText, text)
	}
}

func TestClassify_Templates(t *testing.T) {
	d := NewDispatcher(NewStubProvider(), nil)

	result := d.Classify("Need a DHF template")
	assert.Equal(t, "C", result.Flow)
	assert.Equal(t, "templates", result.IntendedPage)
	assert.Equal(t, 0.8, result.Confidence)
	assert.Equal(t, "Need a DHF template", result.Entities["templateType"])
}

func TestClassify_Alerts(t *testing.T) {
	d := NewDispatcher(NewStubProvider(), nil)

	result := d.Classify("recall alert update")
	assert.Equal(t, "C", result.Flow)
	assert.Equal(t, "alerts", result.IntendedPage)
	assert.Equal(t, 0.75, result.Confidence)
	assert.Empty(t, result.Entities)
}

func TestClassify_Fallback(t *testing.T) {
	d := NewDispatcher(NewStubProvider(), nil)

	result := d.Classify("hello")
	assert.Equal(t, "A", result.Flow)
	assert.Equal(t, "chat", result.IntendedPage)
	assert.Equal(t, 0.6, result.Confidence)
}

func TestClassify_TemplatePrecedesAlert(t *testing.T) {
	d := NewDispatcher(NewStubProvider(), nil)

	// Matches both keyword sets; the template set wins.
	result := d.Classify("template alert")
	assert.Equal(t, "templates", result.IntendedPage)
}

func TestClassify_CaseInsensitive(t *testing.T) {
	d := NewDispatcher(NewStubProvider(), nil)

	assert.Equal(t, "templates", d.Classify("SOP review").IntendedPage)
	assert.Equal(t, "alerts", d.Classify("RECALL notice").IntendedPage)
}

// Property: classification is deterministic and always lands on one of the
// three known pages with its fixed confidence.
func TestClassify_Deterministic(t *testing.T) {
	d := NewDispatcher(NewStubProvider(), nil)

	confidences := map[string]float64{
		"templates": 0.8,
		"alerts":    0.75,
		"chat":      0.6,
	}

	rapid.Check(t, func(t *rapid.T) {
		query := rapid.String().Draw(t, "query")

		first := d.Classify(query)
		second := d.Classify(query)

		if first.Flow != second.Flow || first.IntendedPage != second.IntendedPage {
			t.Fatalf("classification not deterministic for %q", query)
		}
		want, ok := confidences[first.IntendedPage]
		if !ok {
			t.Fatalf("unknown page %q", first.IntendedPage)
		}
		if first.Confidence != want {
			t.Fatalf("page %q with confidence %v", first.IntendedPage, first.Confidence)
		}
	})
}

func TestExtractEntities_EchoesQuery(t *testing.T) {
	d := NewDispatcher(NewStubProvider(), nil)

	entities := d.ExtractEntities("Is ISO 13485 applicable?")
	assert.Empty(t, entities.Regulations)
	assert.Empty(t, entities.DeviceTypes)
	assert.Nil(t, entities.DateRange)
	assert.Equal(t, "Is ISO 13485 applicable?", entities.Raw)
}
