package llm

import "context"

// StubText is returned by the stub provider on every call.
const StubText = "Stubbed LLM response. Provide concise regulatory guidance. " +
	"Set LLM_PROVIDER=openai or anthropic with API keys for real outputs."

// StubProvider returns a fixed informational string and performs no network
// I/O. It keeps the gateway runnable without external credentials.
type StubProvider struct{}

// NewStubProvider creates the stub provider.
func NewStubProvider() *StubProvider {
	return &StubProvider{}
}

// Name implements Provider.
func (p *StubProvider) Name() string { return "stub" }

// Generate implements Provider. It always succeeds.
func (p *StubProvider) Generate(_ context.Context, _ Request) (string, error) {
	return StubText, nil
}
