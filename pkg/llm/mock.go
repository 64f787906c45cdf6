package llm

import (
	"context"
)

// MockClient is a configurable mock for testing LLM functionality.
// Set the function field to control behavior in tests.
type MockClient struct {
	// GenerateResponseFunc is called when GenerateResponse is invoked.
	// If nil, returns empty string and nil error.
	GenerateResponseFunc func(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// Endpoint is returned by GetEndpoint. Defaults to "http://mock-endpoint".
	Endpoint string

	// Call tracking for verification
	GenerateResponseCalls int
}

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		Model:    "mock-model",
		Endpoint: "http://mock-endpoint",
	}
}

// GenerateResponse implements Client.
func (m *MockClient) GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error) {
	m.GenerateResponseCalls++
	if m.GenerateResponseFunc != nil {
		return m.GenerateResponseFunc(ctx, prompt, systemMessage, temperature)
	}
	return "", nil
}

// GetModel implements Client.
func (m *MockClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// GetEndpoint implements Client.
func (m *MockClient) GetEndpoint() string {
	if m.Endpoint == "" {
		return "http://mock-endpoint"
	}
	return m.Endpoint
}

// Ensure MockClient implements Client at compile time.
var _ Client = (*MockClient)(nil)
