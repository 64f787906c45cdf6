// Package llm provides OpenAI-compatible LLM client functionality.
package llm

import (
	"context"
)

// Client defines the interface for LLM completion calls.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// GenerateResponse generates a chat completion response.
	GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// GetModel returns the configured model name.
	GetModel() string

	// GetEndpoint returns the configured endpoint.
	GetEndpoint() string
}

// Ensure OpenAIClient implements Client at compile time.
var _ Client = (*OpenAIClient)(nil)
