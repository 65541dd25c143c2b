// Package llm provides the text-generation capability boundary: free-text
// generation and a structured variant that decodes a JSON-shaped value. The
// retrieval orchestrator is written only against the Client interface, so any
// OpenAI-compatible backend (or a test mock) can serve it.
package llm

import "context"

// Client defines the interface for language model operations.
type Client interface {
	// Generate sends a system/user prompt pair and returns the response text.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// GenerateStructured sends a system/user prompt pair and decodes the
	// JSON-shaped response into out. Implementations repair almost-JSON
	// output before decoding.
	GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, out any) error

	// Close cleans up any resources.
	Close() error
}

// Config holds configuration for LLM clients.
type Config struct {
	Model       string   `json:"model"`
	Temperature *float32 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	BaseURL     string   `json:"base_url,omitempty"` // Custom base URL for OpenAI-compatible services
}
