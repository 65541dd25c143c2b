// Package embedder provides text embedding clients for vector representations.
//
// The Client interface is the embedding capability boundary of the core:
// batched, order-preserving, with per-call error propagation. Implementations
// exist for OpenAI-compatible APIs and for local models via embed-everything.
package embedder

import (
	"context"
	"errors"
)

// ErrNoEmbeddings is returned when a backend answers a non-empty request with
// an empty batch instead of an error.
var ErrNoEmbeddings = errors.New("embedding backend returned no vectors")

// firstEmbedding extracts the single vector of a one-text batch, guarding
// against backends that return an empty batch without an error.
func firstEmbedding(embeddings [][]float32) ([]float32, error) {
	if len(embeddings) == 0 {
		return nil, ErrNoEmbeddings
	}
	return embeddings[0], nil
}

// Client defines the interface for embedding operations.
type Client interface {
	// Embed generates embeddings for the given texts, preserving order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the dimensionality of the produced vectors.
	Dimensions() int
}

// Config holds configuration for embedding clients.
type Config struct {
	Model     string `json:"model"`
	BaseURL   string `json:"base_url,omitempty"`
	BatchSize int    `json:"batch_size,omitempty"`
}
