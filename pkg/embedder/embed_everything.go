package embedder

import (
	"context"
	"fmt"

	"github.com/soundprediction/go-embedeverything/pkg/embedder"
)

// EmbedEverythingClient implements the Client interface for local models via
// go-embedeverything.
type EmbedEverythingClient struct {
	client *embedder.Embedder
	dims   int
}

// NewEmbedEverythingClient creates a new embed-everything client for the
// given local model.
func NewEmbedEverythingClient(model string) (*EmbedEverythingClient, error) {
	client, err := embedder.NewEmbedder(model)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return &EmbedEverythingClient{client: client}, nil
}

// Embed generates embeddings for the given texts.
func (e *EmbedEverythingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	// go-embedeverything does not support context yet
	embeddings, err := e.client.Embed(texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) > 0 {
		e.dims = len(embeddings[0])
	}
	return embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (e *EmbedEverythingClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return firstEmbedding(embeddings)
}

// Dimensions returns the dimensionality observed from the model. Local models
// report their size only after the first call; 0 means unknown yet.
func (e *EmbedEverythingClient) Dimensions() int {
	return e.dims
}
