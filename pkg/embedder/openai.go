package embedder

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "text-embedding-3-small"
	// DefaultBatchSize bounds the number of texts per API request.
	DefaultBatchSize = 100
)

// modelDimensions maps known OpenAI embedding models to their output size.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAIEmbedder implements the Client interface using the OpenAI API or any
// OpenAI-compatible endpoint.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	batchSize int
}

// NewOpenAIEmbedder creates a new OpenAI embedding client.
func NewOpenAIEmbedder(apiKey string, config Config) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		cfg.BaseURL = config.BaseURL
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		batchSize: batchSize,
	}
}

// Embed generates embeddings for the given texts, batching requests and
// preserving input order.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		batch := texts[start:end]

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: batch,
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(batch))
		}
		for _, d := range resp.Data {
			embeddings = append(embeddings, d.Embedding)
		}
	}
	return embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (e *OpenAIEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return firstEmbedding(embeddings)
}

// Dimensions returns the vector dimensionality for the configured model.
func (e *OpenAIEmbedder) Dimensions() int {
	if dims, ok := modelDimensions[e.model]; ok {
		return dims
	}
	return modelDimensions[DefaultModel]
}
