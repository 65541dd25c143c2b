package legame

import (
	"context"
	"errors"
	"log/slog"

	"github.com/soundprediction/legame/pkg/embedder"
	"github.com/soundprediction/legame/pkg/embeddings"
	"github.com/soundprediction/legame/pkg/hypergraph"
	"github.com/soundprediction/legame/pkg/llm"
	"github.com/soundprediction/legame/pkg/match"
	"github.com/soundprediction/legame/pkg/simplify"
)

var (
	// ErrEmbeddingFailed is returned when the embedding service could not be
	// reached or returned an error. It is distinguishable from an empty
	// retrieval result.
	ErrEmbeddingFailed = errors.New("embedding generation failed")
	// ErrGenerationFailed is returned when the text-generation service could
	// not be reached or returned an error.
	ErrGenerationFailed = errors.New("text generation failed")
	// ErrNoEmbedder is returned when an operation needs an embedder and none
	// was configured.
	ErrNoEmbedder = errors.New("no embedder configured")
	// ErrNoLLM is returned when an operation needs an LLM client and none was
	// configured.
	ErrNoLLM = errors.New("no LLM client configured")
)

// Config holds configuration for the legame client.
type Config struct {
	// TopK bounds embedding matches per keyword during retrieval.
	TopK int
	// MaxPathLength bounds path node counts during retrieval.
	MaxPathLength int
	// MatchThreshold filters embedding keyword matches.
	MatchThreshold float64
	// MaxContextTokens bounds the assembled evidence context.
	MaxContextTokens int
	// MaxEdgesPerNode bounds the direct-edge fallback when no paths connect
	// the matched nodes.
	MaxEdgesPerNode int
	// MaxConcurrency bounds concurrent document extraction; zero uses the
	// SEMAPHORE_LIMIT default.
	MaxConcurrency int
}

// DefaultConfig returns the retrieval defaults.
func DefaultConfig() *Config {
	return &Config{
		TopK:             5,
		MaxPathLength:    4,
		MatchThreshold:   0.5,
		MaxContextTokens: 2000,
		MaxEdgesPerNode:  3,
	}
}

// Client is the main implementation of the knowledge-base operations. The
// LLM and embedder clients may each be nil; operations that need a missing
// capability return ErrNoLLM or ErrNoEmbedder.
type Client struct {
	llm      llm.Client
	embedder embedder.Client
	matcher  *match.Matcher
	config   *Config
	logger   *slog.Logger
}

// NewClient creates a new legame client.
func NewClient(llmClient llm.Client, embedderClient embedder.Client, config *Config, logger *slog.Logger) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		llm:      llmClient,
		embedder: embedderClient,
		matcher:  match.New(embedderClient),
		config:   config,
		logger:   logger,
	}, nil
}

// GetLLM returns the LLM client
func (c *Client) GetLLM() llm.Client {
	return c.llm
}

// GetEmbedder returns the embedder client
func (c *Client) GetEmbedder() embedder.Client {
	return c.embedder
}

// EmbedNodes generates embeddings for every graph node missing one and adds
// them to the store in place. The embedder's batching applies; node order is
// preserved within each call.
func (c *Client) EmbedNodes(ctx context.Context, g *hypergraph.Hypergraph, emb *embeddings.Store) (int, error) {
	if c.embedder == nil {
		return 0, ErrNoEmbedder
	}

	var missing []string
	for _, node := range g.Nodes() {
		if !emb.Has(node) {
			missing = append(missing, node)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	vectors, err := c.embedder.Embed(ctx, missing)
	if err != nil {
		return 0, errors.Join(ErrEmbeddingFailed, err)
	}
	for i, node := range missing {
		if err := emb.Set(node, vectors[i]); err != nil {
			return i, err
		}
	}

	c.logger.Info("embedded graph nodes", "count", len(missing))
	return len(missing), nil
}

// Simplify runs one node-deduplication pass using the client's embedder.
func (c *Client) Simplify(ctx context.Context, g *hypergraph.Hypergraph, emb *embeddings.Store, opts simplify.Options) (*simplify.Result, error) {
	return simplify.New(c.embedder, c.logger).Simplify(ctx, g, emb, opts)
}

// GraphStats summarizes a graph for display.
type GraphStats struct {
	Nodes            int `json:"nodes" yaml:"nodes"`
	Edges            int `json:"edges" yaml:"edges"`
	Components       int `json:"components" yaml:"components"`
	LargestComponent int `json:"largest_component" yaml:"largest_component"`
}

// Stats computes summary statistics for a graph.
func Stats(g *hypergraph.Hypergraph) GraphStats {
	components := g.ConnectedComponents()
	largest := 0
	if len(components) > 0 {
		largest = len(components[0])
	}
	return GraphStats{
		Nodes:            g.NumNodes(),
		Edges:            g.NumEdges(),
		Components:       len(components),
		LargestComponent: largest,
	}
}
