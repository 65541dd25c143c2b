package legame

import (
	"context"

	"github.com/soundprediction/legame/pkg/embeddings"
	"github.com/soundprediction/legame/pkg/hypergraph"
	"github.com/soundprediction/legame/pkg/simplify"
)

// This file defines focused interfaces so consumers can depend on the
// smallest surface that meets their needs. Client implements all of them.

// GraphBuilder turns documents and facts into hypergraph structure.
type GraphBuilder interface {
	// ExtractFacts extracts subject/relation/object facts from raw text.
	ExtractFacts(ctx context.Context, text string) ([]Fact, error)

	// AddDocuments extracts facts from each document concurrently and unions
	// the resulting fragments into one graph. A single document's failure
	// does not abort the batch.
	AddDocuments(ctx context.Context, docs []Document) (*BuildResult, error)
}

// NodeEmbedder fills in vectors for graph nodes.
type NodeEmbedder interface {
	// EmbedNodes embeds every node missing a vector, mutating the store.
	EmbedNodes(ctx context.Context, g *hypergraph.Hypergraph, emb *embeddings.Store) (int, error)
}

// GraphSimplifier deduplicates near-identical nodes.
type GraphSimplifier interface {
	Simplify(ctx context.Context, g *hypergraph.Hypergraph, emb *embeddings.Store, opts simplify.Options) (*simplify.Result, error)
}

// Retriever answers questions against a graph snapshot.
type Retriever interface {
	// Retrieve assembles an evidence bundle for a query without generating
	// an answer.
	Retrieve(ctx context.Context, g *hypergraph.Hypergraph, emb *embeddings.Store, query string) (*RAGContext, error)

	// Answer retrieves evidence and generates an answer from it.
	Answer(ctx context.Context, g *hypergraph.Hypergraph, emb *embeddings.Store, query string) (*RAGResponse, error)
}

// Compile-time check that Client provides every focused interface.
var _ interface {
	GraphBuilder
	NodeEmbedder
	GraphSimplifier
	Retriever
} = (*Client)(nil)
