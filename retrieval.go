package legame

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/soundprediction/legame/pkg/embeddings"
	"github.com/soundprediction/legame/pkg/evidence"
	"github.com/soundprediction/legame/pkg/hypergraph"
	"github.com/soundprediction/legame/pkg/match"
	"github.com/soundprediction/legame/pkg/paths"
	"github.com/soundprediction/legame/pkg/prompts"
)

// RAGContext is the evidence bundle for one query. It exposes every
// intermediate stage so callers can render a transparency view, not just the
// final context string.
type RAGContext struct {
	Query     string            `json:"query"`
	Keywords  []string          `json:"keywords"`
	Matches   []match.NodeMatch `json:"matches"`
	Paths     [][]string        `json:"paths"`
	Sentences []string          `json:"sentences"`
	Context   string            `json:"context"`
	// Truncated is the number of sentences the token budget omitted.
	Truncated int `json:"truncated"`
}

// HasEvidence reports whether any evidence sentences were found. False means
// "no relevant context", which is a legitimate outcome distinct from an
// error.
func (r *RAGContext) HasEvidence() bool {
	return len(r.Sentences) > 0
}

// RAGResponse carries the generated answer alongside its evidence.
type RAGResponse struct {
	RAGContext
	Answer string `json:"answer"`
}

// ExtractKeywords extracts the key entities and concepts from a query via
// the LLM. A query with no extractable keywords falls back to the query
// itself as a single keyword.
func (c *Client) ExtractKeywords(ctx context.Context, query string) ([]string, error) {
	if c.llm == nil {
		return nil, ErrNoLLM
	}

	system, user := prompts.ExtractKeywords(query)
	var keywords []string
	if err := c.llm.GenerateStructured(ctx, system, user, &keywords); err != nil {
		return nil, fmt.Errorf("%w: keyword extraction: %w", ErrGenerationFailed, err)
	}

	cleaned := keywords[:0]
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		cleaned = []string{query}
	}
	return cleaned, nil
}

// Retrieve assembles an evidence bundle: keywords are matched to nodes,
// paths are found between the matched nodes, and the connecting edges are
// rendered and packed under the context token budget. When no path connects
// the matches, each matched node contributes a bounded number of its own
// edges instead, so a lone match still yields some evidence.
//
// Capability failures propagate as errors; an empty bundle with a nil error
// means no relevant context exists.
func (c *Client) Retrieve(ctx context.Context, g *hypergraph.Hypergraph, emb *embeddings.Store, query string) (*RAGContext, error) {
	result := &RAGContext{Query: query}

	keywords, err := c.ExtractKeywords(ctx, query)
	if err != nil {
		return nil, err
	}
	result.Keywords = keywords

	matches, err := c.matcher.MatchKeywords(ctx, g, emb, keywords, match.Options{
		Threshold: c.config.MatchThreshold,
		TopK:      c.config.TopK,
	})
	if err != nil && len(matches) == 0 {
		return nil, fmt.Errorf("%w: keyword matching: %w", ErrEmbeddingFailed, err)
	}
	if err != nil {
		// Partial failure: some keywords matched, others could not embed.
		c.logger.Warn("keyword matching partially failed", "error", err)
	}
	result.Matches = matches
	if len(matches) == 0 {
		return result, nil
	}

	nodes := make([]string, 0, len(matches))
	for _, m := range matches {
		nodes = append(nodes, m.Node)
	}

	finder := paths.New(g)
	result.Paths = finder.FindShortestPaths(nodes, c.config.MaxPathLength)

	var sentences []string
	if len(result.Paths) > 0 {
		for _, path := range result.Paths {
			sentences = append(sentences, evidence.PathSentences(g, path)...)
		}
	} else {
		for _, node := range nodes {
			sentences = append(sentences, evidence.NodeSentences(g, node, c.config.MaxEdgesPerNode)...)
		}
	}

	result.Context, result.Truncated = evidence.FormatContext(
		sentences, c.config.MaxContextTokens, "Evidence:")
	result.Sentences = dedupe(sentences)
	sort.Strings(result.Sentences)

	c.logger.Debug("retrieval complete",
		"keywords", len(result.Keywords),
		"matches", len(result.Matches),
		"paths", len(result.Paths),
		"sentences", len(result.Sentences),
		"truncated", result.Truncated)
	return result, nil
}

// Answer retrieves evidence for the query and generates an answer from it.
// With no evidence found, the answer states that directly without calling
// the generator.
func (c *Client) Answer(ctx context.Context, g *hypergraph.Hypergraph, emb *embeddings.Store, query string) (*RAGResponse, error) {
	if c.llm == nil {
		return nil, ErrNoLLM
	}

	retrieved, err := c.Retrieve(ctx, g, emb, query)
	if err != nil {
		return nil, err
	}

	response := &RAGResponse{RAGContext: *retrieved}
	if !retrieved.HasEvidence() {
		response.Answer = "No relevant context was found for this question."
		return response, nil
	}

	system, user := prompts.Answer(query, retrieved.Context)
	answer, err := c.llm.Generate(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("%w: answer synthesis: %w", ErrGenerationFailed, err)
	}
	response.Answer = strings.TrimSpace(answer)
	return response, nil
}

// dedupe keeps first occurrences, preserving order.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
