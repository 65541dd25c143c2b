// Package match maps free-text keywords to hypergraph nodes.
//
// Matching policy per keyword, in priority order: exact case-insensitive
// identity (similarity 1.0, short-circuits), case-insensitive substring in
// either direction (length-ratio score boosted to at least 0.8 so substring
// hits stay competitive with embedding hits), then embedding similarity
// against every stored node vector, thresholded and truncated to top-k.
package match

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/soundprediction/legame/pkg/embedder"
	"github.com/soundprediction/legame/pkg/embeddings"
	"github.com/soundprediction/legame/pkg/hypergraph"
	"github.com/soundprediction/legame/pkg/similarity"
)

// Kind classifies how a node was matched.
type Kind string

const (
	KindExact     Kind = "exact"
	KindSubstring Kind = "substring"
	KindEmbedding Kind = "embedding"
)

// substringFloor keeps substring hits competitive with embedding hits.
const substringFloor = 0.8

// NodeMatch links a hypergraph node to the keyword that produced it.
// Ephemeral: produced by the matcher, consumed within one retrieval call.
type NodeMatch struct {
	Node    string  `json:"node"`
	Keyword string  `json:"keyword"`
	Score   float64 `json:"score"`
	Kind    Kind    `json:"kind"`
}

// Options bounds the embedding fallback.
type Options struct {
	// Threshold filters embedding matches; zero keeps everything positive.
	Threshold float64
	// TopK truncates embedding matches per keyword; zero means 5.
	TopK int
}

// DefaultTopK bounds embedding matches per keyword when unset.
const DefaultTopK = 5

// Matcher resolves keywords against a graph snapshot and its embeddings.
type Matcher struct {
	embedder embedder.Client
}

// New creates a Matcher. The embedder may be nil, in which case the embedding
// fallback is skipped.
func New(embedderClient embedder.Client) *Matcher {
	return &Matcher{embedder: embedderClient}
}

// MatchKeywords resolves every keyword and deduplicates the results by node,
// keeping each node's single highest score regardless of which keyword
// produced it. Results are sorted by score descending (ties by node name).
//
// A keyword whose embedding call fails contributes an error to the joined
// return value but does not affect the other keywords; callers receive the
// partial matches alongside the error.
func (m *Matcher) MatchKeywords(ctx context.Context, g *hypergraph.Hypergraph, emb *embeddings.Store, keywords []string, opts Options) ([]NodeMatch, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	nodes := g.Nodes()
	best := make(map[string]NodeMatch)
	var errs []error

	for _, keyword := range keywords {
		matches, err := m.matchOne(ctx, nodes, emb, keyword, opts.Threshold, topK)
		if err != nil {
			errs = append(errs, fmt.Errorf("keyword %q: %w", keyword, err))
			continue
		}
		for _, match := range matches {
			if existing, ok := best[match.Node]; !ok || match.Score > existing.Score {
				best[match.Node] = match
			}
		}
	}

	results := make([]NodeMatch, 0, len(best))
	for _, match := range best {
		results = append(results, match)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Node < results[j].Node
	})
	return results, errors.Join(errs...)
}

// BestMatches exposes a keyword -> single-best-node convenience view.
func (m *Matcher) BestMatches(ctx context.Context, g *hypergraph.Hypergraph, emb *embeddings.Store, keywords []string, opts Options) (map[string]NodeMatch, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	nodes := g.Nodes()
	best := make(map[string]NodeMatch)
	var errs []error

	for _, keyword := range keywords {
		matches, err := m.matchOne(ctx, nodes, emb, keyword, opts.Threshold, topK)
		if err != nil {
			errs = append(errs, fmt.Errorf("keyword %q: %w", keyword, err))
			continue
		}
		if len(matches) > 0 {
			best[keyword] = matches[0]
		}
	}
	return best, errors.Join(errs...)
}

// matchOne resolves a single keyword. The returned matches are ordered best
// first.
func (m *Matcher) matchOne(ctx context.Context, nodes []string, emb *embeddings.Store, keyword string, threshold float64, topK int) ([]NodeMatch, error) {
	lowered := strings.ToLower(keyword)

	// Exact identity short-circuits everything else.
	for _, node := range nodes {
		if strings.ToLower(node) == lowered {
			return []NodeMatch{{Node: node, Keyword: keyword, Score: 1.0, Kind: KindExact}}, nil
		}
	}

	// Substring in either direction.
	var substrings []NodeMatch
	for _, node := range nodes {
		nodeLower := strings.ToLower(node)
		if !strings.Contains(nodeLower, lowered) && !strings.Contains(lowered, nodeLower) {
			continue
		}
		score := max(lengthRatio(lowered, nodeLower), substringFloor)
		substrings = append(substrings, NodeMatch{Node: node, Keyword: keyword, Score: score, Kind: KindSubstring})
	}
	if len(substrings) > 0 {
		sort.Slice(substrings, func(i, j int) bool {
			if substrings[i].Score != substrings[j].Score {
				return substrings[i].Score > substrings[j].Score
			}
			return substrings[i].Node < substrings[j].Node
		})
		return substrings, nil
	}

	// Embedding fallback.
	if m.embedder == nil || emb == nil || emb.Len() == 0 {
		return nil, nil
	}
	vector, err := m.embedder.EmbedSingle(ctx, keyword)
	if err != nil {
		return nil, err
	}

	var scored []similarity.ScoredItem[string]
	for _, node := range emb.Nodes() {
		score := similarity.Cosine(vector, emb.Get(node))
		if score <= threshold {
			continue
		}
		scored = append(scored, similarity.ScoredItem[string]{Item: node, Score: score})
	}

	top := similarity.TopKByScore(scored, topK)
	matches := make([]NodeMatch, 0, len(top))
	for _, item := range top {
		matches = append(matches, NodeMatch{Node: item.Item, Keyword: keyword, Score: item.Score, Kind: KindEmbedding})
	}
	return matches, nil
}

func lengthRatio(a, b string) float64 {
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb)
}
