// Package simplify merges near-duplicate hypergraph nodes (synonyms, casing
// and phrasing variants) identified by embedding similarity, preserving graph
// connectivity semantics.
package simplify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soundprediction/legame/pkg/embedder"
	"github.com/soundprediction/legame/pkg/embeddings"
	"github.com/soundprediction/legame/pkg/hypergraph"
	"github.com/soundprediction/legame/pkg/similarity"
)

// DefaultThreshold is the similarity above which two nodes are considered
// duplicates.
const DefaultThreshold = 0.9

// Options configures a simplification pass.
type Options struct {
	// Threshold is the strict similarity cutoff; pairs must score above it.
	// Zero means DefaultThreshold.
	Threshold float64

	// ExcludedSuffixes lists node-name suffixes that make a node invisible
	// to the pass (e.g. ".png" keeps filenames from merging into prose
	// terms). An excluded node is never removed or kept-into.
	ExcludedSuffixes []string

	// RecomputeEmbeddings re-embeds kept nodes that absorbed at least one
	// merge, since a merged concept's best vector may differ from either
	// original. Requires an embedder on the Simplifier.
	RecomputeEmbeddings bool
}

// MergeRecord is an immutable audit entry for a single merge. It is purely
// informational; nothing downstream consumes it except display and export.
type MergeRecord struct {
	Kept          string  `json:"kept"`
	Removed       string  `json:"removed"`
	Score         float64 `json:"score"`
	KeptDegree    int     `json:"kept_degree"`
	RemovedDegree int     `json:"removed_degree"`
}

// Result bundles the output of one simplification pass.
type Result struct {
	Graph      *hypergraph.Hypergraph
	Embeddings *embeddings.Store

	Merges               int
	NodesRemoved         int
	EdgesRemoved         int
	EmbeddingsRecomputed int

	// Records lists the merges in the order they were applied.
	Records []MergeRecord
}

// Simplifier runs node-deduplication passes. The embedder is only required
// when Options.RecomputeEmbeddings is set.
type Simplifier struct {
	embedder embedder.Client
	logger   *slog.Logger
}

// New creates a Simplifier. Both arguments may be nil.
func New(embedderClient embedder.Client, logger *slog.Logger) *Simplifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simplifier{embedder: embedderClient, logger: logger}
}

// Simplify runs one deduplication pass over a graph and its embeddings and
// returns rewritten copies; the inputs are not mutated. Fewer than 2 eligible
// nodes, or no pairs above the threshold, yields a no-op result with zero
// counts.
func (s *Simplifier) Simplify(ctx context.Context, g *hypergraph.Hypergraph, emb *embeddings.Store, opts Options) (*Result, error) {
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	outGraph := g.Clone()
	outEmb := emb.Clone()
	result := &Result{Graph: outGraph, Embeddings: outEmb}

	// Eligible: present in the graph, has an embedding, no excluded suffix.
	// Sorted order fixes pair indexing, which makes tie-breaks deterministic.
	var eligible []string
	for _, node := range g.Nodes() {
		if !emb.Has(node) {
			continue
		}
		if hasExcludedSuffix(node, opts.ExcludedSuffixes) {
			continue
		}
		eligible = append(eligible, node)
	}
	if len(eligible) < 2 {
		return result, nil
	}

	vectors := make([][]float32, len(eligible))
	for i, node := range eligible {
		vectors[i] = emb.Get(node)
	}

	pairs := similarity.SimilarPairs(vectors, threshold)
	if len(pairs) == 0 {
		return result, nil
	}

	// Greedy walk in similarity order. Only removed nodes are claimed: a
	// removed node cannot merge again within the pass, while a kept node may
	// absorb several duplicates.
	claimed := make(map[string]struct{})
	substitution := make(map[string]string)
	for _, pair := range pairs {
		a, b := eligible[pair.I], eligible[pair.J]
		if _, ok := claimed[a]; ok {
			continue
		}
		if _, ok := claimed[b]; ok {
			continue
		}

		degA, degB := g.Degree(a), g.Degree(b)
		// Higher degree wins; on a tie, the pair's canonical lower-index
		// position is kept.
		kept, removed := a, b
		keptDeg, removedDeg := degA, degB
		if degB > degA {
			kept, removed = b, a
			keptDeg, removedDeg = degB, degA
		}

		claimed[removed] = struct{}{}
		substitution[removed] = kept
		result.Records = append(result.Records, MergeRecord{
			Kept:          kept,
			Removed:       removed,
			Score:         pair.Score,
			KeptDegree:    keptDeg,
			RemovedDegree: removedDeg,
		})
		s.logger.Debug("merging nodes",
			"kept", kept, "removed", removed, "score", pair.Score)
	}
	if len(substitution) == 0 {
		return result, nil
	}

	// A node kept by an early pair can lose a later, higher-degree pair.
	// Resolve such chains so every mapping targets a surviving node. Removed
	// nodes are claimed and never kept afterwards, so chains cannot cycle.
	for removed, kept := range substitution {
		for {
			next, ok := substitution[kept]
			if !ok {
				break
			}
			kept = next
		}
		substitution[removed] = kept
	}

	// Rewrite every edge through the substitution map; an edge left with
	// fewer than 2 distinct members no longer models a relation and is
	// dropped.
	for _, id := range outGraph.Edges() {
		members := outGraph.EdgeNodes(id)
		rewritten := make(map[string]struct{}, len(members))
		changed := false
		for _, n := range members {
			if kept, ok := substitution[n]; ok {
				n = kept
				changed = true
			}
			rewritten[n] = struct{}{}
		}
		if !changed {
			continue
		}
		if len(rewritten) < 2 {
			outGraph.RemoveEdge(id)
			result.EdgesRemoved++
			continue
		}
		distinct := make([]string, 0, len(rewritten))
		for n := range rewritten {
			distinct = append(distinct, n)
		}
		meta, hasMeta := outGraph.Meta(id)
		outGraph.AddEdge(id, distinct)
		if hasMeta {
			outGraph.SetMeta(id, rewriteMeta(meta, substitution))
		}
	}

	removedNodes := make([]string, 0, len(substitution))
	for removed := range substitution {
		removedNodes = append(removedNodes, removed)
	}
	outEmb.Remove(removedNodes...)

	result.Merges = len(result.Records)
	result.NodesRemoved = len(removedNodes)

	if opts.RecomputeEmbeddings {
		if err := s.recomputeAbsorbers(ctx, result); err != nil {
			return nil, err
		}
	}

	s.logger.Info("simplification pass complete",
		"merges", result.Merges,
		"nodes_removed", result.NodesRemoved,
		"edges_removed", result.EdgesRemoved)
	return result, nil
}

// recomputeAbsorbers re-embeds every kept node that absorbed a merge.
func (s *Simplifier) recomputeAbsorbers(ctx context.Context, result *Result) error {
	if s.embedder == nil {
		return fmt.Errorf("embedding recomputation requested but no embedder configured")
	}

	seen := make(map[string]struct{})
	var absorbers []string
	for _, rec := range result.Records {
		if _, ok := seen[rec.Kept]; ok {
			continue
		}
		seen[rec.Kept] = struct{}{}
		// An absorber may itself have been removed by a later pair.
		if result.Graph.HasNode(rec.Kept) {
			absorbers = append(absorbers, rec.Kept)
		}
	}
	if len(absorbers) == 0 {
		return nil
	}

	vectors, err := s.embedder.Embed(ctx, absorbers)
	if err != nil {
		return fmt.Errorf("failed to recompute embeddings: %w", err)
	}
	for i, node := range absorbers {
		if err := result.Embeddings.Set(node, vectors[i]); err != nil {
			return err
		}
		result.EmbeddingsRecomputed++
	}
	return nil
}

func hasExcludedSuffix(node string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if suffix != "" && strings.HasSuffix(node, suffix) {
			return true
		}
	}
	return false
}

// rewriteMeta substitutes merged-away nodes in the structured source/target
// lists so evidence sentences keep referring to surviving nodes.
func rewriteMeta(meta hypergraph.EdgeMeta, substitution map[string]string) hypergraph.EdgeMeta {
	meta.Sources = substituteAll(meta.Sources, substitution)
	meta.Targets = substituteAll(meta.Targets, substitution)
	return meta
}

func substituteAll(names []string, substitution map[string]string) []string {
	if len(names) == 0 {
		return names
	}
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if kept, ok := substitution[n]; ok {
			n = kept
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
