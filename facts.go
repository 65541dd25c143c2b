package legame

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/soundprediction/legame/pkg/hypergraph"
	"github.com/soundprediction/legame/pkg/prompts"
	"github.com/soundprediction/legame/pkg/utils"
)

// Fact is one extracted relationship. Sources and targets are lists so a
// single fact can connect several nodes through one hyperedge.
type Fact struct {
	Sources  []string `json:"sources"`
	Relation string   `json:"relation"`
	Targets  []string `json:"targets"`
}

// Document is one unit of ingestion. An empty ID gets a generated one.
type Document struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// BuildResult reports a batch ingestion.
type BuildResult struct {
	Graph     *hypergraph.Hypergraph
	Facts     int
	Documents int
	// Failed lists documents whose extraction failed; the rest proceeded.
	Failed map[string]error
}

// BuildHypergraph turns facts into a hypergraph fragment. Each fact becomes
// one edge whose membership is the union of its sources and targets, with an
// identifier embedding the relation and provenance. Relation and provenance
// are also carried as structured edge metadata, so downstream code never has
// to parse the identifier.
func BuildHypergraph(facts []Fact, chunkID string) *hypergraph.Hypergraph {
	g := hypergraph.New()
	for i, fact := range facts {
		relation := strings.TrimSpace(fact.Relation)
		if relation == "" {
			relation = "is related to"
		}

		members := make([]string, 0, len(fact.Sources)+len(fact.Targets))
		members = append(members, fact.Sources...)
		members = append(members, fact.Targets...)

		id := fmt.Sprintf("%s_chunk%s_%d",
			strings.ReplaceAll(relation, " ", "_"), chunkID, i)
		g.AddEdgeWithMeta(id, members, hypergraph.EdgeMeta{
			Relation: relation,
			ChunkID:  chunkID,
			Sources:  fact.Sources,
			Targets:  fact.Targets,
		})
	}
	return g
}

// ExtractFacts extracts subject/relation/object facts from raw text via the
// LLM's structured output.
func (c *Client) ExtractFacts(ctx context.Context, text string) ([]Fact, error) {
	if c.llm == nil {
		return nil, ErrNoLLM
	}

	system, user := prompts.ExtractFacts(text)
	var facts []Fact
	if err := c.llm.GenerateStructured(ctx, system, user, &facts); err != nil {
		return nil, fmt.Errorf("%w: fact extraction: %w", ErrGenerationFailed, err)
	}

	// Drop facts an imprecise model left without endpoints.
	valid := facts[:0]
	for _, f := range facts {
		if len(f.Sources) > 0 && len(f.Targets) > 0 {
			valid = append(valid, f)
		}
	}
	return valid, nil
}

// AddDocuments extracts facts from each document concurrently and unions the
// fragments into one graph. Union is order-independent, so worker completion
// order does not affect the result. A failing document is recorded in
// BuildResult.Failed and skipped; the rest proceed.
func (c *Client) AddDocuments(ctx context.Context, docs []Document) (*BuildResult, error) {
	type fragment struct {
		graph *hypergraph.Hypergraph
		facts int
	}

	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = uuid.NewString()
		}
	}

	pool := utils.NewWorkerPool(c.config.MaxConcurrency, func(ctx context.Context, doc Document) (fragment, error) {
		facts, err := c.ExtractFacts(ctx, doc.Content)
		if err != nil {
			return fragment{}, err
		}
		return fragment{graph: BuildHypergraph(facts, doc.ID), facts: len(facts)}, nil
	})
	fragments, errs := pool.ProcessItems(ctx, docs)

	result := &BuildResult{
		Graph:  hypergraph.New(),
		Failed: make(map[string]error),
	}
	for i, frag := range fragments {
		if errs[i] != nil {
			result.Failed[docs[i].ID] = errs[i]
			c.logger.Warn("document extraction failed",
				"document", docs[i].ID, "error", errs[i])
			continue
		}
		result.Graph.UnionInPlace(frag.graph)
		result.Facts += frag.facts
		result.Documents++
	}

	c.logger.Info("batch ingestion complete",
		"documents", result.Documents,
		"failed", len(result.Failed),
		"facts", result.Facts,
		"nodes", result.Graph.NumNodes(),
		"edges", result.Graph.NumEdges())
	return result, nil
}
