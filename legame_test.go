package legame

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/legame/pkg/embeddings"
	"github.com/soundprediction/legame/pkg/hypergraph"
)

// mockLLM returns canned responses keyed by a substring of the user prompt.
type mockLLM struct {
	responses  map[string]string // user-prompt substring -> response
	structured map[string]any    // user-prompt substring -> value to encode
	err        error
	calls      int
}

func (m *mockLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	for key, resp := range m.responses {
		if strings.Contains(userPrompt, key) {
			return resp, nil
		}
	}
	return "", fmt.Errorf("no canned response for prompt %q", userPrompt)
}

func (m *mockLLM) GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, out any) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	for key, value := range m.structured {
		if strings.Contains(userPrompt, key) {
			data, err := json.Marshal(value)
			if err != nil {
				return err
			}
			return json.Unmarshal(data, out)
		}
	}
	return fmt.Errorf("no canned structured response for prompt %q", userPrompt)
}

func (m *mockLLM) Close() error { return nil }

// mockEmbedder returns fixed vectors keyed by text.
type mockEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := m.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float32{1, 1}
		}
	}
	return out, nil
}

func (m *mockEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *mockEmbedder) Dimensions() int { return 2 }

func TestBuildHypergraph(t *testing.T) {
	facts := []Fact{
		{Sources: []string{"Marie Curie"}, Relation: "discovered", Targets: []string{"polonium", "radium"}},
		{Sources: []string{"Marie Curie"}, Relation: "won", Targets: []string{"Nobel Prize"}},
	}
	g := BuildHypergraph(facts, "c1")

	require.Equal(t, 2, g.NumEdges())
	assert.True(t, g.HasEdge("discovered_chunkc1_0"))
	assert.True(t, g.HasEdge("won_chunkc1_1"))
	assert.ElementsMatch(t,
		[]string{"Marie Curie", "polonium", "radium"},
		g.EdgeNodes("discovered_chunkc1_0"))

	meta, ok := g.Meta("discovered_chunkc1_0")
	require.True(t, ok)
	assert.Equal(t, "discovered", meta.Relation)
	assert.Equal(t, "c1", meta.ChunkID)
	assert.Equal(t, []string{"Marie Curie"}, meta.Sources)
}

func TestBuildHypergraphMultiWordRelation(t *testing.T) {
	g := BuildHypergraph([]Fact{
		{Sources: []string{"A"}, Relation: "is located in", Targets: []string{"B"}},
	}, "7")

	require.True(t, g.HasEdge("is_located_in_chunk7_0"))
	// The identifier round-trips through the legacy parser.
	assert.Equal(t, "is located in", g.RelationLabel("is_located_in_chunk7_0"))
}

func TestExtractFactsDropsIncomplete(t *testing.T) {
	llmClient := &mockLLM{structured: map[string]any{
		"some text": []Fact{
			{Sources: []string{"A"}, Relation: "r", Targets: []string{"B"}},
			{Sources: nil, Relation: "broken", Targets: []string{"B"}},
		},
	}}
	c, err := NewClient(llmClient, nil, nil, nil)
	require.NoError(t, err)

	facts, err := c.ExtractFacts(context.Background(), "some text")
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "r", facts[0].Relation)
}

func TestExtractFactsGenerationFailure(t *testing.T) {
	c, err := NewClient(&mockLLM{err: errors.New("model offline")}, nil, nil, nil)
	require.NoError(t, err)

	_, err = c.ExtractFacts(context.Background(), "text")
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestAddDocumentsPartialFailure(t *testing.T) {
	llmClient := &mockLLM{structured: map[string]any{
		"doc one": []Fact{{Sources: []string{"A"}, Relation: "links", Targets: []string{"B"}}},
		"doc two": []Fact{{Sources: []string{"B"}, Relation: "links", Targets: []string{"C"}}},
	}}
	c, err := NewClient(llmClient, nil, nil, nil)
	require.NoError(t, err)

	result, err := c.AddDocuments(context.Background(), []Document{
		{ID: "d1", Content: "doc one"},
		{ID: "d2", Content: "doc two"},
		{ID: "d3", Content: "unextractable"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Documents)
	assert.Equal(t, 2, result.Facts)
	require.Contains(t, result.Failed, "d3")
	assert.ElementsMatch(t, []string{"A", "B", "C"}, result.Graph.Nodes())
}

func TestAddDocumentsGeneratesIDs(t *testing.T) {
	llmClient := &mockLLM{structured: map[string]any{
		"content": []Fact{{Sources: []string{"X"}, Relation: "r", Targets: []string{"Y"}}},
	}}
	c, err := NewClient(llmClient, nil, nil, nil)
	require.NoError(t, err)

	result, err := c.AddDocuments(context.Background(), []Document{{Content: "content"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Documents)
	assert.Empty(t, result.Failed)
}

func TestEmbedNodes(t *testing.T) {
	g := hypergraph.FromIncidence(map[string][]string{"e1": {"A", "B"}})
	emb := embeddings.NewStore()
	require.NoError(t, emb.Set("A", []float32{1, 0}))

	c, err := NewClient(nil, &mockEmbedder{vectors: map[string][]float32{
		"B": {0, 1},
	}}, nil, nil)
	require.NoError(t, err)

	count, err := c.EmbedNodes(context.Background(), g, emb)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []float32{0, 1}, emb.Get("B"))
	// Existing vector untouched.
	assert.Equal(t, []float32{1, 0}, emb.Get("A"))
}

func TestEmbedNodesFailure(t *testing.T) {
	g := hypergraph.FromIncidence(map[string][]string{"e1": {"A", "B"}})
	c, err := NewClient(nil, &mockEmbedder{err: errors.New("unreachable")}, nil, nil)
	require.NoError(t, err)

	_, err = c.EmbedNodes(context.Background(), g, embeddings.NewStore())
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

func TestEmbedNodesNoEmbedder(t *testing.T) {
	c, err := NewClient(nil, nil, nil, nil)
	require.NoError(t, err)

	_, err = c.EmbedNodes(context.Background(), hypergraph.New(), embeddings.NewStore())
	assert.ErrorIs(t, err, ErrNoEmbedder)
}

func TestStats(t *testing.T) {
	g := hypergraph.FromIncidence(map[string][]string{
		"e1": {"A", "B", "C"},
		"e2": {"B", "C", "D"},
		"e3": {"X", "Y"},
	})
	stats := Stats(g)

	assert.Equal(t, 6, stats.Nodes)
	assert.Equal(t, 3, stats.Edges)
	assert.Equal(t, 2, stats.Components)
	assert.Equal(t, 4, stats.LargestComponent)
}
