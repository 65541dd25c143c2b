package legame

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/legame/pkg/embeddings"
	"github.com/soundprediction/legame/pkg/hypergraph"
)

func retrievalGraph() *hypergraph.Hypergraph {
	g := hypergraph.New()
	g.AddEdgeWithMeta("discovered_chunk1_0", []string{"Marie Curie", "polonium"}, hypergraph.EdgeMeta{
		Relation: "discovered", ChunkID: "1",
		Sources: []string{"Marie Curie"}, Targets: []string{"polonium"},
	})
	g.AddEdgeWithMeta("named_after_chunk1_1", []string{"polonium", "Poland"}, hypergraph.EdgeMeta{
		Relation: "is named after", ChunkID: "1",
		Sources: []string{"polonium"}, Targets: []string{"Poland"},
	})
	return g
}

func TestRetrieveConnectsMatchedNodes(t *testing.T) {
	llmClient := &mockLLM{structured: map[string]any{
		"question": []string{"Marie Curie", "Poland"},
	}}
	c, err := NewClient(llmClient, nil, nil, nil)
	require.NoError(t, err)

	result, err := c.Retrieve(context.Background(), retrievalGraph(), embeddings.NewStore(),
		"question about them")
	require.NoError(t, err)

	assert.Equal(t, []string{"Marie Curie", "Poland"}, result.Keywords)
	require.Len(t, result.Matches, 2)
	require.NotEmpty(t, result.Paths)
	assert.Contains(t, result.Paths, []string{"Marie Curie", "polonium", "Poland"})
	assert.Contains(t, result.Sentences, "Marie Curie discovered polonium.")
	assert.Contains(t, result.Sentences, "polonium is named after Poland.")
	assert.Contains(t, result.Context, "Evidence:")
	assert.True(t, result.HasEvidence())
}

func TestRetrieveFallsBackToDirectEdges(t *testing.T) {
	// Single matched node with no counterpart: its incident edges still
	// provide evidence.
	llmClient := &mockLLM{structured: map[string]any{
		"question": []string{"Marie Curie"},
	}}
	c, err := NewClient(llmClient, nil, nil, nil)
	require.NoError(t, err)

	result, err := c.Retrieve(context.Background(), retrievalGraph(), embeddings.NewStore(),
		"question")
	require.NoError(t, err)

	assert.Empty(t, result.Paths)
	assert.Contains(t, result.Sentences, "Marie Curie discovered polonium.")
}

func TestRetrieveNoMatchesIsNotAnError(t *testing.T) {
	llmClient := &mockLLM{structured: map[string]any{
		"question": []string{"quantum chromodynamics"},
	}}
	c, err := NewClient(llmClient, nil, nil, nil)
	require.NoError(t, err)

	result, err := c.Retrieve(context.Background(), retrievalGraph(), embeddings.NewStore(),
		"question")
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	assert.False(t, result.HasEvidence())
}

func TestRetrieveKeywordExtractionFailure(t *testing.T) {
	c, err := NewClient(&mockLLM{err: errors.New("model offline")}, nil, nil, nil)
	require.NoError(t, err)

	_, err = c.Retrieve(context.Background(), retrievalGraph(), embeddings.NewStore(), "q")
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestRetrieveEmptyKeywordsFallBackToQuery(t *testing.T) {
	llmClient := &mockLLM{structured: map[string]any{
		"Marie Curie": []string{},
	}}
	c, err := NewClient(llmClient, nil, nil, nil)
	require.NoError(t, err)

	result, err := c.Retrieve(context.Background(), retrievalGraph(), embeddings.NewStore(),
		"Marie Curie")
	require.NoError(t, err)
	assert.Equal(t, []string{"Marie Curie"}, result.Keywords)
	require.NotEmpty(t, result.Matches)
}

func TestAnswerGeneratesFromEvidence(t *testing.T) {
	llmClient := &mockLLM{
		structured: map[string]any{
			"question": []string{"Marie Curie", "Poland"},
		},
		responses: map[string]string{
			"Question:": "Marie Curie discovered polonium, named after Poland.",
		},
	}
	c, err := NewClient(llmClient, nil, nil, nil)
	require.NoError(t, err)

	response, err := c.Answer(context.Background(), retrievalGraph(), embeddings.NewStore(),
		"question about the discovery")
	require.NoError(t, err)
	assert.Equal(t, "Marie Curie discovered polonium, named after Poland.", response.Answer)
	assert.NotEmpty(t, response.Sentences)
}

func TestAnswerWithoutEvidenceSkipsGeneration(t *testing.T) {
	llmClient := &mockLLM{structured: map[string]any{
		"question": []string{"nothing matching"},
	}}
	c, err := NewClient(llmClient, nil, nil, nil)
	require.NoError(t, err)

	before := llmClient.calls
	response, err := c.Answer(context.Background(), retrievalGraph(), embeddings.NewStore(),
		"question")
	require.NoError(t, err)
	assert.Contains(t, response.Answer, "No relevant context")
	// Only the keyword extraction call happened.
	assert.Equal(t, before+1, llmClient.calls)
}
