package evidence

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/legame/pkg/hypergraph"
)

func TestEdgeSentenceWithMeta(t *testing.T) {
	g := hypergraph.New()
	g.AddEdgeWithMeta("e1", []string{"Marie Curie", "polonium"}, hypergraph.EdgeMeta{
		Relation: "discovered",
		Sources:  []string{"Marie Curie"},
		Targets:  []string{"polonium"},
	})
	assert.Equal(t, "Marie Curie discovered polonium.", EdgeSentence(g, "e1"))
}

func TestEdgeSentenceLegacyIdentifier(t *testing.T) {
	g := hypergraph.New()
	g.AddEdge("works_at_chunkab12_0", []string{"Alice", "TechCorp"})
	assert.Equal(t, "Alice is related to TechCorp (works at).",
		EdgeSentence(g, "works_at_chunkab12_0"))
}

func TestEdgeSentenceLegacyIdentifierNotDirectional(t *testing.T) {
	// Legacy identifiers carry no source/target ordering, and membership is
	// sorted lexicographically; a directional rendering would invert this
	// relation ("Poland is named after polonium").
	g := hypergraph.New()
	g.AddEdge("is_named_after_chunkcd34_0", []string{"polonium", "Poland"})

	got := EdgeSentence(g, "is_named_after_chunkcd34_0")
	assert.Equal(t, "Poland is related to polonium (is named after).", got)
	assert.NotContains(t, got, "Poland is named after")
}

func TestEdgeSentenceLegacyIdentifierManyMembers(t *testing.T) {
	g := hypergraph.New()
	g.AddEdge("collaborate_on_chunkef56_0", []string{"Alice", "Bob", "Carol"})
	assert.Equal(t, "Alice, Bob, Carol are related (collaborate on).",
		EdgeSentence(g, "collaborate_on_chunkef56_0"))
}

func TestEdgeSentencePartialMetaNotDirectional(t *testing.T) {
	// Metadata without both endpoint lists carries no direction either.
	g := hypergraph.New()
	g.AddEdgeWithMeta("e1", []string{"polonium", "Poland"}, hypergraph.EdgeMeta{
		Relation: "is named after",
	})
	assert.Equal(t, "Poland is related to polonium (is named after).",
		EdgeSentence(g, "e1"))
}

func TestEdgeSentenceFallbacks(t *testing.T) {
	g := hypergraph.New()
	g.AddEdge("pair", []string{"A", "B"})
	g.AddEdge("triple", []string{"A", "B", "C"})

	assert.Equal(t, "A is related to B.", EdgeSentence(g, "pair"))
	assert.Equal(t, "A, B, C are related.", EdgeSentence(g, "triple"))
	assert.Empty(t, EdgeSentence(g, "missing"))
}

func TestPathSentences(t *testing.T) {
	g := hypergraph.New()
	g.AddEdgeWithMeta("e1", []string{"A", "B"}, hypergraph.EdgeMeta{
		Relation: "feeds", Sources: []string{"A"}, Targets: []string{"B"},
	})
	g.AddEdgeWithMeta("e2", []string{"B", "C"}, hypergraph.EdgeMeta{
		Relation: "drives", Sources: []string{"B"}, Targets: []string{"C"},
	})
	g.AddEdge("e3", []string{"A", "C"}) // A and C are not consecutive on the path

	got := PathSentences(g, []string{"A", "B", "C"})
	assert.Equal(t, []string{"A feeds B.", "B drives C."}, got)
}

func TestPathSentencesSharedEdgeOnce(t *testing.T) {
	// Both consecutive pairs share the same hyperedge; its sentence must
	// appear once.
	g := hypergraph.New()
	g.AddEdge("e1", []string{"A", "B", "C"})
	got := PathSentences(g, []string{"A", "B", "C"})
	require.Len(t, got, 1)
}

func TestNodeSentencesBounded(t *testing.T) {
	g := hypergraph.New()
	for i := 0; i < 5; i++ {
		g.AddEdge(fmt.Sprintf("e%d", i), []string{"hub", fmt.Sprintf("n%d", i)})
	}
	got := NodeSentences(g, "hub", 2)
	assert.Len(t, got, 2)
	assert.Empty(t, NodeSentences(g, "absent", 2))
}

func TestFormatContextWithinBudget(t *testing.T) {
	ctx, omitted := FormatContext([]string{"b.", "a."}, 100, "Evidence:")
	assert.Zero(t, omitted)
	assert.Equal(t, "Evidence:\na.\nb.", ctx)
}

func TestFormatContextTruncates(t *testing.T) {
	sentences := make([]string, 10)
	for i := range sentences {
		sentences[i] = fmt.Sprintf("sentence number %02d about something.", i)
	}
	// Each sentence is 35 chars plus newline; 30 tokens = 120 chars fits 3.
	ctx, omitted := FormatContext(sentences, 30, "")
	assert.Equal(t, 7, omitted)
	assert.Contains(t, ctx, "... and 7 more")
	assert.Equal(t, 3, strings.Count(ctx, "sentence number"))
}

func TestFormatContextDeduplicatesAndSorts(t *testing.T) {
	ctx1, _ := FormatContext([]string{"z.", "a.", "z."}, 100, "")
	ctx2, _ := FormatContext([]string{"a.", "z."}, 100, "")
	assert.Equal(t, ctx1, ctx2)
	assert.Equal(t, "a.\nz.", ctx1)
}

func TestFormatContextUnlimited(t *testing.T) {
	ctx, omitted := FormatContext([]string{"one.", "two."}, 0, "")
	assert.Zero(t, omitted)
	assert.Contains(t, ctx, "one.")
	assert.Contains(t, ctx, "two.")
}
