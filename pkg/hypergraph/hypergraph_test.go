package hypergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoEdgeGraph() *Hypergraph {
	return FromIncidence(map[string][]string{
		"e1": {"A", "B", "C"},
		"e2": {"B", "C", "D"},
	})
}

func TestDegreeAndNeighbors(t *testing.T) {
	g := twoEdgeGraph()

	assert.Equal(t, 2, g.Degree("B"))
	assert.Equal(t, 1, g.Degree("A"))
	assert.Equal(t, 0, g.Degree("missing"))

	assert.Equal(t, []string{"B", "C"}, g.Neighbors("A"))
	assert.Equal(t, []string{"A", "C", "D"}, g.Neighbors("B"))
	assert.Nil(t, g.Neighbors("missing"))
}

func TestAddEdgeReplacesMembership(t *testing.T) {
	g := New()
	g.AddEdge("e1", []string{"A", "B"})
	g.AddEdge("e1", []string{"C"})

	assert.Equal(t, []string{"C"}, g.EdgeNodes("e1"))
	assert.False(t, g.HasNode("A"))
}

func TestAddEdgeEmptyIsNoOp(t *testing.T) {
	g := New()
	g.AddEdge("e1", nil)
	assert.False(t, g.HasEdge("e1"))
	assert.Equal(t, 0, g.NumEdges())
}

func TestRemoveNodeDropsEmptiedEdges(t *testing.T) {
	g := FromIncidence(map[string][]string{
		"solo": {"A"},
		"pair": {"A", "B"},
	})

	g.RemoveNode("A")

	assert.False(t, g.HasEdge("solo"))
	assert.Equal(t, []string{"B"}, g.EdgeNodes("pair"))
	assert.False(t, g.HasNode("A"))
}

func TestRemoveNodeUnknownIsNoOp(t *testing.T) {
	g := twoEdgeGraph()
	g.RemoveNode("missing")
	assert.Equal(t, 2, g.NumEdges())
	assert.Equal(t, 4, g.NumNodes())
}

func TestEdgeNodesUnknownEdge(t *testing.T) {
	g := twoEdgeGraph()
	assert.Nil(t, g.EdgeNodes("missing"))
}

func TestAdjacencyInvalidation(t *testing.T) {
	g := twoEdgeGraph()

	// Force the adjacency index to build, then mutate and re-read.
	require.Equal(t, 2, g.Degree("B"))
	g.AddEdge("e3", []string{"B", "E"})
	assert.Equal(t, 3, g.Degree("B"))
	assert.Equal(t, []string{"A", "C", "D", "E"}, g.Neighbors("B"))

	g.RemoveEdge("e3")
	assert.Equal(t, 2, g.Degree("B"))
	assert.False(t, g.HasNode("E"))
}

func TestCloneIsIndependent(t *testing.T) {
	g := twoEdgeGraph()
	g.SetMeta("e1", EdgeMeta{Relation: "contains"})

	cp := g.Clone()
	cp.RemoveNode("A")
	cp.SetMeta("e2", EdgeMeta{Relation: "other"})

	assert.True(t, g.HasNode("A"))
	_, ok := g.Meta("e2")
	assert.False(t, ok)

	m, ok := cp.Meta("e1")
	require.True(t, ok)
	assert.Equal(t, "contains", m.Relation)
}

func TestMetaForUnknownEdgeIgnored(t *testing.T) {
	g := New()
	g.SetMeta("missing", EdgeMeta{Relation: "x"})
	_, ok := g.Meta("missing")
	assert.False(t, ok)
}
