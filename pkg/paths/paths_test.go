package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/legame/pkg/hypergraph"
)

func chainGraph() *hypergraph.Hypergraph {
	return hypergraph.FromIncidence(map[string][]string{
		"e1": {"A", "B"},
		"e2": {"B", "C"},
	})
}

func TestFindPath(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		target    string
		maxLength int
		want      []string
	}{
		{"two hops within bound", "A", "C", 3, []string{"A", "B", "C"}},
		{"bound too tight", "A", "C", 2, nil},
		{"direct neighbor", "A", "B", 2, []string{"A", "B"}},
		{"same node", "B", "B", 1, []string{"B"}},
		{"absent source", "Z", "A", 3, nil},
		{"absent target", "A", "Z", 3, nil},
		{"zero bound", "A", "B", 0, nil},
	}

	f := New(chainGraph())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.FindPath(tt.source, tt.target, tt.maxLength))
		})
	}
}

func TestFindPathUnreachable(t *testing.T) {
	g := hypergraph.FromIncidence(map[string][]string{
		"e1": {"A", "B"},
		"e2": {"C", "D"},
	})
	assert.Nil(t, New(g).FindPath("A", "D", 10))
}

func TestFindPathPrefersShortest(t *testing.T) {
	// A-B-D is shorter than A-B-C-D? Both routes exist: A-C-D and A-B-D.
	// BFS must return a 3-node path, and with sorted adjacency the tie
	// resolves to the lexicographically earlier intermediate.
	g := hypergraph.FromIncidence(map[string][]string{
		"e1": {"A", "B"},
		"e2": {"A", "C"},
		"e3": {"B", "D"},
		"e4": {"C", "D"},
	})
	assert.Equal(t, []string{"A", "B", "D"}, New(g).FindPath("A", "D", 4))
}

func TestFindPathDeterministic(t *testing.T) {
	g := hypergraph.FromIncidence(map[string][]string{
		"e1": {"A", "B", "C"},
		"e2": {"B", "D"},
		"e3": {"C", "D"},
	})
	f := New(g)
	first := f.FindPath("A", "D", 4)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, f.FindPath("A", "D", 4))
	}
}

func TestFindShortestPathsPairwise(t *testing.T) {
	f := New(chainGraph())
	got := f.FindShortestPaths([]string{"A", "C"}, 3)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"A", "B", "C"}, got[0])
}

func TestFindShortestPathsCollapsesDuplicates(t *testing.T) {
	// The pairwise A-C path and the multi-target pass both discover
	// [A B C]; it must appear once.
	f := New(chainGraph())
	got := f.FindShortestPaths([]string{"A", "B", "C"}, 3)

	seen := make(map[string]int)
	for _, p := range got {
		key := ""
		for _, n := range p {
			key += n + "|"
		}
		seen[key]++
	}
	for key, count := range seen {
		assert.Equal(t, 1, count, "path %s duplicated", key)
	}
	assert.Contains(t, got, []string{"A", "B", "C"})
}

func TestFindShortestPathsMultiTarget(t *testing.T) {
	// hub connects all three targets; the multi-target pass surfaces paths
	// through it that touch two targets at once.
	g := hypergraph.FromIncidence(map[string][]string{
		"e1": {"X", "hub"},
		"e2": {"Y", "hub"},
		"e3": {"Z", "hub"},
	})
	got := New(g).FindShortestPaths([]string{"X", "Y", "Z"}, 3)

	assert.Contains(t, got, []string{"X", "hub", "Y"})
	assert.Contains(t, got, []string{"X", "hub", "Z"})
	assert.Contains(t, got, []string{"Y", "hub", "Z"})
}

func TestFindShortestPathsSkipsAbsentNodes(t *testing.T) {
	f := New(chainGraph())
	got := f.FindShortestPaths([]string{"A", "missing", "C"}, 3)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"A", "B", "C"}, got[0])
}
