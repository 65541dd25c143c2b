package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/legame/pkg/embeddings"
	"github.com/soundprediction/legame/pkg/hypergraph"
)

func snapshot(t *testing.T) (*hypergraph.Hypergraph, *embeddings.Store) {
	t.Helper()
	g := hypergraph.New()
	g.AddEdgeWithMeta("e1", []string{"A", "B"}, hypergraph.EdgeMeta{
		Relation: "links", Sources: []string{"A"}, Targets: []string{"B"},
	})
	g.AddEdge("e2", []string{"B", "C"})

	emb := embeddings.NewStore()
	require.NoError(t, emb.Set("A", []float32{1, 0}))
	require.NoError(t, emb.Set("B", []float32{0, 1}))
	return g, emb
}

func roundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, _, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	g, emb := snapshot(t)
	require.NoError(t, s.Save(ctx, g, emb))

	gotGraph, gotEmb, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, g.Nodes(), gotGraph.Nodes())
	assert.Equal(t, g.Edges(), gotGraph.Edges())
	assert.Equal(t, g.EdgeNodes("e1"), gotGraph.EdgeNodes("e1"))

	meta, ok := gotGraph.Meta("e1")
	require.True(t, ok)
	assert.Equal(t, "links", meta.Relation)

	assert.Equal(t, emb.Len(), gotEmb.Len())
	assert.Equal(t, []float32{1, 0}, gotEmb.Get("A"))
}

func TestJSONStoreRoundTrip(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "snapshot.json"))
	defer s.Close()
	roundTrip(t, s)
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	s, err := OpenBadgerStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	roundTrip(t, s)
}

func TestJSONStoreOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewJSONStore(filepath.Join(t.TempDir(), "snapshot.json"))
	defer s.Close()

	g, emb := snapshot(t)
	require.NoError(t, s.Save(ctx, g, emb))

	g2 := hypergraph.FromIncidence(map[string][]string{"only": {"X", "Y"}})
	require.NoError(t, s.Save(ctx, g2, embeddings.NewStore()))

	got, gotEmb, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, got.Edges())
	assert.Zero(t, gotEmb.Len())
}

func TestOpenSelectsDriver(t *testing.T) {
	s, err := Open("json", filepath.Join(t.TempDir(), "x.json"))
	require.NoError(t, err)
	require.IsType(t, &JSONStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("bogus", "")
	assert.Error(t, err)
}
