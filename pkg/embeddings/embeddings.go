// Package embeddings stores node embedding vectors alongside a hypergraph.
//
// A Store maps node identifiers to fixed-dimension float32 vectors. All
// vectors in one store share a single dimensionality; a mismatch is a caller
// error and is reported, never silently coerced. Stores are populated by an
// external embedding step, pruned whenever nodes are removed from the
// associated graph, and merged across partial results with last-writer-wins
// semantics.
package embeddings

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrDimensionMismatch is returned when a vector's length disagrees with the
// store's established dimensionality.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Store maps node identifiers to embedding vectors of one shared dimension.
type Store struct {
	dim     int
	vectors map[string][]float32
}

// NewStore creates an empty store. The dimensionality is fixed by the first
// vector added.
func NewStore() *Store {
	return &Store{vectors: make(map[string][]float32)}
}

// Set records the vector for a node, replacing any previous value.
func (s *Store) Set(node string, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty vector for node %q", ErrDimensionMismatch, node)
	}
	if s.dim == 0 {
		s.dim = len(vector)
	} else if len(vector) != s.dim {
		return fmt.Errorf("%w: node %q has %d dimensions, store has %d",
			ErrDimensionMismatch, node, len(vector), s.dim)
	}
	s.vectors[node] = vector
	return nil
}

// Get returns the vector for a node, or nil if absent.
func (s *Store) Get(node string) []float32 {
	return s.vectors[node]
}

// Has reports whether the node has a stored vector.
func (s *Store) Has(node string) bool {
	_, ok := s.vectors[node]
	return ok
}

// Len returns the number of stored vectors.
func (s *Store) Len() int {
	return len(s.vectors)
}

// Dimension returns the shared vector dimensionality, 0 for an empty store.
func (s *Store) Dimension() int {
	return s.dim
}

// Nodes returns the stored node identifiers in lexicographic order.
func (s *Store) Nodes() []string {
	nodes := make([]string, 0, len(s.vectors))
	for n := range s.vectors {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// Remove deletes the vectors for the given nodes. Unknown nodes are ignored.
func (s *Store) Remove(nodes ...string) {
	for _, n := range nodes {
		delete(s.vectors, n)
	}
}

// Keep drops every vector whose node is not in the given set.
func (s *Store) Keep(nodes []string) {
	keep := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		keep[n] = struct{}{}
	}
	for n := range s.vectors {
		if _, ok := keep[n]; !ok {
			delete(s.vectors, n)
		}
	}
}

// Merge copies other's vectors into s with last-writer-wins semantics: on a
// shared node, other's vector replaces the existing one. Returns an error if
// the stores disagree on dimensionality.
func (s *Store) Merge(other *Store) error {
	if other == nil {
		return nil
	}
	for _, n := range other.Nodes() {
		if err := s.Set(n, other.Get(n)); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy.
func (s *Store) Clone() *Store {
	out := &Store{dim: s.dim, vectors: make(map[string][]float32, len(s.vectors))}
	for n, v := range s.vectors {
		cp := make([]float32, len(v))
		copy(cp, v)
		out.vectors[n] = cp
	}
	return out
}

// MarshalJSON serializes the store as a flat node -> vector map, the
// compatibility format shared with the graph's JSON persistence.
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.vectors)
}

// UnmarshalJSON loads a flat node -> vector map, validating that all vectors
// share one dimensionality.
func (s *Store) UnmarshalJSON(data []byte) error {
	var raw map[string][]float32
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := NewStore()
	// Insert in sorted order so the reported offender is deterministic when
	// the input mixes dimensions.
	keys := make([]string, 0, len(raw))
	for n := range raw {
		keys = append(keys, n)
	}
	sort.Strings(keys)
	for _, n := range keys {
		if err := out.Set(n, raw[n]); err != nil {
			return err
		}
	}
	*s = *out
	return nil
}
