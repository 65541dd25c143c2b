package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/soundprediction/legame/pkg/embeddings"
	"github.com/soundprediction/legame/pkg/hypergraph"
)

// snapshotJSON is the single-file layout. The graph serializes itself with
// the incidence map under "incidence_dict"; embeddings are a flat node map.
type snapshotJSON struct {
	Graph      *hypergraph.Hypergraph `json:"graph"`
	Embeddings *embeddings.Store      `json:"embeddings,omitempty"`
}

// JSONStore persists the snapshot as one JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a store writing to the given file path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Save writes the snapshot atomically via a temp file and rename.
func (s *JSONStore) Save(ctx context.Context, g *hypergraph.Hypergraph, emb *embeddings.Store) error {
	data, err := json.MarshalIndent(snapshotJSON{Graph: g, Embeddings: emb}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}
	return nil
}

// Load reads the snapshot back. A missing embeddings section yields an empty
// store rather than nil.
func (s *JSONStore) Load(ctx context.Context) (*hypergraph.Hypergraph, *embeddings.Store, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	snapshot := snapshotJSON{
		Graph:      hypergraph.New(),
		Embeddings: embeddings.NewStore(),
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return snapshot.Graph, snapshot.Embeddings, nil
}

// Close is a no-op for the file backend.
func (s *JSONStore) Close() error { return nil }
