// Package store persists hypergraph snapshots and their embeddings.
//
// Three backends are provided: a single-file JSON store whose on-disk layout
// keeps the incidence map under the "incidence_dict" key for compatibility
// with existing dumps, a Badger store for larger graphs, and a Neo4j store
// for deployments that want the graph queryable with Cypher.
package store

import (
	"context"
	"errors"

	"github.com/soundprediction/legame/pkg/embeddings"
	"github.com/soundprediction/legame/pkg/hypergraph"
)

// ErrNotFound is returned when no snapshot exists at the configured location.
var ErrNotFound = errors.New("snapshot not found")

// Store persists one graph snapshot with its embeddings.
type Store interface {
	// Save persists the snapshot, replacing any previous one.
	Save(ctx context.Context, g *hypergraph.Hypergraph, emb *embeddings.Store) error

	// Load retrieves the snapshot. Returns ErrNotFound when none exists.
	Load(ctx context.Context) (*hypergraph.Hypergraph, *embeddings.Store, error)

	// Close releases backend resources.
	Close() error
}

// Open selects a backend by driver name: "json", "badger" or "neo4j". For
// neo4j the path is the connection URI and the connection is unauthenticated;
// use OpenNeo4jStore directly to pass credentials.
func Open(driver, path string) (Store, error) {
	switch driver {
	case "", "json":
		return NewJSONStore(path), nil
	case "badger":
		return OpenBadgerStore(path)
	case "neo4j":
		return OpenNeo4jStore(path, "", "", "")
	default:
		return nil, errors.New("unknown store driver: " + driver)
	}
}
