package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/soundprediction/legame/pkg/embeddings"
	"github.com/soundprediction/legame/pkg/hypergraph"
)

var (
	keyGraph      = []byte("snapshot/graph")
	keyEmbeddings = []byte("snapshot/embeddings")
)

// BadgerStore persists the snapshot in an embedded Badger database. It holds
// a directory lock, so only one process may have the store open at a time.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens or creates a Badger database at the given directory.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Save writes graph and embeddings in one transaction.
func (s *BadgerStore) Save(ctx context.Context, g *hypergraph.Hypergraph, emb *embeddings.Store) error {
	graphData, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}
	embData, err := json.Marshal(emb)
	if err != nil {
		return fmt.Errorf("failed to marshal embeddings: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(keyGraph, graphData); err != nil {
			return err
		}
		return txn.Set(keyEmbeddings, embData)
	})
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot back. Returns ErrNotFound when no graph has been
// saved; missing embeddings yield an empty store.
func (s *BadgerStore) Load(ctx context.Context) (*hypergraph.Hypergraph, *embeddings.Store, error) {
	g := hypergraph.New()
	emb := embeddings.NewStore()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyGraph)
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, g)
		}); err != nil {
			return fmt.Errorf("failed to unmarshal graph: %w", err)
		}

		item, err = txn.Get(keyEmbeddings)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, emb); err != nil {
				return fmt.Errorf("failed to unmarshal embeddings: %w", err)
			}
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return g, emb, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
