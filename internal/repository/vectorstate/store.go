// Package vectorstate persists fitted vectorizer snapshots in the KV store so
// a restarted process does not have to refit from scratch.
package vectorstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/docrank/internal/db"
	"github.com/kailas-cloud/docrank/internal/vectorizer/tfidf"
)

// store is the consumer interface for snapshot persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store reads and writes vectorizer snapshots under a fixed key.
type Store struct {
	store store
	key   string
}

var _ tfidf.StateStore = (*Store)(nil)

// New creates a snapshot store. keyPrefix is the deployment key namespace.
func New(s store, keyPrefix string) *Store {
	return &Store{store: s, key: keyPrefix + "vectorizer:state"}
}

// Save writes the snapshot as JSON.
func (s *Store) Save(ctx context.Context, snap tfidf.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.store.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot. The second return value is false when no snapshot
// has been persisted yet.
func (s *Store) Load(ctx context.Context) (tfidf.Snapshot, bool, error) {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return tfidf.Snapshot{}, false, nil
		}
		return tfidf.Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}

	var snap tfidf.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return tfidf.Snapshot{}, false, fmt.Errorf("parse snapshot: %w", err)
	}
	return snap, true, nil
}
