// Package index implements the pluggable vector index over Redis FT.SEARCH.
// Vectors live in their own hash keyspace mirroring document mutations; the
// retrieval engine treats every failure here as recoverable and falls back to
// a full scan.
package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/docrank/internal/db"
	"github.com/kailas-cloud/docrank/internal/domain"
	dbredis "github.com/kailas-cloud/docrank/internal/db/redis"
)

const vectorField = "vector"

// store is the consumer interface for the vector index (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
	CreateVectorIndex(ctx context.Context, def *db.VectorIndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) ([]db.KNNMatch, error)
}

// HNSWConfig holds index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Index is a Redis-backed vector index keyed by document ID.
type Index struct {
	store  store
	name   string
	prefix string
	dim    int
	hnsw   HNSWConfig
}

// New creates a vector index handle. keyPrefix namespaces the vector keys.
func New(s store, keyPrefix string, dim int) *Index {
	return &Index{
		store:  s,
		name:   strings.ReplaceAll(keyPrefix, ":", "_") + "vector_idx",
		prefix: keyPrefix + "vec:",
		dim:    dim,
	}
}

// WithHNSW overrides HNSW build parameters.
func (i *Index) WithHNSW(cfg HNSWConfig) *Index {
	i.hnsw = cfg
	return i
}

// Ensure creates the FT index if it does not exist yet.
func (i *Index) Ensure(ctx context.Context) error {
	exists, err := i.store.IndexExists(ctx, i.name)
	if err != nil {
		return fmt.Errorf("probe index %s: %w", i.name, err)
	}
	if exists {
		return nil
	}

	def := &db.VectorIndexDefinition{
		Name:        i.name,
		Prefix:      i.prefix,
		VectorField: vectorField,
		Dim:         i.dim,
		M:           i.hnsw.M,
		EFConstruct: i.hnsw.EFConstruct,
	}
	if err := i.store.CreateVectorIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", i.name, err)
	}
	return nil
}

// Upsert stores or replaces the vector for a document ID.
func (i *Index) Upsert(ctx context.Context, id string, vector []float32) error {
	if len(vector) != i.dim {
		return fmt.Errorf("vector dimension %d, index expects %d", len(vector), i.dim)
	}
	fields := map[string]string{vectorField: dbredis.VectorToBlob(vector)}
	if err := i.store.HSet(ctx, i.prefix+id, fields); err != nil {
		return fmt.Errorf("%w: upsert vector %s: %w", domain.ErrIndexUnavailable, id, err)
	}
	return nil
}

// Delete removes the vector for a document ID.
func (i *Index) Delete(ctx context.Context, id string) error {
	if err := i.store.Del(ctx, i.prefix+id); err != nil {
		return fmt.Errorf("%w: delete vector %s: %w", domain.ErrIndexUnavailable, id, err)
	}
	return nil
}

// Query returns the k nearest document IDs with cosine distances, nearest
// first.
func (i *Index) Query(ctx context.Context, vector []float32, k int) ([]domain.IndexMatch, error) {
	matches, err := i.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:   i.name,
		VectorField: vectorField,
		Vector:      vector,
		K:           k,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: knn query: %w", domain.ErrIndexUnavailable, err)
	}

	out := make([]domain.IndexMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, domain.IndexMatch{
			ID:       strings.TrimPrefix(m.Key, i.prefix),
			Distance: m.Distance,
		})
	}
	return out, nil
}
