// Package db defines the storage contracts the repositories consume. The only
// implementation is Redis via rueidis, but consumers depend on the narrow
// sub-interfaces so tests can fake them.
package db

import (
	"context"
	"time"
)

// Store is the database facade combining all sub-interfaces.
type Store interface {
	Pinger
	KVStore
	HashStore
	VectorStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// HashStore provides hash-based document storage.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HIncrBy(ctx context.Context, key, field string, delta int64) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// VectorStore provides FT vector index lifecycle and KNN search.
type VectorStore interface {
	CreateVectorIndex(ctx context.Context, def *VectorIndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *KNNQuery) ([]KNNMatch, error)
}

// VectorIndexDefinition describes an FT index over hash keys with a single
// vector field.
type VectorIndexDefinition struct {
	Name        string
	Prefix      string
	VectorField string
	Dim         int
	// M and EFConstruct are HNSW build parameters; zero keeps server defaults.
	M           int
	EFConstruct int
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName   string
	VectorField string
	Vector      []float32
	K           int
}

// KNNMatch is a single KNN hit: the hash key and the reported vector distance.
type KNNMatch struct {
	Key      string
	Distance float64
}
