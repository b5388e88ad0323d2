// Package embcache caches remote embeddings in the key-value store so that
// repeated texts do not trigger repeated provider calls.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrank/internal/db"
	"github.com/kailas-cloud/docrank/internal/db/redis"
	"github.com/kailas-cloud/docrank/internal/metrics"
)

// BatchEmbedder vectorizes a batch of texts with a single provider call.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// KVStore is the subset of the store the cache needs.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache wraps a BatchEmbedder with a key-value cache keyed on a content hash.
type Cache struct {
	next   BatchEmbedder
	kv     KVStore
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// New creates an embedding cache. Entries expire after ttl; zero means no
// expiry.
func New(next BatchEmbedder, kv KVStore, keyPrefix string, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		next:   next,
		kv:     kv,
		prefix: keyPrefix + "emb:",
		ttl:    ttl,
		logger: logger,
	}
}

// EmbedBatch returns cached vectors where available and calls the underlying
// provider only for misses. Cache write failures are logged and ignored.
func (c *Cache) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	var misses []int
	for i, text := range texts {
		vec, ok := c.lookup(ctx, text)
		if ok {
			metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
			out[i] = vec
			continue
		}
		metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()
		misses = append(misses, i)
	}
	if len(misses) == 0 {
		return out, nil
	}

	batch := make([]string, len(misses))
	for j, i := range misses {
		batch[j] = texts[i]
	}
	vectors, err := c.next.EmbedBatch(ctx, batch)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(misses) {
		return nil, fmt.Errorf("embcache: got %d vectors for %d texts", len(vectors), len(misses))
	}

	for j, i := range misses {
		out[i] = vectors[j]
		c.store(ctx, texts[i], vectors[j])
	}
	return out, nil
}

func (c *Cache) lookup(ctx context.Context, text string) ([]float32, bool) {
	raw, err := c.kv.Get(ctx, c.key(text))
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Embedding cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return redis.BlobToVector(string(raw)), true
}

func (c *Cache) store(ctx context.Context, text string, vec []float32) {
	if err := c.kv.SetEx(ctx, c.key(text), []byte(redis.VectorToBlob(vec)), c.ttl); err != nil {
		c.logger.Warn("Embedding cache write failed", zap.Error(err))
	}
}

func (c *Cache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + hex.EncodeToString(sum[:])
}
