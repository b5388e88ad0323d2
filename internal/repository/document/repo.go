// Package document implements the document repository over Redis hashes.
package document

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/docrank/internal/domain"
)

// store is the consumer interface for document storage (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HIncrBy(ctx context.Context, key, field string, delta int64) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements the document repository contracts of the usecase layer.
type Repo struct {
	store  store
	prefix string
}

// New creates a document repository. keyPrefix namespaces all keys.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix + "doc:"}
}

// Upsert stores a document. Returns true when the document was created.
func (r *Repo) Upsert(ctx context.Context, doc *domain.Document) (bool, error) {
	key := r.key(doc.ID)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	fields, err := buildHashFields(doc)
	if err != nil {
		return false, fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}
	return !exists, nil
}

// Get returns a document by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.Document, error) {
	key := r.key(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domain.Document{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	return parseHashFields(id, m), nil
}

// List returns documents ordered by ID with offset/limit pagination.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]domain.Document, error) {
	keys, err := r.allKeys(ctx)
	if err != nil {
		return nil, err
	}

	if offset >= len(keys) {
		return []domain.Document{}, nil
	}
	keys = keys[offset:]
	if limit > 0 && limit < len(keys) {
		keys = keys[:limit]
	}

	return r.fetch(ctx, keys)
}

// ListAll returns every stored document, ordered by ID. The full-scan
// retrieval fallback depends on this path staying index-free.
func (r *Repo) ListAll(ctx context.Context) ([]domain.Document, error) {
	keys, err := r.allKeys(ctx)
	if err != nil {
		return nil, err
	}
	return r.fetch(ctx, keys)
}

// Count returns the number of stored documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	keys, err := r.allKeys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Delete removes a document.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.key(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// IncrCounter atomically bumps one of the engagement counters
// (views/likes/comments).
func (r *Repo) IncrCounter(ctx context.Context, id, counter string, delta int64) error {
	switch counter {
	case fieldViews, fieldLikes, fieldComments:
	default:
		return fmt.Errorf("unknown counter %q", counter)
	}
	if err := r.store.HIncrBy(ctx, r.key(id), counter, delta); err != nil {
		return fmt.Errorf("hincrby %s %s: %w", id, counter, err)
	}
	return nil
}

func (r *Repo) key(id string) string { return r.prefix + id }

// IDFromKey strips the key prefix, recovering the document ID.
func (r *Repo) IDFromKey(key string) string { return strings.TrimPrefix(key, r.prefix) }

func (r *Repo) allKeys(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *Repo) fetch(ctx context.Context, keys []string) ([]domain.Document, error) {
	if len(keys) == 0 {
		return []domain.Document{}, nil
	}
	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}

	docs := make([]domain.Document, 0, len(maps))
	for i, m := range maps {
		if len(m) == 0 {
			// Deleted between SCAN and HGETALL.
			continue
		}
		docs = append(docs, parseHashFields(r.IDFromKey(keys[i]), m))
	}
	return docs, nil
}
