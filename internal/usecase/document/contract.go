package document

import (
	"context"

	"github.com/kailas-cloud/docrank/internal/domain"
)

// Repository is the storage contract for document CRUD.
type Repository interface {
	Upsert(ctx context.Context, doc *domain.Document) (created bool, err error)
	Get(ctx context.Context, id string) (domain.Document, error)
	List(ctx context.Context, offset, limit int) ([]domain.Document, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
	IncrCounter(ctx context.Context, id, counter string, delta int64) error
}

// VectorIndex mirrors document mutations into the nearest-neighbor backend.
// May be nil (full-scan-only deployment); failures degrade, they never fail
// the document operation.
type VectorIndex interface {
	Upsert(ctx context.Context, id string, vector []float32) error
	Delete(ctx context.Context, id string) error
}
