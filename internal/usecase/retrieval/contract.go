package retrieval

import (
	"context"

	"github.com/kailas-cloud/docrank/internal/domain"
)

// DocumentReader is the read-only repository contract. The retrieval engine
// never writes documents.
type DocumentReader interface {
	Get(ctx context.Context, id string) (domain.Document, error)
	ListAll(ctx context.Context) ([]domain.Document, error)
}

// VectorIndex is the optional nearest-neighbor backend. A nil index is a
// supported configuration; every failure degrades to the full-scan path.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, k int) ([]domain.IndexMatch, error)
}

// Ranker orders candidates best-first.
type Ranker interface {
	Rank(ctx context.Context, docs []domain.Document, query string) []domain.RankedResult
}

// Scorer computes a breakdown for one document (used by the score-by-id
// operation).
type Scorer interface {
	Score(ctx context.Context, doc domain.Document, query string) domain.ScoreBreakdown
}

// PairScorer computes pairwise document similarity.
type PairScorer interface {
	Between(ctx context.Context, a, b domain.Document) float64
}
