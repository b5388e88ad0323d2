// Package retrieval selects candidate documents for a query and reranks them
// with the full scoring pipeline. Candidates come from the vector index when
// one is configured and healthy; the full-scan path is always a valid
// fallback and never depends on index health.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrank/internal/domain"
	"github.com/kailas-cloud/docrank/internal/metrics"
)

// defaultOversample controls how many index candidates are fetched per
// requested result. Reranking with the full scorer reorders the neighbor
// list, so the index is oversampled to compensate for the drift.
const defaultOversample = 4

// Service is the retrieval engine.
type Service struct {
	docs       DocumentReader
	index      VectorIndex // nil = full-scan only
	ranker     Ranker
	scorer     Scorer
	pairs      PairScorer
	vec        domain.Vectorizer
	oversample int
	logger     *zap.Logger
}

// New creates a retrieval engine. index may be nil.
func New(
	docs DocumentReader, index VectorIndex, ranker Ranker,
	scorer Scorer, pairs PairScorer, vec domain.Vectorizer,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		docs:       docs,
		index:      index,
		ranker:     ranker,
		scorer:     scorer,
		pairs:      pairs,
		vec:        vec,
		oversample: defaultOversample,
		logger:     logger,
	}
}

// WithOversample configures the index oversampling factor.
func (s *Service) WithOversample(n int) *Service {
	if n > 0 {
		s.oversample = n
	}
	return s
}

// FindSimilar returns the k documents most similar to the query content,
// sorted by ascending distance (1 - relevance).
func (s *Service) FindSimilar(ctx context.Context, content string, k int) ([]domain.RankedResult, error) {
	if k <= 0 {
		return []domain.RankedResult{}, nil
	}

	start := time.Now()
	defer func() {
		metrics.ScoringDuration.WithLabelValues("find_similar").Observe(time.Since(start).Seconds())
	}()

	candidates, err := s.candidates(ctx, content, k)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []domain.RankedResult{}, nil
	}

	ranked := s.ranker.Rank(ctx, candidates, content)
	for i := range ranked {
		ranked[i].Distance = 1 - ranked[i].Scores.Relevance
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked, nil
}

// RankAll scores the whole corpus against the query and returns it sorted by
// overall score descending.
func (s *Service) RankAll(ctx context.Context, query string) ([]domain.RankedResult, error) {
	docs, err := s.fullScan(ctx)
	if err != nil {
		return nil, err
	}
	return s.ranker.Rank(ctx, docs, query), nil
}

// GetDocument returns a document by ID. Absence surfaces as
// domain.ErrDocumentNotFound: this is the one lookup where the caller asked
// for a specific document to display.
func (s *Service) GetDocument(ctx context.Context, id string) (domain.Document, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return domain.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return doc, nil
}

// Score computes the full breakdown for one document against an optional
// query.
func (s *Service) Score(ctx context.Context, id, query string) (domain.ScoreBreakdown, error) {
	start := time.Now()
	defer func() {
		metrics.ScoringDuration.WithLabelValues("score").Observe(time.Since(start).Seconds())
	}()

	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return domain.ScoreBreakdown{}, fmt.Errorf("get document %s: %w", id, err)
	}
	metrics.DocumentsScored.Inc()
	return s.scorer.Score(ctx, doc, query), nil
}

// SimilarityBetween returns the pairwise similarity of two documents by ID.
// A missing document is treated as no evidence and yields 0.0, not an error.
func (s *Service) SimilarityBetween(ctx context.Context, id1, id2 string) (float64, error) {
	doc1, err := s.docs.Get(ctx, id1)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return 0.0, nil
		}
		return 0, fmt.Errorf("get document %s: %w", id1, err)
	}
	doc2, err := s.docs.Get(ctx, id2)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return 0.0, nil
		}
		return 0, fmt.Errorf("get document %s: %w", id2, err)
	}
	return s.pairs.Between(ctx, doc1, doc2), nil
}

// candidates picks the rerank candidate set: index neighbors when possible,
// otherwise every document. Index trouble is degraded latency, never a
// request error.
func (s *Service) candidates(ctx context.Context, content string, k int) ([]domain.Document, error) {
	if s.index == nil {
		return s.fullScan(ctx)
	}

	vectors := s.vec.Embed(ctx, []string{content})
	queryVec := vectors[0]
	if domain.IsZeroVector(queryVec) {
		// Degraded vectorizer output carries no signal for KNN.
		metrics.IndexFallbackTotal.Inc()
		return s.fullScan(ctx)
	}

	matches, err := s.index.Query(ctx, queryVec, k*s.oversample)
	if err != nil {
		s.logger.Warn("Vector index query failed, falling back to full scan",
			zap.Int("k", k),
			zap.Error(err),
		)
		metrics.IndexFallbackTotal.Inc()
		return s.fullScan(ctx)
	}

	docs := make([]domain.Document, 0, len(matches))
	for _, m := range matches {
		doc, err := s.docs.Get(ctx, m.ID)
		if err != nil {
			if errors.Is(err, domain.ErrDocumentNotFound) {
				// Stale index entry; the document was deleted.
				continue
			}
			return nil, fmt.Errorf("fetch candidate %s: %w", m.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Service) fullScan(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.docs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}
