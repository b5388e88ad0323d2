// Package rank orders candidate documents best-first by their overall score.
package rank

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kailas-cloud/docrank/internal/domain"
	"github.com/kailas-cloud/docrank/internal/metrics"
)

// defaultWorkers bounds the per-call scoring parallelism. Scoring is pure
// CPU work over already-fetched data, so a small pool is enough.
const defaultWorkers = 4

// Service ranks documents via a Scorer.
type Service struct {
	scorer  Scorer
	workers int
}

// New creates a ranking service.
func New(scorer Scorer) *Service {
	return &Service{scorer: scorer, workers: defaultWorkers}
}

// WithWorkers configures scoring parallelism.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// Rank scores every document against the query and returns the results
// sorted by overall score descending. The sort is stable: equal scores keep
// their input order, making the output deterministic. The input slice is
// never mutated; an empty candidate set yields an empty result.
func (s *Service) Rank(ctx context.Context, docs []domain.Document, query string) []domain.RankedResult {
	start := time.Now()
	defer func() {
		metrics.ScoringDuration.WithLabelValues("rank").Observe(time.Since(start).Seconds())
	}()

	results := make([]domain.RankedResult, len(docs))

	// Per-document scoring is independent; fan out over a bounded pool,
	// writing each result to its own slot so input order is preserved.
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, doc domain.Document) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = domain.RankedResult{
				Document: doc,
				Scores:   s.scorer.Score(ctx, doc, query),
			}
		}(i, doc)
	}
	wg.Wait()

	metrics.DocumentsScored.Add(float64(len(docs)))

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Scores.Overall > results[j].Scores.Overall
	})
	return results
}
