package scoring

import (
	"context"
	"math"

	"github.com/kailas-cloud/docrank/internal/domain"
	"github.com/kailas-cloud/docrank/internal/nlp"
)

// NeutralRelevance is returned when there is no query to rank against.
const NeutralRelevance = 0.5

// Relevance blend: salient-term overlap dominates, vector similarity refines.
const (
	termOverlapWeight   = 0.6
	vectorSimilarWeight = 0.4
)

// Similarity scores how relevant a document's content is to a query by
// blending salient-term Jaccard overlap with cosine similarity of the
// vectorized texts.
type Similarity struct {
	vec domain.Vectorizer
}

// NewSimilarity creates a similarity scorer on top of a vectorizer.
func NewSimilarity(vec domain.Vectorizer) *Similarity {
	return &Similarity{vec: vec}
}

// Relevance returns a score in [0,1]. An empty query yields the neutral
// constant 0.5: there is nothing to rank by.
func (s *Similarity) Relevance(ctx context.Context, content, query string) float64 {
	if query == "" {
		return NeutralRelevance
	}

	contentTerms := nlp.SalientTerms(content)
	queryTerms := nlp.SalientTerms(query)
	termScore := nlp.Jaccard(contentTerms, queryTerms)

	vectors := s.vec.Embed(ctx, []string{content, query})
	vecScore := Cosine(vectors[0], vectors[1])

	return clamp01(termOverlapWeight*termScore + vectorSimilarWeight*vecScore)
}

// Between returns the pairwise similarity of two documents. Both components
// of the blend are symmetric (Jaccard and cosine), so Between(a, b) ==
// Between(b, a) by construction.
func (s *Similarity) Between(ctx context.Context, a, b domain.Document) float64 {
	return s.Relevance(ctx, a.Content, b.Content)
}

// Distance converts pairwise similarity into a distance (lower = more
// similar).
func (s *Similarity) Distance(ctx context.Context, a, b domain.Document) float64 {
	return 1 - s.Between(ctx, a, b)
}

// Cosine returns the cosine similarity of two vectors clamped into [0,1].
// Zero vectors (the vectorizer's degraded output) always score 0.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
