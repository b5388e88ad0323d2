// Package scoring implements the multi-factor document scoring pipeline:
// content-quality heuristics, freshness decay, engagement caps, and
// query-relevance blending. Everything here is pure computation over data the
// caller already fetched: no I/O, safe for concurrent use.
package scoring

import (
	"context"
	"time"

	"github.com/kailas-cloud/docrank/internal/domain"
)

// FreshnessDecay holds the age decay horizons in days.
type FreshnessDecay struct {
	// AgeDays is the horizon over which the creation-age score decays to 0.
	AgeDays float64
	// StaleDays is the horizon over which the last-update score decays to 0.
	StaleDays float64
}

// DefaultFreshnessDecay decays age over ~2 years and staleness over ~3 months.
func DefaultFreshnessDecay() FreshnessDecay {
	return FreshnessDecay{AgeDays: 730, StaleDays: 90}
}

// EngagementCaps are the per-metric saturation points.
type EngagementCaps struct {
	Views    float64
	Likes    float64
	Comments float64
}

// DefaultEngagementCaps returns the knowledge-base tuning.
func DefaultEngagementCaps() EngagementCaps {
	return EngagementCaps{Views: 5000, Likes: 500, Comments: 100}
}

// Scorer computes a full ScoreBreakdown per document.
type Scorer struct {
	similarity *Similarity
	weights    domain.Weights
	decay      FreshnessDecay
	caps       EngagementCaps
	now        func() time.Time
}

// NewScorer creates a scorer with the given relevance backend and weights.
func NewScorer(similarity *Similarity, weights domain.Weights) *Scorer {
	return &Scorer{
		similarity: similarity,
		weights:    weights,
		decay:      DefaultFreshnessDecay(),
		caps:       DefaultEngagementCaps(),
		now:        time.Now,
	}
}

// WithFreshnessDecay overrides the freshness horizons.
func (s *Scorer) WithFreshnessDecay(d FreshnessDecay) *Scorer {
	if d.AgeDays > 0 && d.StaleDays > 0 {
		s.decay = d
	}
	return s
}

// WithEngagementCaps overrides the engagement saturation points.
func (s *Scorer) WithEngagementCaps(c EngagementCaps) *Scorer {
	if c.Views > 0 && c.Likes > 0 && c.Comments > 0 {
		s.caps = c
	}
	return s
}

// WithClock overrides the freshness reference clock (tests).
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// Score computes the full breakdown for one document. An empty query yields
// the neutral relevance 0.5 for every document.
func (s *Scorer) Score(ctx context.Context, doc domain.Document, query string) domain.ScoreBreakdown {
	b := domain.ScoreBreakdown{
		KnowledgeQuality: knowledgeQuality(doc.Content),
		Completeness:     completeness(doc.Content),
		Relevance:        s.similarity.Relevance(ctx, doc.Content, query),
		Freshness:        s.freshness(doc),
		Engagement:       s.engagement(doc),
	}
	b.Overall = s.weights.Combine(b)
	return b
}

// Similarity exposes the underlying pairwise similarity scorer.
func (s *Scorer) Similarity() *Similarity { return s.similarity }

// freshness blends creation-age decay with last-update decay. Documents with
// unknown timestamps are treated as maximally fresh rather than penalized.
func (s *Scorer) freshness(doc domain.Document) float64 {
	if !doc.HasTimestamps() {
		return 1.0
	}
	now := s.now()

	ageDays := now.Sub(doc.CreatedAt).Hours() / 24
	ageScore := maxFloat(0, 1-ageDays/s.decay.AgeDays)

	staleDays := now.Sub(doc.UpdatedAt).Hours() / 24
	updateScore := maxFloat(0, 1-staleDays/s.decay.StaleDays)

	return 0.4*ageScore + 0.6*updateScore
}

// engagement saturates each metric at its cap; comments weigh most, they
// indicate discussion and improvement.
func (s *Scorer) engagement(doc domain.Document) float64 {
	viewScore := minFloat(float64(doc.Views)/s.caps.Views, 1)
	likeScore := minFloat(float64(doc.Likes)/s.caps.Likes, 1)
	commentScore := minFloat(float64(doc.Comments)/s.caps.Comments, 1)
	return 0.3*viewScore + 0.3*likeScore + 0.4*commentScore
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
