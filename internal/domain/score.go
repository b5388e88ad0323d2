package domain

import (
	"fmt"
	"math"
)

// ScoreBreakdown is the per-document scoring result. Every field is in [0,1];
// Overall is a convex combination of the five sub-scores. Computed on demand,
// never persisted.
type ScoreBreakdown struct {
	Overall          float64 `json:"overall_score"`
	KnowledgeQuality float64 `json:"knowledge_quality_score"`
	Completeness     float64 `json:"completeness_score"`
	Relevance        float64 `json:"relevance_score"`
	Freshness        float64 `json:"freshness_score"`
	Engagement       float64 `json:"engagement_score"`
}

// RankedResult is a scored document. Distance is only meaningful for
// similarity queries, where it equals 1 - relevance (lower = more similar).
type RankedResult struct {
	Document Document
	Scores   ScoreBreakdown
	Distance float64
}

// Weights are the overall-score combination weights. They must sum to 1.0 so
// that Overall stays in [0,1].
type Weights struct {
	KnowledgeQuality float64
	Completeness     float64
	Relevance        float64
	Freshness        float64
	Engagement       float64
}

// DefaultWeights returns the knowledge-base tuning: quality dominates,
// engagement matters least.
func DefaultWeights() Weights {
	return Weights{
		KnowledgeQuality: 0.35,
		Completeness:     0.25,
		Relevance:        0.20,
		Freshness:        0.15,
		Engagement:       0.05,
	}
}

// Validate checks that all weights are non-negative and sum to 1.0.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"knowledge_quality": w.KnowledgeQuality,
		"completeness":      w.Completeness,
		"relevance":         w.Relevance,
		"freshness":         w.Freshness,
		"engagement":        w.Engagement,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s must be non-negative, got %f", name, v)
		}
	}
	sum := w.KnowledgeQuality + w.Completeness + w.Relevance + w.Freshness + w.Engagement
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("weights must sum to 1.0, got %f", sum)
	}
	return nil
}

// Combine applies the weights to a breakdown's sub-scores and returns the
// overall score.
func (w Weights) Combine(b ScoreBreakdown) float64 {
	return w.KnowledgeQuality*b.KnowledgeQuality +
		w.Completeness*b.Completeness +
		w.Relevance*b.Relevance +
		w.Freshness*b.Freshness +
		w.Engagement*b.Engagement
}
