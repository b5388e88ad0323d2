package domain

import (
	"math"
	"testing"
)

func TestDefaultWeights_Valid(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights invalid: %v", err)
	}
}

func TestWeights_Validate(t *testing.T) {
	bad := Weights{KnowledgeQuality: 0.5, Completeness: 0.5, Relevance: 0.5}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for weights summing above 1")
	}

	negative := Weights{KnowledgeQuality: 1.2, Completeness: -0.2}
	if err := negative.Validate(); err == nil {
		t.Error("expected error for negative weight")
	}
}

func TestWeights_Combine(t *testing.T) {
	b := ScoreBreakdown{
		KnowledgeQuality: 1,
		Completeness:     1,
		Relevance:        1,
		Freshness:        1,
		Engagement:       1,
	}
	if got := DefaultWeights().Combine(b); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("all-ones breakdown combined to %v, want 1", got)
	}

	only := Weights{Relevance: 1}
	b.Relevance = 0.3
	if got := only.Combine(b); got != 0.3 {
		t.Errorf("relevance-only combination = %v, want 0.3", got)
	}
}

func TestDocument_HasTimestamps(t *testing.T) {
	var doc Document
	if doc.HasTimestamps() {
		t.Error("zero timestamps must report false")
	}
}
