package domain

import "context"

// Vectorizer is the shared text vectorization contract between layers.
//
// Embed never fails: a vectorization failure degrades to all-zero vectors of
// dimension Dimension() so downstream scoring keeps working (cosine similarity
// against a zero vector is 0). Two vectors are only comparable when produced
// by the same vectorizer instance in the same fit state.
type Vectorizer interface {
	// Fit builds term statistics over the corpus and fixes the vocabulary.
	// Refitting replaces prior state.
	Fit(ctx context.Context, corpus []string) error
	// Embed returns one vector per input text, each of exactly Dimension()
	// entries.
	Embed(ctx context.Context, texts []string) [][]float32
	// Dimension returns the fixed output dimension D.
	Dimension() int
}

// NormalizeDim forces a vector to exactly dim entries: shorter vectors are
// right-padded with zeros, longer ones truncated.
func NormalizeDim(v []float32, dim int) []float32 {
	if len(v) == dim {
		return v
	}
	out := make([]float32, dim)
	copy(out, v)
	return out
}

// IsZeroVector reports whether every entry of v is zero.
func IsZeroVector(v []float32) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}
