// Package remote adapts a batch embedding provider to the Vectorizer
// contract. Provider failures degrade to zero vectors so scoring keeps
// working on term overlap alone.
package remote

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrank/internal/domain"
	"github.com/kailas-cloud/docrank/internal/vectorizer/tfidf"
)

// BatchEmbedder vectorizes a batch of texts with a single provider call.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Vectorizer implements domain.Vectorizer on top of a remote provider.
type Vectorizer struct {
	provider  BatchEmbedder
	dimension int
	logger    *zap.Logger
}

// New creates a remote-backed vectorizer producing vectors of the given
// dimension. Provider output is truncated or zero-padded to fit.
func New(provider BatchEmbedder, dimension int, logger *zap.Logger) *Vectorizer {
	if dimension <= 0 {
		dimension = tfidf.DefaultDimension
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vectorizer{provider: provider, dimension: dimension, logger: logger}
}

// Fit is a no-op: the remote model is already trained.
func (v *Vectorizer) Fit(_ context.Context, _ []string) error { return nil }

// Embed vectorizes texts via the provider. On failure every text maps to a
// zero vector.
func (v *Vectorizer) Embed(ctx context.Context, texts []string) [][]float32 {
	if len(texts) == 0 {
		return nil
	}
	vectors, err := v.provider.EmbedBatch(ctx, texts)
	if err != nil {
		v.logger.Warn("Remote embedding failed, degrading to zero vectors",
			zap.Int("batch_size", len(texts)),
			zap.Error(err),
		)
		return v.zeroVectors(len(texts))
	}
	out := make([][]float32, len(texts))
	for i, vec := range vectors {
		out[i] = domain.NormalizeDim(vec, v.dimension)
	}
	return out
}

// Dimension returns the fixed output vector dimension.
func (v *Vectorizer) Dimension() int { return v.dimension }

func (v *Vectorizer) zeroVectors(n int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, v.dimension)
	}
	return out
}
