package rank

import (
	"context"

	"github.com/kailas-cloud/docrank/internal/domain"
)

// Scorer computes a full score breakdown for one document against an
// optional query ("" = no query).
type Scorer interface {
	Score(ctx context.Context, doc domain.Document, query string) domain.ScoreBreakdown
}
