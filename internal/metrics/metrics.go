// Package metrics defines the Prometheus instruments. Registration is
// explicit from main, no init() magic.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ScoringDuration observes full-breakdown scoring latency per document
	// batch operation.
	ScoringDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docrank",
			Name:      "scoring_duration_seconds",
			Help:      "Document scoring duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"}, // "rank" / "find_similar" / "score"
	)

	// DocumentsScored counts individually scored documents.
	DocumentsScored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docrank",
			Name:      "documents_scored_total",
			Help:      "Total number of documents scored",
		},
	)

	// IndexFallbackTotal counts retrievals that degraded from the vector
	// index to a full scan.
	IndexFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docrank",
			Name:      "index_fallback_total",
			Help:      "Total retrievals that fell back to full-scan ranking",
		},
	)

	// EmbeddingRequestsTotal counts remote embedding provider calls.
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docrank",
			Name:      "embedding_requests_total",
			Help:      "Total number of remote embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	// EmbeddingCacheTotal counts embedding cache hits and misses.
	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docrank",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var coreRegistered bool

// RegisterCoreMetrics registers the scoring and embedding metrics. Must be
// called once from main.
func RegisterCoreMetrics() {
	if coreRegistered {
		return
	}
	prometheus.MustRegister(ScoringDuration)
	prometheus.MustRegister(DocumentsScored)
	prometheus.MustRegister(IndexFallbackTotal)
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	coreRegistered = true
}
