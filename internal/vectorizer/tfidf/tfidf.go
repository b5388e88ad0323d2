// Package tfidf implements the corpus-statistics vectorizer: TF-IDF over a
// fixed-dimension vocabulary, fit lazily on the first embedded batch.
package tfidf

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrank/internal/domain"
	"github.com/kailas-cloud/docrank/internal/nlp"
)

// DefaultDimension matches the all-MiniLM-class embedding size the index
// schema defaults to.
const DefaultDimension = 384

// StateStore persists fitted vectorizer state across process restarts.
// Persistence is best effort; failures are logged and ignored.
type StateStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, bool, error)
}

// Snapshot is the serializable fit state.
type Snapshot struct {
	Dimension int       `json:"dimension"`
	Terms     []string  `json:"terms"`
	IDF       []float64 `json:"idf"`
}

// Vectorizer is a TF-IDF embedder with a fixed output dimension.
//
// Fit-state follows single-writer/multiple-reader discipline: Embed holds a
// read lock, Fit holds the write lock, so a refit can never be observed
// mid-update. An unfit vectorizer embeds everything to zero vectors; the
// first non-empty batch triggers a lazy fit over that batch.
type Vectorizer struct {
	dim    int
	state  StateStore
	logger *zap.Logger

	mu     sync.RWMutex
	vocab  map[string]int
	idf    []float64
	fitted bool

	persistOnce sync.Once
}

var _ domain.Vectorizer = (*Vectorizer)(nil)

// New creates an unfit vectorizer of the given dimension.
func New(dim int, logger *zap.Logger) *Vectorizer {
	if dim <= 0 {
		dim = DefaultDimension
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vectorizer{dim: dim, logger: logger}
}

// WithStateStore attaches snapshot persistence and tries to restore a
// previous fit. Restore failure is non-fatal.
func (v *Vectorizer) WithStateStore(ctx context.Context, s StateStore) *Vectorizer {
	v.state = s
	snap, ok, err := s.Load(ctx)
	if err != nil {
		v.logger.Warn("Failed to load vectorizer state", zap.Error(err))
		return v
	}
	if !ok {
		return v
	}
	if err := v.restore(snap); err != nil {
		v.logger.Warn("Discarding incompatible vectorizer state", zap.Error(err))
		return v
	}
	// State came from storage; no need to persist it again this process.
	v.persistOnce.Do(func() {})
	v.logger.Info("Restored vectorizer state",
		zap.Int("vocabulary", len(snap.Terms)),
		zap.Int("dimension", v.dim),
	)
	return v
}

// Dimension returns the fixed output dimension D.
func (v *Vectorizer) Dimension() int { return v.dim }

// Fit builds the vocabulary and IDF table from the corpus, replacing any
// prior state. Fitting the same corpus twice yields identical embeddings:
// term selection and ordering are fully deterministic.
func (v *Vectorizer) Fit(ctx context.Context, corpus []string) error {
	if len(corpus) == 0 {
		return fmt.Errorf("empty corpus")
	}

	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range nlp.Tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return fmt.Errorf("no tokens in corpus")
	}

	terms := selectTerms(df, v.dim)

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		vocab[term] = i
		// Smoothed IDF so corpus-wide terms keep a non-zero weight.
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	v.mu.Lock()
	v.vocab = vocab
	v.idf = idf
	v.fitted = true
	v.mu.Unlock()

	v.persist(ctx, terms, idf)
	return nil
}

// Embed returns one vector of exactly Dimension() entries per text. On the
// first call with an unfit vectorizer, the batch itself becomes the fit
// corpus; if fitting fails the batch degrades to zero vectors.
func (v *Vectorizer) Embed(ctx context.Context, texts []string) [][]float32 {
	v.mu.RLock()
	fitted := v.fitted
	v.mu.RUnlock()

	if !fitted {
		if err := v.Fit(ctx, texts); err != nil {
			v.logger.Warn("Lazy vectorizer fit failed, degrading to zero vectors",
				zap.Int("batch_size", len(texts)),
				zap.Error(err),
			)
			return zeroVectors(len(texts), v.dim)
		}
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = v.embedOne(text)
	}
	return out
}

// embedOne computes a single L2-normalized TF-IDF vector. Caller holds at
// least a read lock.
func (v *Vectorizer) embedOne(text string) []float32 {
	vec := make([]float32, v.dim)

	tf := make(map[int]int)
	total := 0
	for _, tok := range nlp.Tokenize(text) {
		if idx, ok := v.vocab[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}

	var norm float64
	for idx, count := range tf {
		w := (float64(count) / float64(total)) * v.idf[idx]
		vec[idx] = float32(w)
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for idx := range tf {
			vec[idx] = float32(float64(vec[idx]) / norm)
		}
	}
	return vec
}

// restore installs a snapshot as the current fit state.
func (v *Vectorizer) restore(snap Snapshot) error {
	if snap.Dimension != v.dim {
		return fmt.Errorf("snapshot dimension %d does not match configured %d", snap.Dimension, v.dim)
	}
	if len(snap.Terms) != len(snap.IDF) {
		return fmt.Errorf("snapshot terms/idf length mismatch: %d vs %d", len(snap.Terms), len(snap.IDF))
	}
	if len(snap.Terms) > v.dim {
		return fmt.Errorf("snapshot vocabulary %d exceeds dimension %d", len(snap.Terms), v.dim)
	}

	vocab := make(map[string]int, len(snap.Terms))
	for i, term := range snap.Terms {
		vocab[term] = i
	}

	v.mu.Lock()
	v.vocab = vocab
	v.idf = snap.IDF
	v.fitted = true
	v.mu.Unlock()
	return nil
}

// persist writes the snapshot at most once per process lifetime so racing
// first embeds do not hammer storage. A lost race between two fits is fine:
// whichever write lands last wins, and fit is idempotent for a given corpus.
func (v *Vectorizer) persist(ctx context.Context, terms []string, idf []float64) {
	if v.state == nil {
		return
	}
	v.persistOnce.Do(func() {
		snap := Snapshot{Dimension: v.dim, Terms: terms, IDF: idf}
		if err := v.state.Save(ctx, snap); err != nil {
			v.logger.Warn("Failed to persist vectorizer state", zap.Error(err))
			return
		}
		v.logger.Info("Persisted vectorizer state", zap.Int("vocabulary", len(terms)))
	})
}

// selectTerms keeps at most dim terms, preferring high document frequency and
// breaking ties lexicographically. The returned slice is sorted so the
// vocabulary index assignment is deterministic.
func selectTerms(df map[string]int, dim int) []string {
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > dim {
		terms = terms[:dim]
	}
	sort.Strings(terms)
	return terms
}

func zeroVectors(n, dim int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, dim)
	}
	return out
}
