package tfidf

import (
	"context"
	"errors"
	"math"
	"testing"
)

var corpus = []string{
	"machine learning models train on data",
	"deep learning networks process data",
	"databases index documents for search",
}

// memStore is an in-memory StateStore.
type memStore struct {
	snap    Snapshot
	ok      bool
	saveErr error
	saves   int
}

func (m *memStore) Save(_ context.Context, snap Snapshot) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = snap
	m.ok = true
	return nil
}

func (m *memStore) Load(_ context.Context) (Snapshot, bool, error) {
	return m.snap, m.ok, nil
}

func TestEmbed_FixedDimension(t *testing.T) {
	v := New(8, nil)
	if err := v.Fit(context.Background(), corpus); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	out := v.Embed(context.Background(), []string{"data models", ""})
	if len(out) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(out))
	}
	for i, vec := range out {
		if len(vec) != 8 {
			t.Errorf("vector %d has dimension %d, want 8", i, len(vec))
		}
	}
}

func TestEmbed_UnfitDegradesToZero(t *testing.T) {
	v := New(4, nil)
	// Stopword-only input cannot fit a vocabulary.
	out := v.Embed(context.Background(), []string{"the of and"})
	for i, f := range out[0] {
		if f != 0 {
			t.Fatalf("entry %d = %v, want zero vector", i, f)
		}
	}
}

func TestEmbed_LazyFitOnFirstBatch(t *testing.T) {
	v := New(16, nil)
	out := v.Embed(context.Background(), corpus)

	nonZero := false
	for _, vec := range out {
		for _, f := range vec {
			if f != 0 {
				nonZero = true
			}
		}
	}
	if !nonZero {
		t.Fatal("lazy fit produced only zero vectors")
	}
}

func TestEmbed_L2Normalized(t *testing.T) {
	v := New(16, nil)
	if err := v.Fit(context.Background(), corpus); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	vec := v.Embed(context.Background(), []string{"learning data models"})[0]
	var norm float64
	for _, f := range vec {
		norm += float64(f) * float64(f)
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-5 {
		t.Errorf("norm = %v, want 1", math.Sqrt(norm))
	}
}

func TestFit_Deterministic(t *testing.T) {
	a := New(8, nil)
	b := New(8, nil)
	if err := a.Fit(context.Background(), corpus); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if err := b.Fit(context.Background(), corpus); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	va := a.Embed(context.Background(), []string{"learning data"})[0]
	vb := b.Embed(context.Background(), []string{"learning data"})[0]
	for i := range va {
		if va[i] != vb[i] {
			t.Fatalf("entry %d differs: %v vs %v", i, va[i], vb[i])
		}
	}
}

func TestFit_TruncatesVocabulary(t *testing.T) {
	v := New(2, nil)
	if err := v.Fit(context.Background(), corpus); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	// "data" and "learning" appear in two documents each; everything else in
	// one. They are the only terms that survive a dimension of 2.
	vec := v.Embed(context.Background(), []string{"databases search documents"})[0]
	for i, f := range vec {
		if f != 0 {
			t.Errorf("truncated term leaked into entry %d: %v", i, f)
		}
	}
	kept := v.Embed(context.Background(), []string{"learning data"})[0]
	zero := true
	for _, f := range kept {
		if f != 0 {
			zero = false
		}
	}
	if zero {
		t.Error("high-frequency terms should survive truncation")
	}
}

func TestFit_EmptyCorpus(t *testing.T) {
	v := New(4, nil)
	if err := v.Fit(context.Background(), nil); err == nil {
		t.Error("expected error for empty corpus")
	}
}

func TestStateStore_PersistsOnce(t *testing.T) {
	store := &memStore{}
	v := New(8, nil).WithStateStore(context.Background(), store)

	if err := v.Fit(context.Background(), corpus); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if err := v.Fit(context.Background(), corpus); err != nil {
		t.Fatalf("refit: %v", err)
	}
	if store.saves != 1 {
		t.Errorf("expected exactly one snapshot save, got %d", store.saves)
	}
}

func TestStateStore_RestoreSkipsPersistAndFit(t *testing.T) {
	store := &memStore{}
	first := New(8, nil).WithStateStore(context.Background(), store)
	if err := first.Fit(context.Background(), corpus); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	restored := New(8, nil).WithStateStore(context.Background(), store)
	va := first.Embed(context.Background(), []string{"learning data"})[0]
	vb := restored.Embed(context.Background(), []string{"learning data"})[0]
	for i := range va {
		if va[i] != vb[i] {
			t.Fatalf("restored embedding differs at %d: %v vs %v", i, va[i], vb[i])
		}
	}
	if store.saves != 1 {
		t.Errorf("restored vectorizer must not re-persist, saves = %d", store.saves)
	}
}

func TestStateStore_DimensionMismatchDiscarded(t *testing.T) {
	store := &memStore{
		snap: Snapshot{Dimension: 4, Terms: []string{"data"}, IDF: []float64{1}},
		ok:   true,
	}
	v := New(8, nil).WithStateStore(context.Background(), store)

	// The incompatible snapshot is discarded; the vectorizer stays unfit and
	// lazily fits on first use.
	out := v.Embed(context.Background(), corpus)
	if len(out[0]) != 8 {
		t.Fatalf("dimension = %d, want configured 8", len(out[0]))
	}
}

func TestStateStore_SaveFailureIsNonFatal(t *testing.T) {
	store := &memStore{saveErr: errors.New("storage down")}
	v := New(8, nil).WithStateStore(context.Background(), store)
	if err := v.Fit(context.Background(), corpus); err != nil {
		t.Fatalf("Fit must succeed despite persistence failure: %v", err)
	}
}
