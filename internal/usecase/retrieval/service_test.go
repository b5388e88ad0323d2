package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/docrank/internal/domain"
)

// --- Mocks ---

type mockDocs struct {
	byID       map[string]domain.Document
	listCalled bool
	getErr     error
}

func (m *mockDocs) Get(_ context.Context, id string) (domain.Document, error) {
	if m.getErr != nil {
		return domain.Document{}, m.getErr
	}
	doc, ok := m.byID[id]
	if !ok {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	return doc, nil
}

func (m *mockDocs) ListAll(_ context.Context) ([]domain.Document, error) {
	m.listCalled = true
	out := make([]domain.Document, 0, len(m.byID))
	for _, d := range m.byID {
		out = append(out, d)
	}
	return out, nil
}

type mockIndex struct {
	matches []domain.IndexMatch
	err     error
	lastK   int
	called  bool
}

func (m *mockIndex) Query(_ context.Context, _ []float32, k int) ([]domain.IndexMatch, error) {
	m.called = true
	m.lastK = k
	return m.matches, m.err
}

// relevanceByID ranks and scores from a fixed relevance table.
type relevanceByID map[string]float64

func (m relevanceByID) Rank(_ context.Context, docs []domain.Document, _ string) []domain.RankedResult {
	out := make([]domain.RankedResult, len(docs))
	for i, d := range docs {
		out[i] = domain.RankedResult{
			Document: d,
			Scores:   domain.ScoreBreakdown{Overall: m[d.ID], Relevance: m[d.ID]},
		}
	}
	return out
}

func (m relevanceByID) Score(_ context.Context, doc domain.Document, _ string) domain.ScoreBreakdown {
	return domain.ScoreBreakdown{Overall: m[doc.ID], Relevance: m[doc.ID]}
}

func (m relevanceByID) Between(_ context.Context, a, b domain.Document) float64 {
	return (m[a.ID] + m[b.ID]) / 2
}

type unitVectorizer struct{}

func (unitVectorizer) Fit(_ context.Context, _ []string) error { return nil }
func (unitVectorizer) Dimension() int                          { return 2 }
func (unitVectorizer) Embed(_ context.Context, texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out
}

type zeroVectorizer struct{ unitVectorizer }

func (zeroVectorizer) Embed(_ context.Context, texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0, 0}
	}
	return out
}

func threeDocs() *mockDocs {
	return &mockDocs{byID: map[string]domain.Document{
		"a": {ID: "a", Content: "alpha"},
		"b": {ID: "b", Content: "beta"},
		"c": {ID: "c", Content: "gamma"},
	}}
}

// --- Tests ---

func TestFindSimilar_OrdersByDistance(t *testing.T) {
	docs := threeDocs()
	scores := relevanceByID{"a": 0.2, "b": 0.9, "c": 0.5}
	svc := New(docs, nil, scores, scores, scores, unitVectorizer{}, nil)

	got, err := svc.FindSimilar(context.Background(), "query content", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for i, want := range []string{"b", "c", "a"} {
		if got[i].Document.ID != want {
			t.Errorf("position %d: got %s, want %s", i, got[i].Document.ID, want)
		}
	}
	if d := got[0].Distance; d != 1-0.9 {
		t.Errorf("distance = %v, want %v", d, 1-0.9)
	}
}

func TestFindSimilar_TrimsToK(t *testing.T) {
	docs := threeDocs()
	scores := relevanceByID{"a": 0.2, "b": 0.9, "c": 0.5}
	svc := New(docs, nil, scores, scores, scores, unitVectorizer{}, nil)

	got, err := svc.FindSimilar(context.Background(), "query", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Document.ID != "b" {
		t.Fatalf("expected single best result b, got %v", got)
	}
}

func TestFindSimilar_NonPositiveK(t *testing.T) {
	svc := New(threeDocs(), nil, relevanceByID{}, relevanceByID{}, relevanceByID{}, unitVectorizer{}, nil)
	got, err := svc.FindSimilar(context.Background(), "query", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result for k=0, got %d", len(got))
	}
}

func TestFindSimilar_UsesIndexCandidates(t *testing.T) {
	docs := threeDocs()
	index := &mockIndex{matches: []domain.IndexMatch{{ID: "b", Distance: 0.1}}}
	scores := relevanceByID{"b": 0.9}
	svc := New(docs, index, scores, scores, scores, unitVectorizer{}, nil)

	got, err := svc.FindSimilar(context.Background(), "query", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !index.called {
		t.Fatal("expected index query")
	}
	if index.lastK != 2*defaultOversample {
		t.Errorf("index k = %d, want oversampled %d", index.lastK, 2*defaultOversample)
	}
	if docs.listCalled {
		t.Error("full scan should not run when the index answers")
	}
	if len(got) != 1 || got[0].Document.ID != "b" {
		t.Fatalf("expected only the index candidate, got %v", got)
	}
}

func TestFindSimilar_IndexErrorFallsBackToScan(t *testing.T) {
	docs := threeDocs()
	index := &mockIndex{err: errors.New("index gone")}
	scores := relevanceByID{"a": 0.2, "b": 0.9, "c": 0.5}
	svc := New(docs, index, scores, scores, scores, unitVectorizer{}, nil)

	got, err := svc.FindSimilar(context.Background(), "query", 3)
	if err != nil {
		t.Fatalf("fallback must not surface the index error: %v", err)
	}
	if !docs.listCalled {
		t.Error("expected full scan fallback")
	}
	if len(got) != 3 {
		t.Errorf("expected all documents via fallback, got %d", len(got))
	}
}

func TestFindSimilar_ZeroQueryVectorSkipsIndex(t *testing.T) {
	docs := threeDocs()
	index := &mockIndex{}
	scores := relevanceByID{"a": 0.2, "b": 0.9, "c": 0.5}
	svc := New(docs, index, scores, scores, scores, zeroVectorizer{}, nil)

	if _, err := svc.FindSimilar(context.Background(), "query", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index.called {
		t.Error("zero query vector must not hit the index")
	}
	if !docs.listCalled {
		t.Error("expected full scan")
	}
}

func TestFindSimilar_SkipsStaleIndexEntries(t *testing.T) {
	docs := threeDocs()
	index := &mockIndex{matches: []domain.IndexMatch{
		{ID: "deleted", Distance: 0.0},
		{ID: "a", Distance: 0.2},
	}}
	scores := relevanceByID{"a": 0.7}
	svc := New(docs, index, scores, scores, scores, unitVectorizer{}, nil)

	got, err := svc.FindSimilar(context.Background(), "query", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Document.ID != "a" {
		t.Fatalf("stale entry should be skipped, got %v", got)
	}
}

func TestScore_MissingDocument(t *testing.T) {
	scores := relevanceByID{}
	svc := New(&mockDocs{byID: nil}, nil, scores, scores, scores, unitVectorizer{}, nil)

	_, err := svc.Score(context.Background(), "ghost", "")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestSimilarityBetween_MissingDocumentIsZero(t *testing.T) {
	scores := relevanceByID{"a": 0.8}
	svc := New(threeDocs(), nil, scores, scores, scores, unitVectorizer{}, nil)

	got, err := svc.SimilarityBetween(context.Background(), "a", "ghost")
	if err != nil {
		t.Fatalf("missing document must not error: %v", err)
	}
	if got != 0.0 {
		t.Errorf("similarity = %v, want 0.0", got)
	}
}

func TestSimilarityBetween_BothPresent(t *testing.T) {
	scores := relevanceByID{"a": 0.8, "b": 0.4}
	svc := New(threeDocs(), nil, scores, scores, scores, unitVectorizer{}, nil)

	got, err := svc.SimilarityBetween(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.6 {
		t.Errorf("similarity = %v, want 0.6", got)
	}
}

func TestRankAll_ScoresWholeCorpus(t *testing.T) {
	docs := threeDocs()
	scores := relevanceByID{"a": 0.2, "b": 0.9, "c": 0.5}
	svc := New(docs, nil, scores, scores, scores, unitVectorizer{}, nil)

	got, err := svc.RankAll(context.Background(), "query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 ranked documents, got %d", len(got))
	}
	if !docs.listCalled {
		t.Error("expected full corpus listing")
	}
}
