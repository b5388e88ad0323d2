// Package document handles knowledge-base document CRUD with vector index
// mirroring. This is the collaborator layer around the scoring core: boundary
// validation (including the at-least-one-tag invariant) lives here, not in
// the scorers.
package document

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrank/internal/domain"
)

// Engagement counter names accepted by RecordEngagement.
const (
	CounterViews    = "views"
	CounterLikes    = "likes"
	CounterComments = "comments"
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service handles document lifecycle operations.
type Service struct {
	repo     Repository
	index    VectorIndex // nil = no index mirroring
	vec      domain.Vectorizer
	logger   *zap.Logger
	now      func() time.Time
	pageSize int
	maxPage  int
}

// New creates a document service. index may be nil.
func New(repo Repository, index VectorIndex, vec domain.Vectorizer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		index:    index,
		vec:      vec,
		logger:   logger,
		now:      time.Now,
		pageSize: defaultPageSize,
		maxPage:  maxPageSize,
	}
}

// WithPagination configures the default and maximum page sizes for List.
func (s *Service) WithPagination(defaultSize, maxSize int) *Service {
	if defaultSize > 0 {
		s.pageSize = defaultSize
	}
	if maxSize > 0 {
		s.maxPage = maxSize
	}
	return s
}

// WithClock overrides the timestamp clock (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create validates and stores a new document, then mirrors its vector into
// the index. Timestamps are set server-side.
func (s *Service) Create(ctx context.Context, doc domain.Document) (domain.Document, error) {
	if err := validate(&doc); err != nil {
		return domain.Document{}, err
	}

	now := s.now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := s.repo.Upsert(ctx, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("store document: %w", err)
	}

	s.mirrorUpsert(ctx, &doc)
	return doc, nil
}

// Update replaces a document's content fields, bumps UpdatedAt, and
// re-mirrors the vector.
func (s *Service) Update(ctx context.Context, doc domain.Document) (domain.Document, error) {
	if err := validate(&doc); err != nil {
		return domain.Document{}, err
	}

	current, err := s.repo.Get(ctx, doc.ID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("get document %s: %w", doc.ID, err)
	}

	// Engagement counters and creation time are owned by storage.
	doc.CreatedAt = current.CreatedAt
	doc.Views = current.Views
	doc.Likes = current.Likes
	doc.Comments = current.Comments
	doc.UpdatedAt = s.now().UTC()

	if _, err := s.repo.Upsert(ctx, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("store document: %w", err)
	}

	s.mirrorUpsert(ctx, &doc)
	return doc, nil
}

// Get returns a document by ID and records the view.
func (s *Service) Get(ctx context.Context, id string) (domain.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}

	if err := s.repo.IncrCounter(ctx, id, CounterViews, 1); err != nil {
		// Lost view counts are acceptable; the read still succeeds.
		s.logger.Warn("Failed to record view", zap.String("id", id), zap.Error(err))
	} else {
		doc.Views++
	}
	return doc, nil
}

// List returns a page of documents ordered by ID.
func (s *Service) List(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = s.pageSize
	}
	if limit > s.maxPage {
		limit = s.maxPage
	}

	docs, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	return docs, total, nil
}

// Delete removes a document and its index entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}

	if s.index != nil {
		if err := s.index.Delete(ctx, id); err != nil {
			s.logger.Warn("Failed to delete vector from index",
				zap.String("id", id),
				zap.Error(err),
			)
		}
	}
	return nil
}

// RecordEngagement bumps one of the engagement counters.
func (s *Service) RecordEngagement(ctx context.Context, id, counter string) error {
	switch counter {
	case CounterViews, CounterLikes, CounterComments:
	default:
		return fmt.Errorf("%w: unknown counter %q", domain.ErrInvalidDocument, counter)
	}
	// Existence check so a typoed ID does not create a stray hash.
	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("get document %s: %w", id, err)
	}
	if err := s.repo.IncrCounter(ctx, id, counter, 1); err != nil {
		return fmt.Errorf("record %s for %s: %w", counter, id, err)
	}
	return nil
}

// mirrorUpsert embeds the content and upserts the vector. Index trouble is
// logged and swallowed: retrieval degrades to full scan, the write succeeds.
func (s *Service) mirrorUpsert(ctx context.Context, doc *domain.Document) {
	if s.index == nil {
		return
	}
	vectors := s.vec.Embed(ctx, []string{doc.Content})
	if err := s.index.Upsert(ctx, doc.ID, vectors[0]); err != nil {
		s.logger.Warn("Failed to mirror vector into index",
			zap.String("id", doc.ID),
			zap.Error(err),
		)
	}
}

// validate enforces the persistence invariants: well-formed ID, non-empty
// title and content, at least one non-blank tag.
func validate(doc *domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document ID is required", domain.ErrInvalidDocument)
	}
	if len(doc.ID) > 256 {
		return fmt.Errorf("%w: document ID too long (max 256)", domain.ErrInvalidDocument)
	}
	if !idPattern.MatchString(doc.ID) {
		return fmt.Errorf("%w: document ID must be alphanumeric with underscores and hyphens", domain.ErrInvalidDocument)
	}
	if strings.TrimSpace(doc.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidDocument)
	}
	if strings.TrimSpace(doc.Content) == "" {
		return fmt.Errorf("%w: content is required", domain.ErrInvalidDocument)
	}

	tags := make([]string, 0, len(doc.Tags))
	for _, t := range doc.Tags {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	if len(tags) == 0 {
		return fmt.Errorf("%w: at least one tag is required", domain.ErrInvalidDocument)
	}
	doc.Tags = tags
	return nil
}
