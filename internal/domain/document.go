package domain

import "time"

// Document is the read-side view of a knowledge-base entry consumed by the
// scoring pipeline. The core only ever reads these fields; all mutation goes
// through the repository layer.
type Document struct {
	ID              string
	Title           string
	Content         string
	Tags            []string
	KnowledgeBaseID string
	Views           int64
	Likes           int64
	Comments        int64
	// CreatedAt/UpdatedAt zero values mean "unknown"; freshness scoring then
	// treats the document as maximally fresh.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasTimestamps reports whether both lifecycle timestamps are known.
func (d *Document) HasTimestamps() bool {
	return !d.CreatedAt.IsZero() && !d.UpdatedAt.IsZero()
}

// IndexMatch is a single vector index hit: a document ID with its distance
// (lower = more similar).
type IndexMatch struct {
	ID       string
	Distance float64
}
