package document

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/kailas-cloud/docrank/internal/domain"
)

// Hash field names. Counters are plain integers so HINCRBY works on them.
const (
	fieldTitle     = "title"
	fieldContent   = "content"
	fieldTags      = "tags"
	fieldKB        = "knowledge_base_id"
	fieldViews     = "views"
	fieldLikes     = "likes"
	fieldComments  = "comments"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

// buildHashFields flattens a Document into HSET fields. Tags are stored as a
// JSON array; tag values may contain any separator character.
func buildHashFields(doc *domain.Document) (map[string]string, error) {
	tags, err := json.Marshal(doc.Tags)
	if err != nil {
		return nil, err
	}

	m := map[string]string{
		fieldTitle:    doc.Title,
		fieldContent:  doc.Content,
		fieldTags:     string(tags),
		fieldViews:    strconv.FormatInt(doc.Views, 10),
		fieldLikes:    strconv.FormatInt(doc.Likes, 10),
		fieldComments: strconv.FormatInt(doc.Comments, 10),
	}
	if doc.KnowledgeBaseID != "" {
		m[fieldKB] = doc.KnowledgeBaseID
	}
	if !doc.CreatedAt.IsZero() {
		m[fieldCreatedAt] = doc.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !doc.UpdatedAt.IsZero() {
		m[fieldUpdatedAt] = doc.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return m, nil
}

// parseHashFields rebuilds a Document from its hash representation.
// Unparseable fields hydrate to zero values rather than failing the read.
func parseHashFields(id string, m map[string]string) domain.Document {
	doc := domain.Document{
		ID:              id,
		Title:           m[fieldTitle],
		Content:         m[fieldContent],
		KnowledgeBaseID: m[fieldKB],
	}

	if raw, ok := m[fieldTags]; ok && raw != "" {
		_ = json.Unmarshal([]byte(raw), &doc.Tags)
	}
	doc.Views = parseInt(m[fieldViews])
	doc.Likes = parseInt(m[fieldLikes])
	doc.Comments = parseInt(m[fieldComments])
	doc.CreatedAt = parseTime(m[fieldCreatedAt])
	doc.UpdatedAt = parseTime(m[fieldUpdatedAt])
	return doc
}

func parseInt(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
