package chi

import (
	"time"

	"github.com/kailas-cloud/docrank/internal/domain"
)

// DocumentRequest is the write payload for create and update.
type DocumentRequest struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Tags            []string `json:"tags"`
	KnowledgeBaseID string   `json:"knowledge_base_id,omitempty"`
}

// DocumentResponse is the read view of a stored document.
type DocumentResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	Tags            []string   `json:"tags"`
	KnowledgeBaseID string     `json:"knowledge_base_id,omitempty"`
	Views           int64      `json:"views"`
	Likes           int64      `json:"likes"`
	Comments        int64      `json:"comments"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// DocumentListResponse is a page of documents.
type DocumentListResponse struct {
	Items  []DocumentResponse `json:"items"`
	Total  int                `json:"total"`
	Offset int                `json:"offset"`
	Limit  int                `json:"limit"`
}

// SimilarityResponse is the pairwise similarity of two documents.
type SimilarityResponse struct {
	SimilarityScore float64 `json:"similarity_score"`
}

// SimilarSearchRequest asks for the k documents most similar to Content.
type SimilarSearchRequest struct {
	Content string `json:"content"`
	K       int    `json:"k"`
}

// RankRequest asks for the whole corpus ranked against Query.
type RankRequest struct {
	Query string `json:"query"`
}

// RankedItem is one scored document in a ranking or similarity response.
type RankedItem struct {
	Document DocumentResponse      `json:"document"`
	Scores   domain.ScoreBreakdown `json:"scores"`
	Distance *float64              `json:"distance,omitempty"`
}

// RankedListResponse is an ordered list of scored documents.
type RankedListResponse struct {
	Items []RankedItem `json:"items"`
	Total int          `json:"total"`
}

// EngagementRequest names the counter to bump.
type EngagementRequest struct {
	Counter string `json:"counter"`
}

// ErrorResponse is the error payload for all non-2xx responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeDocumentNotFound = "document_not_found"
	codeProviderError    = "embedding_provider_error"
	codeInternalError    = "internal_error"
)

func documentToDTO(doc *domain.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:              doc.ID,
		Title:           doc.Title,
		Content:         doc.Content,
		Tags:            doc.Tags,
		KnowledgeBaseID: doc.KnowledgeBaseID,
		Views:           doc.Views,
		Likes:           doc.Likes,
		Comments:        doc.Comments,
	}
	if !doc.CreatedAt.IsZero() {
		t := doc.CreatedAt.UTC()
		resp.CreatedAt = &t
	}
	if !doc.UpdatedAt.IsZero() {
		t := doc.UpdatedAt.UTC()
		resp.UpdatedAt = &t
	}
	return resp
}

func documentFromDTO(req DocumentRequest) domain.Document {
	return domain.Document{
		ID:              req.ID,
		Title:           req.Title,
		Content:         req.Content,
		Tags:            req.Tags,
		KnowledgeBaseID: req.KnowledgeBaseID,
	}
}

func rankedToDTO(results []domain.RankedResult, withDistance bool) RankedListResponse {
	items := make([]RankedItem, len(results))
	for i := range results {
		items[i] = RankedItem{
			Document: documentToDTO(&results[i].Document),
			Scores:   results[i].Scores,
		}
		if withDistance {
			d := results[i].Distance
			items[i].Distance = &d
		}
	}
	return RankedListResponse{Items: items, Total: len(items)}
}
