// Package chi is the HTTP surface over the document and retrieval usecases.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	chiv5 "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docrank/internal/db"
	"github.com/kailas-cloud/docrank/internal/domain"
	documentuc "github.com/kailas-cloud/docrank/internal/usecase/document"
	retrievaluc "github.com/kailas-cloud/docrank/internal/usecase/retrieval"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the docrank API.
type Server struct {
	documents     *documentuc.Service
	retrieval     *retrievaluc.Service
	pinger        db.Pinger
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	documents *documentuc.Service,
	retrieval *retrievaluc.Service,
	pinger db.Pinger,
	logger *zap.Logger,
) *Server {
	s := &Server{
		documents: documents,
		retrieval: retrieval,
		pinger:    pinger,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError),
	}
	return s
}

// RegisterRoutes mounts all API routes on the given router. Middleware is the
// caller's concern.
func (s *Server) RegisterRoutes(r chiv5.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chiv5.Router) {
		r.Route("/documents", func(r chiv5.Router) {
			r.Post("/", s.CreateDocument)
			r.Get("/", s.ListDocuments)
			r.Route("/{id}", func(r chiv5.Router) {
				r.Get("/", s.GetDocument)
				r.Put("/", s.UpdateDocument)
				r.Delete("/", s.DeleteDocument)
				r.Get("/score", s.ScoreDocument)
				r.Post("/engagement", s.RecordEngagement)
				r.Get("/similarity/{other}", s.SimilarityBetween)
			})
		})
		r.Route("/search", func(r chiv5.Router) {
			r.Post("/similar", s.SearchSimilar)
			r.Post("/rank", s.RankDocuments)
		})
	})
}

// CreateDocument handles POST /api/v1/documents.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := s.documents.Create(r.Context(), documentFromDTO(req))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/documents/"+doc.ID)
	writeJSON(w, http.StatusCreated, documentToDTO(&doc))
}

// GetDocument handles GET /api/v1/documents/{id}. Reading a document records
// a view.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chiv5.URLParam(r, "id")

	doc, err := s.documents.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentToDTO(&doc))
}

// UpdateDocument handles PUT /api/v1/documents/{id}.
func (s *Server) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	req.ID = chiv5.URLParam(r, "id")

	doc, err := s.documents.Update(r.Context(), documentFromDTO(req))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentToDTO(&doc))
}

// DeleteDocument handles DELETE /api/v1/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.Delete(r.Context(), chiv5.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListDocuments handles GET /api/v1/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 0)

	docs, total, err := s.documents.List(r.Context(), offset, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]DocumentResponse, len(docs))
	for i := range docs {
		items[i] = documentToDTO(&docs[i])
	}

	writeJSON(w, http.StatusOK, DocumentListResponse{
		Items:  items,
		Total:  total,
		Offset: offset,
		Limit:  len(items),
	})
}

// ScoreDocument handles GET /api/v1/documents/{id}/score. The optional query
// parameter anchors the relevance component.
func (s *Server) ScoreDocument(w http.ResponseWriter, r *http.Request) {
	id := chiv5.URLParam(r, "id")
	query := r.URL.Query().Get("query")

	scores, err := s.retrieval.Score(r.Context(), id, query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scores)
}

// RecordEngagement handles POST /api/v1/documents/{id}/engagement.
func (s *Server) RecordEngagement(w http.ResponseWriter, r *http.Request) {
	var req EngagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	switch req.Counter {
	case documentuc.CounterViews, documentuc.CounterLikes, documentuc.CounterComments:
	default:
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"counter must be one of views, likes, comments")
		return
	}

	if err := s.documents.RecordEngagement(r.Context(), chiv5.URLParam(r, "id"), req.Counter); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SimilarityBetween handles GET /api/v1/documents/{id}/similarity/{other}.
func (s *Server) SimilarityBetween(w http.ResponseWriter, r *http.Request) {
	id := chiv5.URLParam(r, "id")
	other := chiv5.URLParam(r, "other")

	score, err := s.retrieval.SimilarityBetween(r.Context(), id, other)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SimilarityResponse{SimilarityScore: score})
}

// SearchSimilar handles POST /api/v1/search/similar.
func (s *Server) SearchSimilar(w http.ResponseWriter, r *http.Request) {
	var req SimilarSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "content is required")
		return
	}
	if req.K <= 0 {
		req.K = 10
	}

	results, err := s.retrieval.FindSimilar(r.Context(), req.Content, req.K)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rankedToDTO(results, true))
}

// RankDocuments handles POST /api/v1/search/rank.
func (s *Server) RankDocuments(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	results, err := s.retrieval.RankAll(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rankedToDTO(results, false))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	httpStatus := http.StatusOK
	checks := map[string]string{"database": "up"}

	if err := s.pinger.Ping(r.Context()); err != nil {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
		checks["database"] = "down"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrInvalidDocument,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
