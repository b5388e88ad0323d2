package domain

import "errors"

var (
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidDocument signals a document that fails boundary validation.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrIndexUnavailable signals a vector index backend failure. Retrieval
	// recovers from it by falling back to a full scan.
	ErrIndexUnavailable = errors.New("vector index unavailable")
	// ErrEmbeddingProviderError signals a remote embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
