package domain

import "errors"

var (
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrUnauthorized signals a request without an authenticated principal
	// or with a role that may not call the operation.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAccessDenied signals a document that belongs to another user.
	ErrAccessDenied = errors.New("access denied")
	// ErrInvalidDocument signals an upload that failed validation.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrInsufficientCredits signals an exhausted daily credit allowance.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrComputation signals a scorer failure (bad input, inference error).
	ErrComputation = errors.New("similarity computation failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// IsComputation reports whether err should be degraded rather than surfaced.
// Provider failures count: the match path cannot tell them from inference errors.
func IsComputation(err error) bool {
	return errors.Is(err, ErrComputation) || errors.Is(err, ErrEmbeddingProviderError)
}
