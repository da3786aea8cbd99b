package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals a malformed search or chat request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrCorpusUnavailable signals a missing or unreadable case file.
	ErrCorpusUnavailable = errors.New("corpus unavailable")
	// ErrNotReady signals a search before any corpus was loaded.
	ErrNotReady = errors.New("search engine not ready")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCacheCorrupt signals an unreadable or inconsistent embedding cache blob.
	ErrCacheCorrupt = errors.New("embedding cache corrupt")
	// ErrLLMUnavailable signals a failed or short-circuited answer generation call.
	ErrLLMUnavailable = errors.New("llm unavailable")
	// ErrVectorStoreError signals a vector database failure.
	ErrVectorStoreError = errors.New("vector store error")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)

// DimensionMismatchError wraps ErrVectorDimMismatch with the expected and actual sizes.
type DimensionMismatchError struct {
	Expected int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d, got %d", ErrVectorDimMismatch.Error(), e.Expected, e.Got)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrVectorDimMismatch }

// NewDimensionMismatch creates a dimension mismatch error.
func NewDimensionMismatch(expected, got int) error {
	return &DimensionMismatchError{Expected: expected, Got: got}
}
