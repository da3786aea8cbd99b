package consultancy

import "github.com/maryamnawas03/consultancy-AI-agent/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrCorpusUnavailable      = domain.ErrCorpusUnavailable
	ErrNotReady               = domain.ErrNotReady
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrVectorStoreError       = domain.ErrVectorStoreError
	ErrLLMUnavailable         = domain.ErrLLMUnavailable
)
