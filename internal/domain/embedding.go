package domain

import (
	"context"
	"fmt"
)

// Embedder is the shared text vectorization contract between layers.
// One configured model fixes both dimensionality and semantics.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
	// ModelID identifies the model; it is recorded alongside any cached output.
	ModelID() string
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// EmbedOne embeds a single text as a one-element batch.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	res, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(res.Embeddings) != 1 {
		return nil, fmt.Errorf("%w: expected 1 embedding, got %d", ErrEmbeddingProviderError, len(res.Embeddings))
	}
	return res.Embeddings[0], nil
}

// EmbeddingMatrix is the cached embedding of a whole corpus.
// Representations and Vectors are in corpus row order.
type EmbeddingMatrix struct {
	ModelID         string
	CorpusSize      int
	Representations []string
	Vectors         [][]float32
}

// Dimensions returns the vector length, or 0 for an empty matrix.
func (m *EmbeddingMatrix) Dimensions() int {
	if len(m.Vectors) == 0 {
		return 0
	}
	return len(m.Vectors[0])
}

// Validate checks len(representations) == len(vectors) == corpus size and uniform dimensions.
func (m *EmbeddingMatrix) Validate() error {
	if m.ModelID == "" {
		return fmt.Errorf("%w: empty model id", ErrCacheCorrupt)
	}
	if len(m.Representations) != m.CorpusSize || len(m.Vectors) != m.CorpusSize {
		return fmt.Errorf("%w: corpus size %d, %d representations, %d vectors",
			ErrCacheCorrupt, m.CorpusSize, len(m.Representations), len(m.Vectors))
	}
	dims := m.Dimensions()
	for i, v := range m.Vectors {
		if len(v) != dims {
			return fmt.Errorf("%w: row %d: %w", ErrCacheCorrupt, i, NewDimensionMismatch(dims, len(v)))
		}
	}
	return nil
}

// Matches reports whether the matrix can serve a corpus of the given size for the given model.
func (m *EmbeddingMatrix) Matches(modelID string, corpusSize int) bool {
	return m.ModelID == modelID && m.CorpusSize == corpusSize
}
