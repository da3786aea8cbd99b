package search

import (
	"context"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"
)

// MatrixCache persists corpus embedding matrices between runs.
type MatrixCache interface {
	// Load returns a stored matrix valid for corpus under modelID. Failures are a miss.
	Load(ctx context.Context, modelID string, corpus *cases.Corpus) (domain.EmbeddingMatrix, bool)
	Store(ctx context.Context, m *domain.EmbeddingMatrix) error
}

// VectorSearcher queries an external vector database.
type VectorSearcher interface {
	Search(ctx context.Context, vector []float32, limit int) ([]domain.VectorHit, error)
}
