package ingest

import (
	"context"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
)

// vectorStore is the consumer interface for the vector database (ISP).
type vectorStore interface {
	EnsureCollection(ctx context.Context, vectorSize int) error
	Upsert(ctx context.Context, points []domain.VectorPoint) error
}
