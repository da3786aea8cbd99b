package search

import (
	"math"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/result"
)

// cosine returns the cosine similarity of a and b, or 0 when either has zero norm.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// rankSemantic scores every matrix row against query and returns the top k.
func rankSemantic(query []float32, m *domain.EmbeddingMatrix, corpus *cases.Corpus, k int) ([]result.ScoredCase, error) {
	if k <= 0 || corpus.Len() == 0 {
		return nil, nil
	}
	if dims := m.Dimensions(); len(query) != dims {
		return nil, domain.NewDimensionMismatch(dims, len(query))
	}

	rows := make([]scoredRow, len(m.Vectors))
	for i, v := range m.Vectors {
		rows[i] = scoredRow{row: i, score: cosine(query, v)}
	}
	return topK(rows, corpus, k, result.Semantic), nil
}
