package embcache

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/db"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"
)

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	data  map[string][]byte
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	return nil
}

func newTestCache(t *testing.T, opts ...Option) (*Cache, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(ms, nil, zap.NewNop(), opts...), ms
}

func testCorpus() *cases.Corpus {
	return cases.NewCorpus([]cases.Case{
		cases.New("C1", "Concrete cracking", "slab cracks after curing", "seal with epoxy", "concrete,crack"),
		cases.New("C2", "Low airflow", "AHU airflow below design", "rebalance dampers", "hvac"),
	})
}

func testMatrix(corpus *cases.Corpus, model string) domain.EmbeddingMatrix {
	return domain.EmbeddingMatrix{
		ModelID:         model,
		CorpusSize:      corpus.Len(),
		Representations: corpus.Representations(),
		Vectors:         [][]float32{{0.1, -0.2, 0.3}, {1e-7, 3.4e38, -0}},
	}
}
