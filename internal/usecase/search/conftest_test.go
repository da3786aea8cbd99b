package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"
)

// --- Mocks ---

var testVocab = []string{
	"water", "leak", "ceiling", "roof", "rain",
	"concrete", "slab", "crack", "epoxy",
	"hvac", "cooling", "refrigerant",
	"electrical", "breaker", "panel",
}

// vocabEmbedder counts vocabulary words, so cosine similarity tracks word overlap.
// A non-zero bias appends a constant component, so no text embeds to zero.
type vocabEmbedder struct {
	mu    sync.Mutex
	calls int
	texts int
	err   error
	model string
	bias  float32

	// honorCtx fails calls whose context is done, like a real HTTP provider.
	honorCtx bool
}

func (m *vocabEmbedder) ModelID() string {
	if m.model == "" {
		return "vocab-test"
	}
	return m.model
}

func (m *vocabEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.texts += len(texts)
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	if m.honorCtx {
		if err := ctx.Err(); err != nil {
			return domain.BatchEmbeddingResult{}, err
		}
		if dl, ok := ctx.Deadline(); ok && !time.Now().Before(dl) {
			return domain.BatchEmbeddingResult{}, context.DeadlineExceeded
		}
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = vocabVector(t)
		if m.bias != 0 {
			out[i] = append(out[i], m.bias)
		}
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

func (m *vocabEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func vocabVector(text string) []float32 {
	v := make([]float32, len(testVocab))
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		for i, term := range testVocab {
			if w == term {
				v[i]++
			}
		}
	}
	return v
}

// memCache is an in-memory MatrixCache keyed by model.
type memCache struct {
	mu       sync.Mutex
	entries  map[string]domain.EmbeddingMatrix
	stores   int
	storeErr error
}

func (c *memCache) Load(_ context.Context, modelID string, corpus *cases.Corpus) (domain.EmbeddingMatrix, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.entries[modelID]
	if !ok || !m.Matches(modelID, corpus.Len()) {
		return domain.EmbeddingMatrix{}, false
	}
	return m, true
}

func (c *memCache) Store(_ context.Context, m *domain.EmbeddingMatrix) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stores++
	if c.storeErr != nil {
		return c.storeErr
	}
	if c.entries == nil {
		c.entries = map[string]domain.EmbeddingMatrix{}
	}
	c.entries[m.ModelID] = *m
	return nil
}

type mockVectorSearcher struct {
	hits  []domain.VectorHit
	err   error
	limit int
}

func (m *mockVectorSearcher) Search(_ context.Context, _ []float32, limit int) ([]domain.VectorHit, error) {
	m.limit = limit
	return m.hits, m.err
}

var errProvider = errors.New("provider down")

func testCorpus() *cases.Corpus {
	return cases.NewCorpus([]cases.Case{
		cases.New("C1", "Roof leak after heavy rain", "Water leaking through the ceiling during heavy rain",
			"Replace damaged flashing and reseal roof penetrations", "roofing,waterproofing,leak"),
		cases.New("C2", "Cracked concrete slab", "Hairline cracks in the concrete slab after curing",
			"Inject epoxy and review the curing procedure", "concrete,structural"),
		cases.New("C3", "HVAC unit not cooling", "Rooftop HVAC unit blowing warm air",
			"Recharge refrigerant and replace the compressor contactor", "hvac,mechanical"),
		cases.New("C4", "Electrical panel tripping", "Main breaker trips under load",
			"Balance circuits across phases and upgrade the breaker", "electrical,safety"),
	})
}

func newTestEngine(t *testing.T, emb domain.Embedder, opts ...Option) *Engine {
	t.Helper()
	e := NewEngine(emb, zap.NewNop(), opts...)
	if err := e.Load(context.Background(), testCorpus()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}
