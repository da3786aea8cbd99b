package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
)

// --- Mocks ---

type mockEmbedder struct {
	batchErr   error
	failAt     int // 1-based call index that fails; 0 = never
	short      bool
	batchSizes []int
	healthErr  error
}

func (m *mockEmbedder) ModelID() string { return "test-model" }

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.batchErr != nil && len(m.batchSizes) == m.failAt {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	n := len(texts)
	if m.short {
		n--
	}
	embeddings := make([][]float32, n)
	for i := range embeddings {
		// encode the text length so ordering can be checked
		embeddings[i] = []float32{float32(len(texts[i]))}
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, PromptTokens: n, TotalTokens: n}, nil
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthErr }

// --- Tests ---

func TestInstrumentedEmbedder_Chunks(t *testing.T) {
	inner := &mockEmbedder{}
	p := NewInstrumentedEmbedder(inner, "test", 2, zap.NewNop())

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	res, err := p.BatchEmbed(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fmt.Sprint(inner.batchSizes) != "[2 2 1]" {
		t.Errorf("batch sizes = %v, want [2 2 1]", inner.batchSizes)
	}
	if len(res.Embeddings) != len(texts) {
		t.Fatalf("expected %d embeddings, got %d", len(texts), len(res.Embeddings))
	}
	for i, v := range res.Embeddings {
		if int(v[0]) != len(texts[i]) {
			t.Errorf("embedding %d out of order: %v", i, v)
		}
	}
	if res.TotalTokens != 5 {
		t.Errorf("TotalTokens = %d, want 5", res.TotalTokens)
	}
	if p.ModelID() != "test-model" {
		t.Errorf("ModelID() = %q", p.ModelID())
	}
}

func TestInstrumentedEmbedder_DefaultBatchSize(t *testing.T) {
	inner := &mockEmbedder{}
	p := NewInstrumentedEmbedder(inner, "test", 0, zap.NewNop())

	texts := make([]string, DefaultMaxAPIBatchSize+1)
	if _, err := p.BatchEmbed(context.Background(), texts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.batchSizes) != 2 {
		t.Errorf("expected 2 requests, got %v", inner.batchSizes)
	}
}

func TestInstrumentedEmbedder_Empty(t *testing.T) {
	inner := &mockEmbedder{}
	p := NewInstrumentedEmbedder(inner, "test", 2, zap.NewNop())

	res, err := p.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embeddings != nil || len(inner.batchSizes) != 0 {
		t.Error("empty input must not reach the provider")
	}
}

func TestInstrumentedEmbedder_InnerErrorStopsChunks(t *testing.T) {
	inner := &mockEmbedder{batchErr: domain.ErrEmbeddingProviderError, failAt: 2}
	p := NewInstrumentedEmbedder(inner, "test", 1, zap.NewNop())

	_, err := p.BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	if len(inner.batchSizes) != 2 {
		t.Errorf("expected to stop after failing chunk, got %d calls", len(inner.batchSizes))
	}
}

func TestInstrumentedEmbedder_ShortResponse(t *testing.T) {
	inner := &mockEmbedder{short: true}
	p := NewInstrumentedEmbedder(inner, "test", 4, zap.NewNop())

	_, err := p.BatchEmbed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestInstrumentedEmbedder_HealthCheck(t *testing.T) {
	inner := &mockEmbedder{healthErr: errors.New("connection refused")}
	p := NewInstrumentedEmbedder(inner, "ollama", 0, zap.NewNop())
	if err := p.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health error")
	}
	inner.healthErr = nil
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
