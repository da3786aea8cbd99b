package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

func newTestEmbedder(url string, dims int) *Embedder {
	return NewEmbedder(&Config{BaseURL: url, Model: "nomic-embed-text", Dimensions: dims, Logger: zap.NewNop()})
}

func TestEmbedder_BatchEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "nomic-embed-text" || len(req.Input) != 2 {
			t.Errorf("unexpected request body: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(embedResponse{
			Model:           req.Model,
			Embeddings:      [][]float32{{1, 0, 0}, {0, 1, 0}},
			PromptEvalCount: 12,
		})
	}))
	defer server.Close()

	res, err := newTestEmbedder(server.URL, 3).BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 || res.Embeddings[1][1] != 1 {
		t.Errorf("embeddings = %v", res.Embeddings)
	}
	if res.TotalTokens != 12 {
		t.Errorf("TotalTokens = %d", res.TotalTokens)
	}
}

func TestEmbedder_BatchEmbed_Empty(t *testing.T) {
	res, err := newTestEmbedder("http://unused", 0).BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embeddings != nil {
		t.Errorf("expected nil embeddings, got %v", res.Embeddings)
	}
}

func TestEmbedder_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"model \"nomic-embed-text\" not found, try pulling it first"}`, http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestEmbedder(server.URL, 0).BatchEmbed(context.Background(), []string{"a"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected HTTPStatusError 404, got %v", err)
	}
}

func TestEmbedder_CountAndDimensionMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{1, 2}}})
	}))
	defer server.Close()

	_, err := newTestEmbedder(server.URL, 0).BatchEmbed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError on count mismatch, got %v", err)
	}

	_, err = newTestEmbedder(server.URL, 768).BatchEmbed(context.Background(), []string{"a"})
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestEmbedder_HealthCheck(t *testing.T) {
	models := []map[string]string{{"name": "nomic-embed-text:latest", "model": "nomic-embed-text:latest"}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"models": models})
	}))
	defer server.Close()

	if err := newTestEmbedder(server.URL, 0).HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missing := NewEmbedder(&Config{BaseURL: server.URL, Model: "mxbai-embed-large", Logger: zap.NewNop()})
	if err := missing.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error for model that is not pulled")
	}
}

func TestSameModel(t *testing.T) {
	tests := []struct {
		have, want string
		ok         bool
	}{
		{"nomic-embed-text", "nomic-embed-text", true},
		{"nomic-embed-text:latest", "nomic-embed-text", true},
		{"nomic-embed-text:v1.5", "nomic-embed-text", false},
		{"nomic-embed-text:latest", "nomic-embed-text:v1.5", false},
	}
	for _, tc := range tests {
		if got := sameModel(tc.have, tc.want); got != tc.ok {
			t.Errorf("sameModel(%q, %q) = %v, want %v", tc.have, tc.want, got, tc.ok)
		}
	}
}
