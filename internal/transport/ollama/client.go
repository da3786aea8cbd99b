// Package ollama talks to the native Ollama HTTP API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/metrics"
)

const providerName = "ollama"

var (
	_ domain.Embedder      = (*Embedder)(nil)
	_ domain.HealthChecker = (*Embedder)(nil)
)

// HTTPStatusError is a non-2xx reply from Ollama.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("ollama %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("ollama %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// Config holds Ollama embedding settings.
type Config struct {
	BaseURL    string
	Model      string
	Dimensions int
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Embedder calls POST /api/embed.
type Embedder struct {
	baseURL    string
	model      string
	dimensions int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewEmbedder creates an Ollama embedder. BaseURL defaults to http://localhost:11434.
func NewEmbedder(cfg *Config) *Embedder {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Embedder{
		baseURL:    baseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}
}

// ModelID implements domain.Embedder.
func (e *Embedder) ModelID() string { return e.model }

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Model           string      `json:"model"`
	Embeddings      [][]float32 `json:"embeddings"`
	PromptEvalCount int         `json:"prompt_eval_count"`
}

// BatchEmbed implements domain.Embedder. Errors wrap domain.ErrEmbeddingProviderError.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	var resp embedResponse
	err := e.postJSON(ctx, "/api/embed", embedRequest{Model: e.model, Input: texts}, &resp, "embed")
	duration := time.Since(start)

	if err != nil {
		e.fail(errorType(err))
		return domain.BatchEmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	if len(resp.Embeddings) != len(texts) {
		e.fail("count_mismatch")
		return domain.BatchEmbeddingResult{}, fmt.Errorf("expected %d embeddings, got %d: %w",
			len(texts), len(resp.Embeddings), domain.ErrEmbeddingProviderError)
	}
	if e.dimensions > 0 {
		for i, v := range resp.Embeddings {
			if len(v) != e.dimensions {
				e.fail("dimension_mismatch")
				return domain.BatchEmbeddingResult{}, fmt.Errorf("embedding %d: %w: %w",
					i, domain.NewDimensionMismatch(e.dimensions, len(v)), domain.ErrEmbeddingProviderError)
			}
		}
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.model).Observe(duration.Seconds())
	if resp.PromptEvalCount > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(providerName, e.model, "prompt").Add(float64(resp.PromptEvalCount))
		metrics.EmbeddingTokensTotal.WithLabelValues(providerName, e.model, "total").Add(float64(resp.PromptEvalCount))
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   resp.Embeddings,
		PromptTokens: resp.PromptEvalCount,
		TotalTokens:  resp.PromptEvalCount,
	}, nil
}

// HealthCheck lists local models and verifies the configured one is pulled.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("create tags request: %w", err)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama tags request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only

	if resp.StatusCode >= 300 {
		return statusError("tags", resp)
	}

	var tags struct {
		Models []struct {
			Name  string `json:"name"`
			Model string `json:"model"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("decode tags response: %w", err)
	}
	for _, m := range tags.Models {
		if sameModel(m.Name, e.model) || sameModel(m.Model, e.model) {
			return nil
		}
	}
	return fmt.Errorf("model %q is not pulled", e.model)
}

// sameModel treats "nomic-embed-text" and "nomic-embed-text:latest" as equal.
func sameModel(have, want string) bool {
	if have == want {
		return true
	}
	return !strings.Contains(want, ":") && have == want+":latest"
}

func (e *Embedder) fail(errorType string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, errorType).Inc()
}

func errorType(err error) string {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return "api_error"
	}
	return "transport_error"
}

func (e *Embedder) postJSON(ctx context.Context, path string, payload, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama %s request: %w", operation, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only

	if resp.StatusCode >= 300 {
		return statusError(operation, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func statusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &HTTPStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}
}
