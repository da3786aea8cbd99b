package vectordb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
)

// Defaults for the Qdrant connection.
const (
	DefaultURL        = "http://localhost:6333"
	DefaultCollection = "cases"
	defaultTimeout    = 60 * time.Second
)

// Config holds Qdrant connection settings.
type Config struct {
	URL        string
	Collection string
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Store talks to one Qdrant collection over its REST API.
type Store struct {
	baseURL    string
	collection string
	httpClient *http.Client
	logger     *zap.Logger

	ensureMu sync.Mutex
	ensured  int // vector size already ensured, 0 if none
}

// New creates a Qdrant store.
func New(cfg Config) *Store {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Store{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		collection: cfg.Collection,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     cfg.Logger,
	}
}

// Collection returns the collection name.
func (s *Store) Collection() string { return s.collection }

// CollectionExists reports whether the collection is present.
func (s *Store) CollectionExists(ctx context.Context) (bool, error) {
	resp, err := s.do(ctx, http.MethodGet, s.collectionPath(), nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 300:
		return false, statusError("get collection", resp)
	}
	return true, nil
}

// EnsureCollection creates the collection with cosine distance unless it already exists.
// An existing collection is left untouched whatever its vector size.
func (s *Store) EnsureCollection(ctx context.Context, vectorSize int) error {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	if s.ensured == vectorSize {
		return nil
	}

	exists, err := s.CollectionExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		body := map[string]any{
			"vectors": map[string]any{
				"size":     vectorSize,
				"distance": "Cosine",
			},
		}
		resp, err := s.do(ctx, http.MethodPut, s.collectionPath(), body)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		// 409 when another ingester created it first
		if resp.StatusCode >= 300 && resp.StatusCode != http.StatusConflict {
			return statusError("create collection", resp)
		}
		s.logger.Info("Created vector collection",
			zap.String("collection", s.collection),
			zap.Int("dimensions", vectorSize),
		)
	}
	s.ensured = vectorSize
	return nil
}

type point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// Upsert writes points and waits for them to be indexed.
func (s *Store) Upsert(ctx context.Context, points []domain.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	body := struct {
		Points []point `json:"points"`
	}{Points: make([]point, len(points))}
	for i, p := range points {
		body.Points[i] = point{
			ID:     p.ID,
			Vector: p.Vector,
			Payload: map[string]any{
				"case_id":     p.CaseID,
				"title":       p.Title,
				"chunk_index": p.ChunkIndex,
				"tags":        p.Tags,
				"text":        p.Text,
			},
		}
	}

	resp, err := s.do(ctx, http.MethodPut, s.collectionPath()+"/points?wait=true", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError("upsert", resp)
	}
	return nil
}

// Search returns the nearest chunks to vector, best first.
func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]domain.VectorHit, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	resp, err := s.do(ctx, http.MethodPost, s.collectionPath()+"/points/search", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, statusError("search", resp)
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %w", domain.ErrVectorStoreError, err)
	}

	out := make([]domain.VectorHit, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.VectorHit{
			CaseID:     stringPayload(r.Payload, "case_id"),
			Title:      stringPayload(r.Payload, "title"),
			Tags:       stringPayload(r.Payload, "tags"),
			Text:       stringPayload(r.Payload, "text"),
			ChunkIndex: intPayload(r.Payload, "chunk_index"),
			Score:      r.Score,
		})
	}
	return out, nil
}

// HealthCheck pings the Qdrant health endpoint.
func (s *Store) HealthCheck(ctx context.Context) error {
	resp, err := s.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError("health", resp)
	}
	return nil
}

func (s *Store) collectionPath() string {
	return "/collections/" + url.PathEscape(s.collection)
}

func (s *Store) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s body: %w", path, err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: qdrant %s %s: %w", domain.ErrVectorStoreError, method, path, err)
	}
	return resp, nil
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return fmt.Errorf("%w: qdrant %s status: %s: %s", domain.ErrVectorStoreError, op, resp.Status, msg)
	}
	return fmt.Errorf("%w: qdrant %s status: %s", domain.ErrVectorStoreError, op, resp.Status)
}

func stringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func intPayload(payload map[string]any, key string) int {
	// JSON numbers decode as float64
	if f, ok := payload[key].(float64); ok {
		return int(f)
	}
	return 0
}
