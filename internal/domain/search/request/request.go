package request

import (
	"fmt"
	"strings"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed query length in bytes.
	MaxQueryLength = 4096
	DefaultTopK    = 6
	MaxTopK        = 50
)

// Default hybrid weights. They are not normalized to sum to 1.
const (
	DefaultSemanticWeight = 0.7
	DefaultKeywordWeight  = 0.3
)

// Weights scale the normalized semantic and keyword scores in a hybrid merge.
type Weights struct {
	Semantic float64
	Keyword  float64
}

// DefaultWeights returns 0.7 semantic / 0.3 keyword.
func DefaultWeights() Weights {
	return Weights{Semantic: DefaultSemanticWeight, Keyword: DefaultKeywordWeight}
}

// Request is a validated search query.
type Request struct {
	query      string
	searchMode mode.Mode
	topK       int
	weights    Weights
}

// New validates and normalizes search parameters.
// Defaults: mode=hybrid, topK=DefaultTopK. TopK is clamped to maxTopK (MaxTopK when <= 0).
func New(query string, m mode.Mode, topK, maxTopK int, w Weights) (Request, error) {
	if strings.TrimSpace(query) == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if m == "" {
		m = mode.Hybrid
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid search mode: %q", domain.ErrInvalidRequest, m)
	}
	if maxTopK <= 0 {
		maxTopK = MaxTopK
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}
	if w.Semantic < 0 || w.Keyword < 0 {
		return Request{}, fmt.Errorf("%w: weights must be non-negative", domain.ErrInvalidRequest)
	}

	return Request{query: query, searchMode: m, topK: topK, weights: w}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Mode returns the retrieval strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// TopK returns the number of results to return.
func (r *Request) TopK() int { return r.topK }

// Weights returns the hybrid merge weights.
func (r *Request) Weights() Weights { return r.weights }
