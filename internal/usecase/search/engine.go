package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/mode"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/request"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/result"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/metrics"
)

// Engine owns one loaded corpus and its embedding matrix.
// Create with NewEngine, then call Load before searching.
type Engine struct {
	embedder domain.Embedder
	cache    MatrixCache
	vectors  VectorSearcher
	logger   *zap.Logger
	group    singleflight.Group

	buildTimeout time.Duration

	mu         sync.RWMutex
	corpus     *cases.Corpus
	matrix     *domain.EmbeddingMatrix
	generation uint64
	loaded     bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithVectorSearcher enables mode.Vector against an external vector database.
func WithVectorSearcher(v VectorSearcher) Option {
	return func(e *Engine) { e.vectors = v }
}

// WithMatrixCache persists built matrices. Without it every Load re-embeds.
func WithMatrixCache(c MatrixCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithBuildTimeout bounds one corpus embedding. The build is shared by every
// waiting caller, so it does not inherit any single caller's cancellation.
func WithBuildTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.buildTimeout = d
		}
	}
}

// DefaultBuildTimeout bounds a corpus embedding when WithBuildTimeout is not set.
const DefaultBuildTimeout = 10 * time.Minute

// NewEngine creates an engine. embedder may be nil, which limits the engine
// to lexical search.
func NewEngine(embedder domain.Embedder, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{embedder: embedder, logger: logger, buildTimeout: DefaultBuildTimeout}
	for _, o := range opts {
		o(e)
	}
	return e
}

type loadOptions struct {
	force bool
	eager bool
}

// LoadOption tunes a single Load call.
type LoadOption func(*loadOptions)

// WithForceRefresh ignores any cached matrix and re-embeds the corpus.
// Implies eager embedding.
func WithForceRefresh() LoadOption {
	return func(o *loadOptions) { o.force = true; o.eager = true }
}

// WithEagerEmbedding builds the matrix during Load instead of on first semantic query.
func WithEagerEmbedding() LoadOption {
	return func(o *loadOptions) { o.eager = true }
}

// Load installs corpus as the searchable snapshot. A failed eager build
// leaves the engine ready for lexical search and is returned to the caller.
func (e *Engine) Load(ctx context.Context, corpus *cases.Corpus, opts ...LoadOption) error {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	if corpus == nil {
		corpus = cases.Empty()
	}

	e.mu.Lock()
	e.corpus = corpus
	e.matrix = nil
	e.generation++
	e.loaded = true
	gen := e.generation
	e.mu.Unlock()

	metrics.CorpusCases.Set(float64(corpus.Len()))
	e.logger.Info("corpus loaded", zap.Int("cases", corpus.Len()))

	if !o.eager || e.embedder == nil || corpus.Len() == 0 {
		return nil
	}
	if _, err := e.buildMatrix(ctx, corpus, gen, o.force, nil); err != nil {
		return fmt.Errorf("embed corpus: %w", err)
	}
	return nil
}

// Ready reports whether Load has been called.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// CorpusSize returns the number of loaded cases.
func (e *Engine) CorpusSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.corpus.Len()
}

// CaseByID looks up a case in the loaded corpus.
func (e *Engine) CaseByID(id string) (cases.Case, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.corpus.ByID(id)
}

// SemanticAvailable reports whether semantic and hybrid modes can run.
func (e *Engine) SemanticAvailable() bool { return e.embedder != nil }

// VectorAvailable reports whether a vector database is configured.
func (e *Engine) VectorAvailable() bool { return e.vectors != nil }

func (e *Engine) snapshot() (*cases.Corpus, uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.loaded {
		return nil, 0, domain.ErrNotReady
	}
	return e.corpus, e.generation, nil
}

// Lexical ranks every case by LexicalScore and returns the top k.
func (e *Engine) Lexical(query string, k int) ([]result.ScoredCase, error) {
	corpus, _, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return rankLexical(query, corpus, k), nil
}

// Semantic ranks every case by cosine similarity to the query embedding.
// The corpus matrix is loaded from cache or built on first use.
func (e *Engine) Semantic(ctx context.Context, query string, k int) ([]result.ScoredCase, error) {
	corpus, gen, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	if e.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrNotReady)
	}
	if corpus.Len() == 0 || k <= 0 {
		return nil, nil
	}

	m, err := e.ensureMatrix(ctx, corpus, gen)
	if err != nil {
		return nil, err
	}
	qv, err := domain.EmbedOne(ctx, e.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	rs, err := rankSemantic(qv, m, corpus, k)
	if errors.Is(err, domain.ErrVectorDimMismatch) {
		// The stored matrix came from a differently configured model.
		// Treat it as a stale cache entry and re-embed once.
		e.logger.Warn("embedding matrix dimensions differ from query, re-embedding corpus",
			zap.String("model", e.embedder.ModelID()),
			zap.Int("matrix_dimensions", m.Dimensions()),
			zap.Int("query_dimensions", len(qv)),
		)
		metrics.EmbeddingCacheTotal.WithLabelValues("corrupt").Inc()
		if m, err = e.buildMatrix(ctx, corpus, gen, true, m); err != nil {
			return nil, err
		}
		rs, err = rankSemantic(qv, m, corpus, k)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return rs, nil
}

// Hybrid over-fetches 2k from both scorers and fuses them with weights w.
// A semantic failure is returned as is; falling back is the caller's call.
func (e *Engine) Hybrid(ctx context.Context, query string, k int, w request.Weights) ([]result.ScoredCase, error) {
	if k <= 0 {
		if _, _, err := e.snapshot(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	sem, err := e.Semantic(ctx, query, 2*k)
	if err != nil {
		return nil, err
	}
	kw, err := e.Lexical(query, 2*k)
	if err != nil {
		return nil, err
	}
	return fuse(sem, kw, k, w), nil
}

// Vector queries the external vector database. Multiple chunks of one case
// collapse into the best-scoring hit.
func (e *Engine) Vector(ctx context.Context, query string, k int) ([]result.ScoredCase, error) {
	corpus, _, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	if e.vectors == nil || e.embedder == nil {
		return nil, fmt.Errorf("%w: vector search not configured", domain.ErrNotReady)
	}
	if k <= 0 {
		return nil, nil
	}

	qv, err := domain.EmbedOne(ctx, e.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := e.vectors.Search(ctx, qv, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorStoreError, err)
	}

	seen := make(map[string]struct{}, len(hits))
	out := make([]result.ScoredCase, 0, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.CaseID]; ok {
			continue
		}
		seen[h.CaseID] = struct{}{}
		c, ok := corpus.ByID(h.CaseID)
		if !ok {
			c = cases.New(h.CaseID, h.Title, "", h.Text, h.Tags)
		}
		out = append(out, result.New(c, h.Score, result.Vector))
	}
	return out, nil
}

// Search dispatches a validated request to the scorer named by its mode.
func (e *Engine) Search(ctx context.Context, req request.Request) ([]result.ScoredCase, error) {
	m := req.Mode()
	start := time.Now()

	var (
		rs  []result.ScoredCase
		err error
	)
	switch m {
	case mode.Lexical:
		rs, err = e.Lexical(req.Query(), req.TopK())
	case mode.Semantic:
		rs, err = e.Semantic(ctx, req.Query(), req.TopK())
	case mode.Hybrid:
		rs, err = e.Hybrid(ctx, req.Query(), req.TopK(), req.Weights())
	case mode.Vector:
		rs, err = e.Vector(ctx, req.Query(), req.TopK())
	default:
		err = fmt.Errorf("%w: unsupported mode %q", domain.ErrInvalidRequest, m)
	}

	metrics.SearchDuration.WithLabelValues(string(m)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchErrorsTotal.WithLabelValues(string(m)).Inc()
		return nil, err
	}
	return rs, nil
}

// ensureMatrix returns the matrix for the current corpus, building it once
// per generation however many callers race for it.
func (e *Engine) ensureMatrix(ctx context.Context, corpus *cases.Corpus, gen uint64) (*domain.EmbeddingMatrix, error) {
	e.mu.RLock()
	m := e.matrix
	e.mu.RUnlock()
	if m != nil {
		return m, nil
	}
	return e.buildMatrix(ctx, corpus, gen, false, nil)
}

// buildMatrix loads or embeds the matrix for generation gen. With force the
// cache is bypassed; stale names a matrix that a forced rebuild replaces, so
// callers arriving after the rebuild reuse its result instead of repeating it.
func (e *Engine) buildMatrix(ctx context.Context, corpus *cases.Corpus, gen uint64, force bool, stale *domain.EmbeddingMatrix) (*domain.EmbeddingMatrix, error) {
	key := strconv.FormatUint(gen, 10)
	if force {
		key += ":refresh"
	}
	v, err, _ := e.group.Do(key, func() (any, error) {
		e.mu.RLock()
		current := e.matrix
		e.mu.RUnlock()
		if current != nil && (!force || (stale != nil && current != stale)) {
			return current, nil
		}

		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.buildTimeout)
		defer cancel()
		m, err := e.loadOrEmbed(buildCtx, corpus, force)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		if e.generation == gen {
			e.matrix = m
		}
		e.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.EmbeddingMatrix), nil
}

func (e *Engine) loadOrEmbed(ctx context.Context, corpus *cases.Corpus, force bool) (*domain.EmbeddingMatrix, error) {
	model := e.embedder.ModelID()
	if e.cache != nil && !force {
		if m, ok := e.cache.Load(ctx, model, corpus); ok {
			return &m, nil
		}
	}

	start := time.Now()
	reprs := corpus.Representations()
	res, err := e.embedder.BatchEmbed(ctx, reprs)
	if err != nil {
		return nil, fmt.Errorf("embed %d cases: %w", len(reprs), err)
	}

	m := &domain.EmbeddingMatrix{
		ModelID:         model,
		CorpusSize:      corpus.Len(),
		Representations: reprs,
		Vectors:         res.Embeddings,
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: malformed embeddings: %v", domain.ErrEmbeddingProviderError, err) //nolint:errorlint // not a cache error
	}
	e.logger.Info("corpus embedded",
		zap.String("model", model),
		zap.Int("cases", m.CorpusSize),
		zap.Int("dimensions", m.Dimensions()),
		zap.Duration("took", time.Since(start)),
	)

	if e.cache != nil {
		if err := e.cache.Store(ctx, m); err != nil {
			e.logger.Warn("embedding cache store failed", zap.String("model", model), zap.Error(err))
		}
	}
	return m, nil
}
