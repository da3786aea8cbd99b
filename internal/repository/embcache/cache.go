package embcache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/db"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"
)

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Cache persists one embedding matrix per model.
type Cache struct {
	store           store
	cacheTotal      *prometheus.CounterVec
	validateContent bool
	logger          *zap.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithContentValidation makes Load also compare every case representation,
// so an edited corpus with an unchanged row count is a miss.
func WithContentValidation() Option {
	return func(c *Cache) { c.validateContent = true }
}

// New creates an embedding matrix cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"corrupt"), passed explicitly.
func New(s store, cacheTotal *prometheus.CounterVec, logger *zap.Logger, opts ...Option) *Cache {
	c := &Cache{store: s, cacheTotal: cacheTotal, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key derives the blob name from the model identifier.
func Key(modelID string) string {
	return "embeddings_" + strings.NewReplacer("/", "_", `\`, "_", ":", "_").Replace(modelID) + ".bin"
}

// Load returns the stored matrix if it was built by modelID for a corpus of
// the same size. Unreadable, corrupt or mismatched blobs are a miss, never an error.
func (c *Cache) Load(ctx context.Context, modelID string, corpus *cases.Corpus) (domain.EmbeddingMatrix, bool) {
	key := Key(modelID)
	log := c.logger.With(zap.String("key", key), zap.String("model", modelID))

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			log.Warn("Failed to read embedding cache", zap.Error(err))
		}
		c.inc("miss")
		return domain.EmbeddingMatrix{}, false
	}

	m, err := decodeMatrix(data)
	if err != nil {
		log.Warn("Discarding corrupt embedding cache", zap.Error(err))
		c.inc("corrupt")
		return domain.EmbeddingMatrix{}, false
	}

	if !m.Matches(modelID, corpus.Len()) {
		log.Info("Embedding cache is stale",
			zap.String("cached_model", m.ModelID),
			zap.Int("cached_cases", m.CorpusSize),
			zap.Int("cases", corpus.Len()),
		)
		c.inc("miss")
		return domain.EmbeddingMatrix{}, false
	}

	if c.validateContent && !slices.Equal(m.Representations, corpus.Representations()) {
		log.Info("Embedding cache content differs from corpus")
		c.inc("miss")
		return domain.EmbeddingMatrix{}, false
	}

	c.inc("hit")
	return m, true
}

// Store validates and persists the matrix under its model key.
func (c *Cache) Store(ctx context.Context, m *domain.EmbeddingMatrix) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("store embedding cache: %w", err)
	}
	data, err := encodeMatrix(m)
	if err != nil {
		return fmt.Errorf("encode embedding cache: %w", err)
	}
	if err := c.store.Set(ctx, Key(m.ModelID), data); err != nil {
		return fmt.Errorf("write embedding cache: %w", err)
	}
	c.logger.Debug("Embedding cache stored",
		zap.String("model", m.ModelID),
		zap.Int("cases", m.CorpusSize),
		zap.Int("dimensions", m.Dimensions()),
		zap.Int("bytes", len(data)),
	)
	return nil
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
