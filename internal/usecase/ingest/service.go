package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"
)

// Defaults for chunking and upload.
const (
	DefaultChunkChars  = 1200
	DefaultUpsertBatch = 64
	probeText          = "test"
)

// Report summarizes one ingestion run.
type Report struct {
	Cases      int
	Chunks     int
	Dimensions int
	Duration   time.Duration
}

// Service copies the corpus into the vector database.
type Service struct {
	embedder    domain.Embedder
	store       vectorStore
	chunkChars  int
	upsertBatch int
	newID       func() string
	logger      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithChunkChars sets the maximum chunk length in characters.
func WithChunkChars(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.chunkChars = n
		}
	}
}

// WithUpsertBatch sets how many points go into one upsert call.
func WithUpsertBatch(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.upsertBatch = n
		}
	}
}

// New creates an ingestion service.
func New(embedder domain.Embedder, store vectorStore, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		embedder:    embedder,
		store:       store,
		chunkChars:  DefaultChunkChars,
		upsertBatch: DefaultUpsertBatch,
		newID:       uuid.NewString,
		logger:      logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run embeds every chunk of every case and upserts them. The collection is
// created first, sized from a probe embedding. Points get fresh ids, so running
// twice stores every chunk twice.
func (s *Service) Run(ctx context.Context, corpus *cases.Corpus) (Report, error) {
	start := time.Now()

	probe, err := domain.EmbedOne(ctx, s.embedder, probeText)
	if err != nil {
		return Report{}, fmt.Errorf("probe embedding: %w", err)
	}
	dims := len(probe)
	if dims == 0 {
		return Report{}, fmt.Errorf("%w: probe embedding is empty", domain.ErrEmbeddingProviderError)
	}
	if err := s.store.EnsureCollection(ctx, dims); err != nil {
		return Report{}, fmt.Errorf("ensure collection: %w", err)
	}

	points := s.chunkCorpus(corpus)
	texts := make([]string, len(points))
	for i := range points {
		texts[i] = points[i].Text
	}

	if len(texts) > 0 {
		res, err := s.embedder.BatchEmbed(ctx, texts)
		if err != nil {
			return Report{}, fmt.Errorf("embed %d chunks: %w", len(texts), err)
		}
		if len(res.Embeddings) != len(points) {
			return Report{}, fmt.Errorf("%w: expected %d embeddings, got %d",
				domain.ErrEmbeddingProviderError, len(points), len(res.Embeddings))
		}
		for i, v := range res.Embeddings {
			if len(v) != dims {
				return Report{}, fmt.Errorf("%w: chunk %d: %w",
					domain.ErrEmbeddingProviderError, i, domain.NewDimensionMismatch(dims, len(v)))
			}
			points[i].Vector = v
		}
	}

	for lo := 0; lo < len(points); lo += s.upsertBatch {
		hi := min(lo+s.upsertBatch, len(points))
		if err := s.store.Upsert(ctx, points[lo:hi]); err != nil {
			return Report{}, fmt.Errorf("upsert points %d-%d: %w", lo, hi, err)
		}
	}

	r := Report{Cases: corpus.Len(), Chunks: len(points), Dimensions: dims, Duration: time.Since(start)}
	s.logger.Info("Corpus ingested",
		zap.Int("cases", r.Cases),
		zap.Int("chunks", r.Chunks),
		zap.Int("dimensions", r.Dimensions),
		zap.Duration("took", r.Duration),
	)
	return r, nil
}

func (s *Service) chunkCorpus(corpus *cases.Corpus) []domain.VectorPoint {
	var points []domain.VectorPoint
	for _, c := range corpus.All() {
		trimmed := cases.New(
			strings.TrimSpace(c.ID()),
			strings.TrimSpace(c.Title()),
			strings.TrimSpace(c.Problem()),
			strings.TrimSpace(c.Solution()),
			strings.TrimSpace(c.Tags()),
		)
		for i, chunk := range ChunkText(trimmed.Document(), s.chunkChars) {
			points = append(points, domain.VectorPoint{
				ID:         s.newID(),
				CaseID:     trimmed.ID(),
				Title:      trimmed.Title(),
				Tags:       trimmed.Tags(),
				ChunkIndex: i,
				Text:       chunk,
			})
		}
	}
	return points
}

// ChunkText splits trimmed text into pieces of at most maxChars characters.
// Blank text yields no chunks.
func ChunkText(text string, maxChars int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return []string{text}
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+maxChars-1)/maxChars)
	for lo := 0; lo < len(runes); lo += maxChars {
		chunks = append(chunks, string(runes[lo:min(lo+maxChars, len(runes))]))
	}
	return chunks
}
