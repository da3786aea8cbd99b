package embcache

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"
)

func TestKey(t *testing.T) {
	tests := map[string]string{
		"nomic-embed-text":                       "embeddings_nomic-embed-text.bin",
		"sentence-transformers/all-MiniLM-L6-v2": "embeddings_sentence-transformers_all-MiniLM-L6-v2.bin",
		"nomic-embed-text:v1.5":                  "embeddings_nomic-embed-text_v1.5.bin",
	}
	for in, want := range tests {
		if got := Key(in); got != want {
			t.Errorf("Key(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStoreLoad_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	corpus := testCorpus()
	m := testMatrix(corpus, "nomic-embed-text")

	if err := c.Store(ctx, &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := c.Load(ctx, "nomic-embed-text", corpus)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.ModelID != m.ModelID || got.CorpusSize != m.CorpusSize {
		t.Errorf("identity mismatch: %+v", got)
	}
	if !slices.Equal(got.Representations, m.Representations) {
		t.Errorf("representations differ: %q", got.Representations)
	}
	for i := range m.Vectors {
		for j := range m.Vectors[i] {
			if math.Float32bits(got.Vectors[i][j]) != math.Float32bits(m.Vectors[i][j]) {
				t.Errorf("vector[%d][%d] = %v, want %v", i, j, got.Vectors[i][j], m.Vectors[i][j])
			}
		}
	}
}

func TestLoad_RawBytesRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	corpus := cases.NewCorpus([]cases.Case{cases.New("X", "caf\xe9 \xff", "", "", "")})
	m := domain.EmbeddingMatrix{
		ModelID:         "m",
		CorpusSize:      1,
		Representations: corpus.Representations(),
		Vectors:         [][]float32{{1}},
	}
	if err := c.Store(ctx, &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := c.Load(ctx, "m", corpus)
	if !ok || got.Representations[0] != m.Representations[0] {
		t.Fatalf("representation not preserved byte for byte: %q", got.Representations)
	}
}

func TestLoad_Miss(t *testing.T) {
	c, _ := newTestCache(t)
	if _, ok := c.Load(context.Background(), "nomic-embed-text", testCorpus()); ok {
		t.Fatal("expected miss on empty store")
	}
}

func TestLoad_CorpusSizeChangeInvalidates(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	corpus := testCorpus()
	m := testMatrix(corpus, "nomic-embed-text")
	if err := c.Store(ctx, &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	grown := cases.NewCorpus(append(corpus.All(), cases.New("C3", "Tile debonding", "", "", "")))
	if _, ok := c.Load(ctx, "nomic-embed-text", grown); ok {
		t.Fatal("expected miss after corpus row count changed")
	}
}

func TestLoad_ModelChangeInvalidates(t *testing.T) {
	c, ms := newTestCache(t)
	ctx := context.Background()
	corpus := testCorpus()
	m := testMatrix(corpus, "nomic-embed-text")
	if err := c.Store(ctx, &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// a blob written under another model's key must not be trusted either
	ms.data[Key("other-model")] = ms.data[Key("nomic-embed-text")]
	if _, ok := c.Load(ctx, "other-model", corpus); ok {
		t.Fatal("expected miss for different model identity")
	}
}

func TestLoad_SameCountEditedContent(t *testing.T) {
	ctx := context.Background()
	corpus := testCorpus()
	edited := cases.NewCorpus([]cases.Case{
		cases.New("C1", "Concrete cracking", "slab cracks after curing", "inject epoxy resin", "concrete,crack"),
		cases.New("C2", "Low airflow", "AHU airflow below design", "rebalance dampers", "hvac"),
	})

	// row-count rule: stale content is still served
	c, ms := newTestCache(t)
	m := testMatrix(corpus, "nomic-embed-text")
	if err := c.Store(ctx, &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.Load(ctx, "nomic-embed-text", edited); !ok {
		t.Fatal("expected hit with row-count validation only")
	}

	// content validation: edited rows are a miss
	strict := New(ms, nil, zap.NewNop(), WithContentValidation())
	if _, ok := strict.Load(ctx, "nomic-embed-text", edited); ok {
		t.Fatal("expected miss with content validation")
	}
	if _, ok := strict.Load(ctx, "nomic-embed-text", corpus); !ok {
		t.Fatal("expected hit with content validation on unchanged corpus")
	}
}

func TestLoad_CorruptIsMiss(t *testing.T) {
	ctx := context.Background()
	corpus := testCorpus()
	m := testMatrix(corpus, "nomic-embed-text")
	good, err := encodeMatrix(&m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blobs := map[string][]byte{
		"empty":      {},
		"garbage":    []byte("not a cache blob at all"),
		"truncated":  good[:len(good)-3],
		"trailing":   append(slices.Clone(good), 0x00),
		"bad header": append([]byte("CEMB\x02\x05\x00\x00\x00"), []byte("{oops")...),
		"version":    append([]byte("CEMB\x09"), good[5:]...),
	}

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	for name, blob := range blobs {
		t.Run(name, func(t *testing.T) {
			ms := &mockKVStore{data: map[string][]byte{Key("nomic-embed-text"): blob}}
			c := New(ms, counter, zap.NewNop())
			if _, ok := c.Load(ctx, "nomic-embed-text", corpus); ok {
				t.Fatal("expected miss for corrupt blob")
			}
		})
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("corrupt")); got != float64(len(blobs)) {
		t.Errorf("corrupt counter = %v, want %d", got, len(blobs))
	}
}

func TestLoad_StoreErrorIsMiss(t *testing.T) {
	c, ms := newTestCache(t)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("permission denied")
	}
	if _, ok := c.Load(context.Background(), "nomic-embed-text", testCorpus()); ok {
		t.Fatal("expected miss when the store fails")
	}
}

func TestStore_RejectsInvalidMatrix(t *testing.T) {
	c, ms := newTestCache(t)
	bad := domain.EmbeddingMatrix{ModelID: "m", CorpusSize: 2, Representations: []string{"a"}, Vectors: [][]float32{{1}}}
	if err := c.Store(context.Background(), &bad); !errors.Is(err, domain.ErrCacheCorrupt) {
		t.Fatalf("expected ErrCacheCorrupt, got %v", err)
	}
	if len(ms.data) != 0 {
		t.Error("invalid matrix must not be written")
	}
}

func TestStore_WriteError(t *testing.T) {
	c, ms := newTestCache(t)
	ms.setFn = func(_ context.Context, _ string, _ []byte) error { return errors.New("disk full") }
	m := testMatrix(testCorpus(), "nomic-embed-text")
	if err := c.Store(context.Background(), &m); err == nil {
		t.Fatal("expected write error")
	}
}

func TestEmptyCorpusRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	m := domain.EmbeddingMatrix{ModelID: "m"}
	if err := c.Store(ctx, &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.Load(ctx, "m", cases.Empty()); !ok {
		t.Fatal("expected hit for empty corpus")
	}
}
