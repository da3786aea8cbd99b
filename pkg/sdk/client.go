package consultancy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/corpus"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/db"
	dbFile "github.com/maryamnawas03/consultancy-AI-agent/internal/db/file"
	dbRedis "github.com/maryamnawas03/consultancy-AI-agent/internal/db/redis"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	domainanswer "github.com/maryamnawas03/consultancy-AI-agent/internal/domain/answer"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/mode"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/request"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/result"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/metrics"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/repository/embcache"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/repository/vectordb"
	answeruc "github.com/maryamnawas03/consultancy-AI-agent/internal/usecase/answer"
	healthuc "github.com/maryamnawas03/consultancy-AI-agent/internal/usecase/health"
	ingestuc "github.com/maryamnawas03/consultancy-AI-agent/internal/usecase/ingest"
	searchuc "github.com/maryamnawas03/consultancy-AI-agent/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces for substitution in tests.
type searchEngine interface {
	Load(ctx context.Context, corpus *cases.Corpus, opts ...searchuc.LoadOption) error
	Search(ctx context.Context, req request.Request) ([]result.ScoredCase, error)
	CaseByID(id string) (cases.Case, bool)
	CorpusSize() int
}

type chatUseCase interface {
	Chat(ctx context.Context, in answeruc.ChatInput) (domainanswer.Answer, error)
}

type ingestUseCase interface {
	Run(ctx context.Context, corpus *cases.Corpus) (ingestuc.Report, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the embedded consultancy engine.
type Client struct {
	cfg       *clientConfig
	store     db.BlobStore
	loader    *corpus.Loader
	engine    searchEngine
	chatSvc   chatUseCase
	ingestSvc ingestUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New loads the corpus and prepares the engine. With WithEagerEmbedding the
// corpus is embedded before New returns.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.corpusPath == "" && len(cfg.cases) == 0 {
		return nil, errors.New("consultancy: corpus required (use WithCorpusFile or WithCases)")
	}

	store, err := createStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	c := wireClient(store, cfg, obs)
	if err := c.load(ctx, false); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func createStore(ctx context.Context, cfg *clientConfig) (db.BlobStore, error) {
	var (
		store db.BlobStore
		err   error
	)
	switch cfg.cacheDriver {
	case "":
		return nil, nil //nolint:nilnil // no cache configured
	case "file":
		store, err = dbFile.NewStore(cfg.cacheDir)
	case "redis", "valkey":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.addrs,
			Password:  cfg.password,
			KeyPrefix: "consultancy:",
		})
	default:
		return nil, fmt.Errorf("consultancy: unknown cache driver %q", cfg.cacheDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("consultancy: create %s store: %w", cfg.cacheDriver, err)
	}

	if w, ok := store.(db.ReadyWaiter); ok {
		if err := w.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("consultancy: cache store not ready: %w", err)
		}
	}
	return store, nil
}

func wireClient(store db.BlobStore, cfg *clientConfig, obs *observer) *Client {
	log := zap.NewNop()

	var engineOpts []searchuc.Option
	if store != nil {
		engineOpts = append(engineOpts,
			searchuc.WithMatrixCache(embcache.New(store, metrics.EmbeddingCacheTotal, log)))
	}

	var (
		qdrant    *vectordb.Store
		ingestSvc ingestUseCase
	)
	if cfg.qdrantURL != "" || cfg.collection != "" {
		qdrant = vectordb.New(vectordb.Config{URL: cfg.qdrantURL, Collection: cfg.collection, Logger: log})
		engineOpts = append(engineOpts, searchuc.WithVectorSearcher(qdrant))
		if cfg.embedder != nil {
			ingestSvc = ingestuc.New(cfg.embedder, qdrant, log)
		}
	}

	engine := searchuc.NewEngine(cfg.embedder, log, engineOpts...)

	var composer *answeruc.LLMComposer
	if cfg.completer != nil {
		composer = answeruc.NewLLMComposer(cfg.completer, answeruc.BreakerSettings{
			MinRequests:      5,
			FailureRatio:     0.5,
			OpenTimeout:      30 * time.Second,
			HalfOpenMaxCalls: 1,
		}, log)
	}

	chatCfg := answeruc.Config{
		DefaultMode:     mode.Hybrid,
		Weights:         request.DefaultWeights(),
		LexicalFallback: cfg.lexicalFallback,
	}
	if cfg.embedder == nil {
		chatCfg.DefaultMode = mode.Lexical
	}
	var chatSvc *answeruc.Service
	if composer != nil {
		chatSvc = answeruc.NewService(engine, composer, nil, chatCfg, log)
	} else {
		// a nil *LLMComposer would be a non-nil composer
		chatSvc = answeruc.NewService(engine, nil, nil, chatCfg, log)
	}

	healthOpts := []healthuc.Option{healthuc.WithCacheStore(store)}
	if hc, ok := cfg.embedder.(domain.HealthChecker); ok {
		healthOpts = append(healthOpts, healthuc.WithChecker("embedding", hc))
	}
	if qdrant != nil {
		healthOpts = append(healthOpts, healthuc.WithChecker("vectordb", qdrant))
	}

	return &Client{
		cfg:       cfg,
		store:     store,
		loader:    corpus.NewLoader(log),
		engine:    engine,
		chatSvc:   chatSvc,
		ingestSvc: ingestSvc,
		healthSvc: healthuc.New(engine, healthOpts...),
		obs:       obs,
	}
}

func (c *Client) readCorpus(ctx context.Context) (*cases.Corpus, error) {
	if c.cfg.corpusPath == "" {
		rows := make([]cases.Case, len(c.cfg.cases))
		for i, pc := range c.cfg.cases {
			rows[i] = caseToDomain(pc)
		}
		return cases.NewCorpus(rows), nil
	}
	corp, err := c.loader.Read(ctx, c.cfg.corpusPath)
	if err != nil {
		return nil, fmt.Errorf("consultancy: %w", err)
	}
	return corp, nil
}

func (c *Client) load(ctx context.Context, force bool) error {
	corp, err := c.readCorpus(ctx)
	if err != nil {
		return err
	}
	var opts []searchuc.LoadOption
	switch {
	case force:
		opts = append(opts, searchuc.WithForceRefresh())
	case c.cfg.eager:
		opts = append(opts, searchuc.WithEagerEmbedding())
	}
	if err := c.engine.Load(ctx, corp, opts...); err != nil {
		return fmt.Errorf("consultancy: load corpus: %w", err)
	}
	return nil
}

// Close releases the cache store.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Len returns the number of loaded cases.
func (c *Client) Len() int { return c.engine.CorpusSize() }

// Case returns a loaded case by id.
func (c *Client) Case(id string) (Case, bool) {
	dc, ok := c.engine.CaseByID(id)
	if !ok {
		return Case{}, false
	}
	return caseFromDomain(&dc), true
}

// Search ranks the corpus for query. The default mode is hybrid, or
// lexical when no embedder is configured.
func (c *Client) Search(ctx context.Context, query string, opts ...SearchOption) (out []Result, err error) {
	start := time.Now()
	so := c.searchOptions(opts)
	defer func() { c.obs.searched(string(so.mode), out, start, err) }()

	req, err := request.New(query, so.mode, so.topK, 0, so.weights)
	if err != nil {
		return nil, err
	}
	rs, err := c.engine.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return resultsFromDomain(rs), nil
}

// Chat answers a message and records it in the session history.
// Ranking and model failures degrade to a template answer, so the only
// error is an invalid request.
func (c *Client) Chat(ctx context.Context, sessionID, message string, opts ...SearchOption) (ans Answer, err error) {
	start := time.Now()
	defer func() { c.obs.answered(&ans, start, err) }()

	so := c.searchOptions(opts)
	in := answeruc.ChatInput{SessionID: sessionID, Message: message, TopK: so.topK}
	if so.modeSet {
		in.Mode = string(so.mode)
	}
	a, err := c.chatSvc.Chat(ctx, in)
	if err != nil {
		return Answer{}, fmt.Errorf("chat: %w", err)
	}
	return answerFromDomain(&a), nil
}

// Reindex rereads the corpus and re-embeds it, bypassing any cached matrix.
func (c *Client) Reindex(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.maintained("reindex", start, err, "cases", c.Len()) }()

	return c.load(ctx, true)
}

// Ingest copies the corpus into the Qdrant collection configured with
// WithQdrant. Requires an embedder.
func (c *Client) Ingest(ctx context.Context) (report IngestReport, err error) {
	start := time.Now()
	defer func() {
		c.obs.maintained("ingest", start, err, "cases", report.Cases, "chunks", report.Chunks)
	}()

	if c.ingestSvc == nil {
		return IngestReport{}, errors.New("consultancy: ingest requires WithQdrant and an embedder")
	}
	corp, err := c.readCorpus(ctx)
	if err != nil {
		return IngestReport{}, err
	}
	rep, err := c.ingestSvc.Run(ctx, corp)
	if err != nil {
		return IngestReport{}, fmt.Errorf("ingest: %w", err)
	}
	return IngestReport{Cases: rep.Cases, Chunks: rep.Chunks, Dimensions: rep.Dimensions}, nil
}

func (c *Client) searchOptions(opts []SearchOption) searchOptions {
	so := searchOptions{mode: mode.Hybrid, weights: request.DefaultWeights()}
	if c.cfg.embedder == nil {
		so.mode = mode.Lexical
	}
	for _, o := range opts {
		o(&so)
	}
	return so
}

type searchOptions struct {
	mode    mode.Mode
	modeSet bool
	topK    int
	weights request.Weights
}

// SearchOption tunes one Search or Chat call.
type SearchOption func(*searchOptions)

// Mode selects the retrieval strategy (ModeHybrid, ModeSemantic, ModeLexical, ModeVector).
func Mode(m string) SearchOption {
	return func(o *searchOptions) {
		o.mode = mode.Parse(m)
		o.modeSet = true
	}
}

// TopK sets the number of results. Default 6.
func TopK(k int) SearchOption {
	return func(o *searchOptions) { o.topK = k }
}

// Weights sets the hybrid fusion weights. Default 0.7 / 0.3.
func Weights(semantic, keyword float64) SearchOption {
	return func(o *searchOptions) {
		o.weights = request.Weights{Semantic: semantic, Keyword: keyword}
	}
}
