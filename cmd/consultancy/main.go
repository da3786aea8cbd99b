package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/config"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/corpus"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/db"
	dbFile "github.com/maryamnawas03/consultancy-AI-agent/internal/db/file"
	dbRedis "github.com/maryamnawas03/consultancy-AI-agent/internal/db/redis"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/mode"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/request"
	logpkg "github.com/maryamnawas03/consultancy-AI-agent/internal/logger"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/metrics"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/repository/embcache"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/repository/vectordb"
	chiTransport "github.com/maryamnawas03/consultancy-AI-agent/internal/transport/chi"
	ollamaEmb "github.com/maryamnawas03/consultancy-AI-agent/internal/transport/ollama"
	openaiEmb "github.com/maryamnawas03/consultancy-AI-agent/internal/transport/openai"
	answeruc "github.com/maryamnawas03/consultancy-AI-agent/internal/usecase/answer"
	embeddinguc "github.com/maryamnawas03/consultancy-AI-agent/internal/usecase/embedding"
	healthuc "github.com/maryamnawas03/consultancy-AI-agent/internal/usecase/health"
	searchuc "github.com/maryamnawas03/consultancy-AI-agent/internal/usecase/search"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting consultancy API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("default_mode", cfg.Search.DefaultMode),
	)

	ctx := context.Background()

	store, err := buildStore(ctx, &cfg)
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	defer store.Close()

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	embedder := buildEmbedder(&cfg, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", embedder.ModelID()),
	)

	cacheOpts := []embcache.Option{}
	if cfg.Cache.ValidateContent {
		cacheOpts = append(cacheOpts, embcache.WithContentValidation())
	}
	engineOpts := []searchuc.Option{
		searchuc.WithMatrixCache(embcache.New(store, metrics.EmbeddingCacheTotal, logger, cacheOpts...)),
		searchuc.WithBuildTimeout(time.Duration(cfg.Embedding.BuildTimeoutSec) * time.Second),
	}

	var qdrant *vectordb.Store
	if cfg.VectorDB.URL != "" {
		qdrant = vectordb.New(vectordb.Config{
			URL:        cfg.VectorDB.URL,
			Collection: cfg.VectorDB.Collection,
			Timeout:    time.Duration(cfg.VectorDB.TimeoutSec) * time.Second,
			Logger:     logger,
		})
		engineOpts = append(engineOpts, searchuc.WithVectorSearcher(qdrant))
	}

	engine := searchuc.NewEngine(embedder, logger, engineOpts...)

	cases := corpus.NewLoader(logger).Load(ctx, cfg.Corpus.Path)
	var loadOpts []searchuc.LoadOption
	if cfg.Search.EagerEmbedding {
		loadOpts = append(loadOpts, searchuc.WithEagerEmbedding())
	}
	if err := engine.Load(ctx, cases, loadOpts...); err != nil {
		// lexical search still works; semantic retries on first query
		logger.Warn("Corpus embedding failed", zap.Error(err))
	}

	weights := request.Weights{Semantic: cfg.Search.SemanticWeight, Keyword: cfg.Search.KeywordWeight}
	chatCfg := answeruc.Config{
		DefaultMode:      mode.Mode(cfg.Search.DefaultMode),
		DefaultTopK:      cfg.Search.DefaultTopK,
		MaxTopK:          cfg.Search.MaxTopK,
		Weights:          weights,
		LexicalThreshold: cfg.Search.LexicalGate,
		VectorThreshold:  cfg.Search.VectorGate,
		LexicalFallback:  cfg.Search.LexicalFallback,
	}
	sessions := answeruc.NewSessions(answeruc.DefaultMaxTurns, answeruc.DefaultMaxSessions)

	var chatSvc *answeruc.Service
	healthOpts := []healthuc.Option{
		healthuc.WithCacheStore(store),
		healthuc.WithChecker("embedding", newEmbeddingHealthChecker(embedder)),
	}
	if qdrant != nil {
		healthOpts = append(healthOpts, healthuc.WithChecker("vectordb", qdrant))
	}
	if cfg.LLM.Enabled {
		generator := openaiEmb.NewGenerator(&openaiEmb.GeneratorConfig{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
			Logger:      logger,
		})
		composer := answeruc.NewLLMComposer(generator, answeruc.BreakerSettings{
			MinRequests:      cfg.LLM.Breaker.MinRequests,
			FailureRatio:     cfg.LLM.Breaker.FailureRatio,
			OpenTimeout:      time.Duration(cfg.LLM.Breaker.OpenTimeoutSec) * time.Second,
			HalfOpenMaxCalls: cfg.LLM.Breaker.HalfOpenMaxCall,
		}, logger)
		chatSvc = answeruc.NewService(engine, composer, sessions, chatCfg, logger)
		healthOpts = append(healthOpts, healthuc.WithChecker("llm", generator))
		logger.Info("LLM answers enabled", zap.String("model", cfg.LLM.Model))
	} else {
		chatSvc = answeruc.NewService(engine, nil, sessions, chatCfg, logger)
	}

	healthSvc := healthuc.New(engine, healthOpts...)

	server := chiTransport.NewServer(chatSvc, engine, healthSvc, chiTransport.SearchDefaults{
		Mode:    mode.Mode(cfg.Search.DefaultMode),
		TopK:    cfg.Search.DefaultTopK,
		MaxTopK: cfg.Search.MaxTopK,
		Weights: weights,
	}, logger)
	handler := chiTransport.NewRouter(server, logger, cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", addr),
			zap.Int("cases_loaded", engine.CorpusSize()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildStore opens the embedding cache storage and waits for networked stores.
func buildStore(ctx context.Context, cfg *config.Config) (db.BlobStore, error) {
	var (
		store db.BlobStore
		err   error
	)
	switch cfg.Cache.Driver {
	case "redis", "valkey":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Cache.Addrs,
			Password:  cfg.Cache.Password,
			KeyPrefix: cfg.Cache.KeyPrefix,
		})
	default:
		store, err = dbFile.NewStore(cfg.Cache.Dir)
	}
	if err != nil {
		return nil, err
	}

	if w, ok := store.(db.ReadyWaiter); ok {
		timeout := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := w.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("cache store not ready: %w", err)
		}
	}
	return store, nil
}

// buildEmbedder assembles the decorator chain: provider -> Instrumented (chunking + logging).
func buildEmbedder(cfg *config.Config, logger *zap.Logger) domain.Embedder {
	timeout := time.Duration(cfg.Embedding.TimeoutSec) * time.Second

	var base domain.Embedder
	switch cfg.Embedding.Provider {
	case "openai":
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Timeout:    timeout,
			Logger:     logger,
		})
	default:
		base = ollamaEmb.NewEmbedder(&ollamaEmb.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Timeout:    timeout,
			Logger:     logger,
		})
	}

	return embeddinguc.NewInstrumentedEmbedder(base, cfg.Embedding.Provider, cfg.Embedding.MaxBatchSize, logger)
}

// embeddingHealthChecker wraps domain.Embedder to implement health.Checker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
