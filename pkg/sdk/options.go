package consultancy

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	ollamaEmb "github.com/maryamnawas03/consultancy-AI-agent/internal/transport/ollama"
	openaiEmb "github.com/maryamnawas03/consultancy-AI-agent/internal/transport/openai"
)

const defaultTimeout = 120 * time.Second

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	corpusPath string
	cases      []Case

	embedder  domain.Embedder
	completer domain.Completer

	cacheDriver string // "file", "redis" or "valkey"; empty disables the cache
	cacheDir    string
	addrs       []string
	password    string

	qdrantURL  string
	collection string

	lexicalFallback bool
	eager           bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithCorpusFile loads cases from a CSV or XLSX file.
func WithCorpusFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.corpusPath = path
	})
}

// WithCases uses an in-memory corpus instead of a file.
func WithCases(cases ...Case) Option {
	return optionFunc(func(c *clientConfig) {
		c.cases = append(c.cases, cases...)
	})
}

// WithEmbedder sets the text embedding provider.
// Required for semantic, hybrid and vector search.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = &embedderAdapter{inner: e}
	})
}

// WithOpenAI embeds through an OpenAI-compatible /v1/embeddings endpoint.
func WithOpenAI(baseURL, apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:   apiKey,
			BaseURL:  baseURL,
			Model:    model,
			Provider: "openai",
			Timeout:  defaultTimeout,
		})
	})
}

// WithOllama embeds through Ollama's native /api/embed endpoint.
func WithOllama(baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = ollamaEmb.NewEmbedder(&ollamaEmb.Config{
			BaseURL: baseURL,
			Model:   model,
			Timeout: defaultTimeout,
		})
	})
}

// WithCompleter enables model-written answers in Chat.
// Without it Chat answers from the deterministic template.
func WithCompleter(cp Completer) Option {
	return optionFunc(func(c *clientConfig) {
		c.completer = &completerAdapter{inner: cp}
	})
}

// WithOpenAIChat enables model-written answers through an OpenAI-compatible
// chat completions endpoint.
func WithOpenAIChat(baseURL, apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.completer = openaiEmb.NewGenerator(&openaiEmb.GeneratorConfig{
			APIKey:      apiKey,
			BaseURL:     baseURL,
			Model:       model,
			Temperature: 0.2,
			Timeout:     defaultTimeout,
		})
	})
}

// WithFileCache persists the corpus embedding matrix under dir.
func WithFileCache(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "file"
		c.cacheDir = dir
	})
}

// WithRedis persists the corpus embedding matrix in Redis.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithValkey persists the corpus embedding matrix in Valkey.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithQdrant enables vector mode and Ingest against a Qdrant collection.
// Empty values fall back to http://localhost:6333 and "cases".
func WithQdrant(url, collection string) Option {
	return optionFunc(func(c *clientConfig) {
		c.qdrantURL = url
		c.collection = collection
	})
}

// WithLexicalFallback makes Chat retry lexically when semantic search fails.
func WithLexicalFallback() Option {
	return optionFunc(func(c *clientConfig) {
		c.lexicalFallback = true
	})
}

// WithEagerEmbedding embeds the corpus in New instead of on the first
// semantic query.
func WithEagerEmbedding() Option {
	return optionFunc(func(c *clientConfig) {
		c.eager = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (searches by mode and outcome, best
// scores, answers by confidence, maintenance runs, call latency)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
