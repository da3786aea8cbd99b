package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the consultancy API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Cache     CacheConfig     `yaml:"cache"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	LLM       LLMConfig       `yaml:"llm"`
	VectorDB  VectorDBConfig  `yaml:"vectordb"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CorpusConfig points at the tabular case file (.csv or .xlsx).
type CorpusConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig holds embedding matrix cache storage settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // file, redis, valkey (default: file)
	Dir              string   `yaml:"dir"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`

	// ValidateContent also compares case text, not just row count, before reusing a cache entry.
	ValidateContent bool `yaml:"validate_content"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider     string `yaml:"provider"` // openai, ollama
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	Model        string `yaml:"model"`
	Dimensions   int    `yaml:"dimensions"`
	TimeoutSec   int    `yaml:"timeout_sec"`
	MaxBatchSize int    `yaml:"max_batch_size"`

	// BuildTimeoutSec bounds one full corpus embedding, shared by all waiting requests.
	BuildTimeoutSec int `yaml:"build_timeout_sec"`
}

// SearchConfig holds ranking defaults and the confidence gate.
type SearchConfig struct {
	DefaultMode     string  `yaml:"default_mode"` // hybrid, semantic, lexical, vector
	DefaultTopK     int     `yaml:"default_top_k"`
	MaxTopK         int     `yaml:"max_top_k"`
	SemanticWeight  float64 `yaml:"semantic_weight"`
	KeywordWeight   float64 `yaml:"keyword_weight"`
	LexicalGate     float64 `yaml:"lexical_threshold"`
	VectorGate      float64 `yaml:"vector_threshold"`
	LexicalFallback bool    `yaml:"lexical_fallback"`
	EagerEmbedding  bool    `yaml:"eager_embedding"`
}

// LLMConfig holds answer generation settings (OpenAI-compatible chat API).
type LLMConfig struct {
	Enabled     bool          `yaml:"enabled"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	TimeoutSec  int           `yaml:"timeout_sec"`
	Breaker     BreakerConfig `yaml:"breaker"`
}

// BreakerConfig holds circuit breaker settings for the LLM call.
type BreakerConfig struct {
	MinRequests     uint32  `yaml:"min_requests"`
	FailureRatio    float64 `yaml:"failure_ratio"`
	OpenTimeoutSec  int     `yaml:"open_timeout_sec"`
	HalfOpenMaxCall uint32  `yaml:"half_open_max_calls"`
}

// VectorDBConfig holds Qdrant settings for the vector-database variant.
type VectorDBConfig struct {
	URL        string `yaml:"url"`
	Collection string `yaml:"collection"`
	ChunkChars int    `yaml:"chunk_chars"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// RateLimitConfig holds per-process request rate limits. Zero RPS disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// LLM generation can take a while on local models.
		c.HTTP.WriteTimeoutSec = 180
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Corpus.Path == "" {
		c.Corpus.Path = "data/cases.csv"
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "file"
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "data"
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "consultancy:"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "ollama"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "nomic-embed-text"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 120
	}
	if c.Embedding.MaxBatchSize <= 0 {
		c.Embedding.MaxBatchSize = 32
	}
	if c.Embedding.BuildTimeoutSec <= 0 {
		c.Embedding.BuildTimeoutSec = 600
	}
	if c.Search.DefaultMode == "" {
		c.Search.DefaultMode = "hybrid"
	}
	if c.Search.DefaultTopK <= 0 {
		c.Search.DefaultTopK = 6
	}
	if c.Search.MaxTopK <= 0 {
		c.Search.MaxTopK = 50
	}
	if c.Search.SemanticWeight == 0 && c.Search.KeywordWeight == 0 {
		c.Search.SemanticWeight = 0.7
		c.Search.KeywordWeight = 0.3
	}
	if c.Search.LexicalGate <= 0 {
		c.Search.LexicalGate = 0.1
	}
	if c.Search.VectorGate <= 0 {
		c.Search.VectorGate = 0.25
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "mistral:7b-instruct"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.2
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 120
	}
	if c.LLM.Breaker.MinRequests == 0 {
		c.LLM.Breaker.MinRequests = 5
	}
	if c.LLM.Breaker.FailureRatio <= 0 {
		c.LLM.Breaker.FailureRatio = 0.5
	}
	if c.LLM.Breaker.OpenTimeoutSec <= 0 {
		c.LLM.Breaker.OpenTimeoutSec = 30
	}
	if c.LLM.Breaker.HalfOpenMaxCall == 0 {
		c.LLM.Breaker.HalfOpenMaxCall = 1
	}
	if c.VectorDB.Collection == "" {
		c.VectorDB.Collection = "cases"
	}
	if c.VectorDB.ChunkChars <= 0 {
		c.VectorDB.ChunkChars = 1200
	}
	if c.VectorDB.TimeoutSec <= 0 {
		c.VectorDB.TimeoutSec = 60
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = int(c.RateLimit.RPS) + 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Cache.Driver {
	case "file":
	case "redis", "valkey":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be \"file\", \"redis\" or \"valkey\", got %q", c.Cache.Driver)
	}
	switch c.Embedding.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("embedding.provider must be \"openai\" or \"ollama\", got %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must be >= 0, got %d", c.Embedding.Dimensions)
	}
	switch c.Search.DefaultMode {
	case "hybrid", "semantic", "lexical", "vector":
	default:
		return fmt.Errorf(
			"search.default_mode must be one of hybrid, semantic, lexical, vector, got %q",
			c.Search.DefaultMode,
		)
	}
	if c.Search.DefaultMode == "vector" && c.VectorDB.URL == "" {
		return fmt.Errorf("vectordb.url is required when search.default_mode is \"vector\"")
	}
	if c.Search.SemanticWeight < 0 || c.Search.KeywordWeight < 0 {
		return fmt.Errorf("search weights must be non-negative")
	}
	if c.Search.DefaultTopK > c.Search.MaxTopK {
		return fmt.Errorf("search.default_top_k (%d) exceeds search.max_top_k (%d)",
			c.Search.DefaultTopK, c.Search.MaxTopK)
	}
	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("rate_limit.rps must be >= 0, got %v", c.RateLimit.RPS)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
