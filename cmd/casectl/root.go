package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/config"
	consultancy "github.com/maryamnawas03/consultancy-AI-agent/pkg/sdk"
)

var (
	configPath string
	corpusPath string
	verbose    bool
)

// client is the part of the SDK the commands use.
type client interface {
	Search(ctx context.Context, query string, opts ...consultancy.SearchOption) ([]consultancy.Result, error)
	Chat(ctx context.Context, sessionID, message string, opts ...consultancy.SearchOption) (consultancy.Answer, error)
	Reindex(ctx context.Context) error
	Ingest(ctx context.Context) (consultancy.IngestReport, error)
	Len() int
	Close()
}

// newClient is replaced in tests.
var newClient = func(ctx context.Context) (client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return consultancy.New(ctx, clientOptions(&cfg)...)
}

var rootCmd = &cobra.Command{
	Use:   "casectl",
	Short: "Query the construction case corpus",
	Long: `casectl loads the case corpus and embedding configuration from the
same YAML files as the API server (config/<ENV>.yaml) and runs searches,
answers and maintenance tasks locally.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default config/$ENV.yaml)")
	rootCmd.PersistentFlags().StringVar(&corpusPath, "corpus", "", "case file, overrides corpus.path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log SDK operations to stderr")
}

func loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(config.GetEnv())
	}
	if err != nil {
		return config.Config{}, err
	}
	if corpusPath != "" {
		cfg.Corpus.Path = corpusPath
	}
	return cfg, nil
}

// clientOptions maps the server configuration onto SDK options.
func clientOptions(cfg *config.Config) []consultancy.Option {
	opts := []consultancy.Option{consultancy.WithCorpusFile(cfg.Corpus.Path)}

	switch cfg.Embedding.Provider {
	case "openai":
		opts = append(opts, consultancy.WithOpenAI(cfg.Embedding.BaseURL, cfg.Embedding.APIKey, cfg.Embedding.Model))
	default:
		opts = append(opts, consultancy.WithOllama(cfg.Embedding.BaseURL, cfg.Embedding.Model))
	}

	switch cfg.Cache.Driver {
	case "redis":
		opts = append(opts, consultancy.WithRedis(cfg.Cache.Addrs[0], cfg.Cache.Password))
	case "valkey":
		opts = append(opts, consultancy.WithValkey(cfg.Cache.Addrs[0], cfg.Cache.Password))
	default:
		opts = append(opts, consultancy.WithFileCache(cfg.Cache.Dir))
	}

	if cfg.VectorDB.URL != "" {
		opts = append(opts, consultancy.WithQdrant(cfg.VectorDB.URL, cfg.VectorDB.Collection))
	}
	if cfg.LLM.Enabled {
		opts = append(opts, consultancy.WithOpenAIChat(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model))
	}
	if cfg.Search.LexicalFallback {
		opts = append(opts, consultancy.WithLexicalFallback())
	}
	if verbose {
		opts = append(opts, consultancy.WithLogger(
			slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})),
		))
	}
	return opts
}

func openClient(cmd *cobra.Command) (client, error) {
	c, err := newClient(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	return c, nil
}
