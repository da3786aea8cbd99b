package health

import "context"

// DBPinger checks cache store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker checks an upstream service (embedding provider, LLM, vector database).
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// CorpusState reports whether the search engine has a corpus loaded.
type CorpusState interface {
	Ready() bool
	CorpusSize() int
}
