package mode

import "strings"

// Mode is the retrieval strategy.
type Mode string

// Search mode constants.
const (
	// Hybrid merges normalized semantic and lexical rankings.
	Hybrid   Mode = "hybrid"
	Semantic Mode = "semantic"
	Lexical  Mode = "lexical"
	// Vector queries the external vector database instead of the in-memory matrix.
	Vector Mode = "vector"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Semantic || m == Lexical || m == Vector
}

// NeedsEmbedding reports whether the mode calls the embedding provider.
func (m Mode) NeedsEmbedding() bool {
	return m != Lexical
}

// Parse normalizes user input. "keyword" is accepted as an alias for lexical.
func Parse(s string) Mode {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "keyword" {
		return Lexical
	}
	return Mode(s)
}
