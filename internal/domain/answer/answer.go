package answer

import "github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/result"

// Method identifies how the answer text was composed.
type Method string

// Composition methods.
const (
	// LLM means the text came from the language model.
	LLM Method = "llm"
	// Template means the deterministic markdown template was used by configuration.
	Template Method = "template"
	// TemplateFallback means the language model failed and the template answered instead.
	TemplateFallback Method = "template_fallback"
)

// Answer is the composed reply to one chat message.
type Answer struct {
	Text          string
	Sources       []string
	BestScore     float64
	Method        Method
	SearchMode    string
	Trade         string
	LowConfidence bool
	Results       []result.ScoredCase
}
