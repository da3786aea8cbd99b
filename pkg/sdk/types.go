package consultancy

import (
	domainanswer "github.com/maryamnawas03/consultancy-AI-agent/internal/domain/answer"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/result"
)

// Search modes.
const (
	ModeHybrid   = "hybrid"
	ModeSemantic = "semantic"
	ModeLexical  = "lexical"
	ModeVector   = "vector"
)

// Case is one resolved construction case.
type Case struct {
	ID       string
	Title    string
	Problem  string
	Solution string
	Tags     string // comma-separated
}

// Result is a ranked case.
type Result struct {
	Case   Case
	Score  float64
	Method string
	// Normalized component scores, set for hybrid results only.
	SemanticScore float64
	KeywordScore  float64
}

// Answer is a composed reply to a chat message.
type Answer struct {
	Text          string
	Sources       []string
	BestScore     float64
	Method        string // llm, template, template_fallback
	SearchMode    string
	Trade         string
	LowConfidence bool
	Results       []Result
}

// IngestReport summarizes a vector database ingestion.
type IngestReport struct {
	Cases      int
	Chunks     int
	Dimensions int
}

func caseFromDomain(c *cases.Case) Case {
	return Case{
		ID:       c.ID(),
		Title:    c.Title(),
		Problem:  c.Problem(),
		Solution: c.Solution(),
		Tags:     c.Tags(),
	}
}

func caseToDomain(c Case) cases.Case {
	return cases.New(c.ID, c.Title, c.Problem, c.Solution, c.Tags)
}

func resultsFromDomain(rs []result.ScoredCase) []Result {
	out := make([]Result, len(rs))
	for i := range rs {
		r := &rs[i]
		c := r.Case()
		out[i] = Result{
			Case:          caseFromDomain(&c),
			Score:         r.Score(),
			Method:        string(r.Method()),
			SemanticScore: r.SemanticScore(),
			KeywordScore:  r.KeywordScore(),
		}
	}
	return out
}

func answerFromDomain(a *domainanswer.Answer) Answer {
	return Answer{
		Text:          a.Text,
		Sources:       a.Sources,
		BestScore:     a.BestScore,
		Method:        string(a.Method),
		SearchMode:    a.SearchMode,
		Trade:         a.Trade,
		LowConfidence: a.LowConfidence,
		Results:       resultsFromDomain(a.Results),
	}
}
