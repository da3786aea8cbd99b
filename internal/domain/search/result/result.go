package result

import "github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"

// Method identifies which scorer produced a result.
type Method string

// Scorer tags.
const (
	Lexical  Method = "lexical"
	Semantic Method = "semantic"
	Hybrid   Method = "hybrid"
	Vector   Method = "vector"
)

// ScoredCase is a case with a scorer-specific relevance score. Never mutated after construction.
type ScoredCase struct {
	c      cases.Case
	score  float64
	method Method
	parts  Components
}

// Components holds the per-scorer evidence behind a hybrid score.
type Components struct {
	Semantic    float64 // cosine divided by the best cosine in the list
	Keyword     float64 // keyword overlap divided by the best overlap in the list
	RawSemantic float64 // cosine before normalization, 0 when absent
	RawKeyword  float64 // keyword overlap before normalization, 0 when absent
}

// New creates a single-scorer result.
func New(c cases.Case, score float64, m Method) ScoredCase {
	return ScoredCase{c: c, score: score, method: m}
}

// NewHybrid creates a merged result carrying its component scores.
func NewHybrid(c cases.Case, score float64, parts Components) ScoredCase {
	return ScoredCase{c: c, score: score, method: Hybrid, parts: parts}
}

// Case returns the scored case.
func (r *ScoredCase) Case() cases.Case { return r.c }

// ID returns the case identifier.
func (r *ScoredCase) ID() string { return r.c.ID() }

// Score returns the relevance score.
func (r *ScoredCase) Score() float64 { return r.score }

// Method returns the producing scorer.
func (r *ScoredCase) Method() Method { return r.method }

// SemanticScore returns the normalized semantic component (hybrid only).
func (r *ScoredCase) SemanticScore() float64 { return r.parts.Semantic }

// KeywordScore returns the normalized keyword component (hybrid only).
func (r *ScoredCase) KeywordScore() float64 { return r.parts.Keyword }

// Components returns the hybrid evidence. Zero for single-scorer results.
func (r *ScoredCase) Components() Components { return r.parts }

// BestScore returns the score of the first result, or 0 for an empty list.
func BestScore(rs []ScoredCase) float64 {
	if len(rs) == 0 {
		return 0
	}
	return rs[0].score
}
