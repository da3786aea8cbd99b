package answer

import (
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/mode"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/result"
)

// Default gate thresholds.
const (
	DefaultLexicalThreshold = 0.1
	DefaultVectorThreshold  = 0.25
)

// Gate decides which results are relevant enough to cite.
type Gate struct {
	threshold float64

	// hybrid gates use raw component evidence, since a fused score is
	// relative to the best hit and always reaches the semantic weight.
	hybrid bool
	vector float64
}

// NewGate creates a gate that passes scores strictly above threshold.
func NewGate(threshold float64) Gate {
	return Gate{threshold: threshold}
}

// NewHybridGate creates a gate for fused results. A hybrid result passes when
// its raw keyword overlap exceeds lexical or its raw cosine exceeds vector.
// Results without components fall back to their score against lexical.
func NewHybridGate(lexical, vector float64) Gate {
	return Gate{threshold: lexical, hybrid: true, vector: vector}
}

// Threshold returns the minimum score to exceed.
func (g Gate) Threshold() float64 { return g.threshold }

// Passes reports whether score exceeds the threshold.
func (g Gate) Passes(score float64) bool { return score > g.threshold }

// Admits reports whether r is relevant enough to cite.
func (g Gate) Admits(r *result.ScoredCase) bool {
	if !g.hybrid || r.Method() != result.Hybrid {
		return g.Passes(r.Score())
	}
	p := r.Components()
	return p.RawKeyword > g.threshold || p.RawSemantic > g.vector
}

// Relevant returns the results that pass the gate, in order.
func (g Gate) Relevant(rs []result.ScoredCase) []result.ScoredCase {
	out := make([]result.ScoredCase, 0, len(rs))
	for i := range rs {
		if g.Admits(&rs[i]) {
			out = append(out, rs[i])
		}
	}
	return out
}

// gateFor picks the threshold scale matching the scorer: cosine scores for
// semantic and vector, keyword-overlap scale for lexical, both for hybrid.
func gateFor(m mode.Mode, lexical, vector float64) Gate {
	switch m {
	case mode.Semantic, mode.Vector:
		return NewGate(vector)
	case mode.Hybrid:
		return NewHybridGate(lexical, vector)
	default:
		return NewGate(lexical)
	}
}
