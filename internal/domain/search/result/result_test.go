package result

import (
	"testing"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"
)

func TestNew(t *testing.T) {
	c := cases.New("C1", "Concrete cracking", "", "", "")
	r := New(c, 0.95, Lexical)

	if r.ID() != "C1" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Score() != 0.95 {
		t.Errorf("Score() = %f", r.Score())
	}
	if r.Method() != Lexical {
		t.Errorf("Method() = %q", r.Method())
	}
	got := r.Case()
	if got.Title() != "Concrete cracking" {
		t.Errorf("Case().Title() = %q", got.Title())
	}
	if r.SemanticScore() != 0 || r.KeywordScore() != 0 {
		t.Error("component scores should be zero for single-scorer results")
	}
}

func TestNewHybrid(t *testing.T) {
	r := NewHybrid(cases.New("C1", "", "", "", ""), 0.85, Components{Semantic: 1, Keyword: 0.5, RawSemantic: 0.62, RawKeyword: 0.4})
	if r.Method() != Hybrid {
		t.Errorf("Method() = %q", r.Method())
	}
	if r.SemanticScore() != 1 || r.KeywordScore() != 0.5 {
		t.Errorf("components = %f/%f", r.SemanticScore(), r.KeywordScore())
	}
	if p := r.Components(); p.RawSemantic != 0.62 || p.RawKeyword != 0.4 {
		t.Errorf("raw components = %+v", p)
	}
}

func TestBestScore(t *testing.T) {
	if BestScore(nil) != 0 {
		t.Error("BestScore(nil) should be 0")
	}
	rs := []ScoredCase{New(cases.New("a", "", "", "", ""), 0.4, Semantic), New(cases.New("b", "", "", "", ""), 0.2, Semantic)}
	if BestScore(rs) != 0.4 {
		t.Errorf("BestScore() = %f", BestScore(rs))
	}
}
