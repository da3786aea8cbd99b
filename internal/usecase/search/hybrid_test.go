package search

import (
	"testing"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/request"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/result"
)

func scored(id string, score float64, m result.Method) result.ScoredCase {
	return result.New(cases.New(id, "title "+id, "", "", ""), score, m)
}

func ids(rs []result.ScoredCase) []string {
	out := make([]string, len(rs))
	for i := range rs {
		out[i] = rs[i].ID()
	}
	return out
}

func TestFuse_Merge(t *testing.T) {
	sem := []result.ScoredCase{scored("A", 0.8, result.Semantic), scored("B", 0.4, result.Semantic)}
	kw := []result.ScoredCase{scored("C", 2.0, result.Lexical), scored("A", 1.0, result.Lexical)}

	got := fuse(sem, kw, 3, request.Weights{Semantic: 0.7, Keyword: 0.3})

	want := []struct {
		id            string
		score, sc, kc float64
		rawSem, rawKw float64
	}{
		{"A", 0.85, 1, 0.5, 0.8, 1.0},
		{"B", 0.35, 0.5, 0, 0.4, 0},
		{"C", 0.3, 0, 1, 0, 2.0},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	for i, w := range want {
		r := got[i]
		if r.ID() != w.id {
			t.Fatalf("position %d: expected %s, got %v", i, w.id, ids(got))
		}
		if !almostEqual(r.Score(), w.score) || !almostEqual(r.SemanticScore(), w.sc) || !almostEqual(r.KeywordScore(), w.kc) {
			t.Errorf("%s: got score=%v sem=%v kw=%v, want %v/%v/%v",
				w.id, r.Score(), r.SemanticScore(), r.KeywordScore(), w.score, w.sc, w.kc)
		}
		if p := r.Components(); p.RawSemantic != w.rawSem || p.RawKeyword != w.rawKw {
			t.Errorf("%s: raw components %+v, want %v/%v", w.id, p, w.rawSem, w.rawKw)
		}
		if r.Method() != result.Hybrid {
			t.Errorf("expected method hybrid, got %s", r.Method())
		}
	}
}

func TestFuse_TiesKeepDiscoveryOrder(t *testing.T) {
	sem := []result.ScoredCase{scored("A", 1, result.Semantic)}
	kw := []result.ScoredCase{scored("B", 1, result.Lexical)}

	got := fuse(sem, kw, 2, request.Weights{Semantic: 0.5, Keyword: 0.5})
	if g := ids(got); g[0] != "A" || g[1] != "B" {
		t.Errorf("expected [A B], got %v", g)
	}

	got = fuse(sem, kw, 2, request.Weights{})
	if g := ids(got); g[0] != "A" || g[1] != "B" {
		t.Errorf("expected [A B] with zero weights, got %v", g)
	}
}

func TestFuse_ZeroMaxSkipsNormalization(t *testing.T) {
	sem := []result.ScoredCase{scored("A", 0, result.Semantic), scored("B", 0, result.Semantic)}
	kw := []result.ScoredCase{scored("A", 0, result.Lexical)}

	got := fuse(sem, kw, 5, request.DefaultWeights())
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	for i := range got {
		if got[i].Score() != 0 {
			t.Errorf("%s: expected zero score, got %v", got[i].ID(), got[i].Score())
		}
	}
}

func TestFuse_NegativeMaxLeftAsIs(t *testing.T) {
	sem := []result.ScoredCase{scored("A", -0.2, result.Semantic), scored("B", -0.5, result.Semantic)}

	got := fuse(sem, nil, 2, request.Weights{Semantic: 1})
	if !almostEqual(got[0].SemanticScore(), -0.2) || !almostEqual(got[1].SemanticScore(), -0.5) {
		t.Errorf("expected raw negative scores, got %v and %v", got[0].SemanticScore(), got[1].SemanticScore())
	}
}

func TestFuse_DuplicateSemanticIDReplacesInPlace(t *testing.T) {
	sem := []result.ScoredCase{
		scored("A", 1.0, result.Semantic),
		scored("B", 0.5, result.Semantic),
		scored("A", 0.2, result.Semantic),
	}

	got := fuse(sem, nil, 5, request.Weights{Semantic: 1})
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %v", ids(got))
	}
	if got[0].ID() != "B" || !almostEqual(got[1].SemanticScore(), 0.2) {
		t.Errorf("expected later A entry to replace the first, got %v (A sem=%v)", ids(got), got[1].SemanticScore())
	}
}

func TestFuse_TruncatesAndNormalizationBound(t *testing.T) {
	sem := []result.ScoredCase{
		scored("A", 0.9, result.Semantic), scored("B", 0.6, result.Semantic), scored("C", 0.3, result.Semantic),
	}
	kw := []result.ScoredCase{
		scored("C", 3.0, result.Lexical), scored("D", 1.5, result.Lexical), scored("A", 0.1, result.Lexical),
	}
	w := request.DefaultWeights()

	got := fuse(sem, kw, 2, w)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}

	all := fuse(sem, kw, 10, w)
	for i := range all {
		r := all[i]
		if r.SemanticScore() > 1 || r.KeywordScore() > 1 {
			t.Errorf("%s: component above 1: sem=%v kw=%v", r.ID(), r.SemanticScore(), r.KeywordScore())
		}
		if want := r.SemanticScore()*w.Semantic + r.KeywordScore()*w.Keyword; !almostEqual(r.Score(), want) {
			t.Errorf("%s: score %v != weighted sum %v", r.ID(), r.Score(), want)
		}
		if i > 0 && all[i-1].Score() < r.Score() {
			t.Errorf("not sorted at %d", i)
		}
	}

	if got := fuse(sem, kw, 0, w); len(got) != 0 {
		t.Errorf("expected empty result for k=0, got %d", len(got))
	}
}
