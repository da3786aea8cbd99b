package search

import (
	"cmp"
	"slices"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/request"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/result"
)

type mergedCase struct {
	c     cases.Case
	parts result.Components
	score float64
	order int // first-seen position in the merge
}

// normalize divides every score by the list maximum. Lists whose maximum is
// not positive are left as they are.
func normalize(rs []result.ScoredCase) []float64 {
	out := make([]float64, len(rs))
	top := 0.0
	for i := range rs {
		out[i] = rs[i].Score()
		if i == 0 || out[i] > top {
			top = out[i]
		}
	}
	if top > 0 {
		for i := range out {
			out[i] /= top
		}
	}
	return out
}

// fuse merges normalized semantic and keyword lists by case id.
//
// Semantic entries are inserted first with score = semantic × w.Semantic; a
// repeated id in the semantic list replaces the earlier entry in place.
// Keyword entries then add keyword × w.Keyword to an existing entry or insert
// a new one with semantic = 0. The result is ordered by score descending,
// ties by first-seen order, and truncated to k.
func fuse(semantic, keyword []result.ScoredCase, k int, w request.Weights) []result.ScoredCase {
	if k <= 0 {
		return nil
	}
	semN := normalize(semantic)
	kwN := normalize(keyword)

	merged := make([]mergedCase, 0, len(semantic)+len(keyword))
	index := make(map[string]int, cap(merged))

	for i := range semantic {
		entry := mergedCase{
			c:     semantic[i].Case(),
			parts: result.Components{Semantic: semN[i], RawSemantic: semantic[i].Score()},
			score: semN[i] * w.Semantic,
		}
		id := semantic[i].ID()
		if j, ok := index[id]; ok {
			entry.order = merged[j].order
			merged[j] = entry
			continue
		}
		entry.order = len(merged)
		index[id] = len(merged)
		merged = append(merged, entry)
	}

	for i := range keyword {
		id := keyword[i].ID()
		if j, ok := index[id]; ok {
			merged[j].parts.Keyword = kwN[i]
			merged[j].parts.RawKeyword = keyword[i].Score()
			merged[j].score += kwN[i] * w.Keyword
			continue
		}
		index[id] = len(merged)
		merged = append(merged, mergedCase{
			c:     keyword[i].Case(),
			parts: result.Components{Keyword: kwN[i], RawKeyword: keyword[i].Score()},
			score: kwN[i] * w.Keyword,
			order: len(merged),
		})
	}

	slices.SortFunc(merged, func(a, b mergedCase) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})
	merged = merged[:min(k, len(merged))]

	out := make([]result.ScoredCase, len(merged))
	for i, m := range merged {
		out[i] = result.NewHybrid(m.c, m.score, m.parts)
	}
	return out
}
