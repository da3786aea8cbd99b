package search

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/result"
)

// Lexical boosts, applied independently and cumulatively.
const (
	phraseBoost = 0.5
	titleBoost  = 0.3
	tagsBoost   = 0.2
)

// wordRe matches Unicode word runs; everything else is a delimiter.
var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

func wordSet(s string) map[string]struct{} {
	words := wordRe.FindAllString(s, -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// LexicalScore is the keyword-overlap relevance of c for query:
//
//	|query words ∩ case words| / max(|query words|, 1)
//	+0.5 if the lowercased query occurs verbatim in the case text
//	+0.3 if any query word is a substring of the lowercased title
//	+0.2 if any query word is a substring of the lowercased tags
//
// The result is not clamped.
func LexicalScore(query string, c cases.Case) float64 {
	q := strings.ToLower(query)
	return scoreWords(q, wordSet(q), &c)
}

func scoreWords(q string, qWords map[string]struct{}, c *cases.Case) float64 {
	text := strings.ToLower(c.FullText())
	textWords := wordSet(text)

	common := 0
	for w := range qWords {
		if _, ok := textWords[w]; ok {
			common++
		}
	}
	score := float64(common) / float64(max(len(qWords), 1))

	if strings.Contains(text, q) {
		score += phraseBoost
	}
	if anySubstring(qWords, strings.ToLower(c.Title())) {
		score += titleBoost
	}
	if anySubstring(qWords, strings.ToLower(c.Tags())) {
		score += tagsBoost
	}
	return score
}

func anySubstring(words map[string]struct{}, s string) bool {
	for w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// rankLexical scores every row and returns the top k, ties in row order.
func rankLexical(query string, corpus *cases.Corpus, k int) []result.ScoredCase {
	n := corpus.Len()
	if k <= 0 || n == 0 {
		return nil
	}

	q := strings.ToLower(query)
	qWords := wordSet(q)

	rows := make([]scoredRow, n)
	for i := range rows {
		c := corpus.At(i)
		rows[i] = scoredRow{row: i, score: scoreWords(q, qWords, &c)}
	}
	return topK(rows, corpus, k, result.Lexical)
}

type scoredRow struct {
	row   int
	score float64
}

// topK sorts by score descending with row index as the explicit tie-break.
func topK(rows []scoredRow, corpus *cases.Corpus, k int, m result.Method) []result.ScoredCase {
	slices.SortFunc(rows, func(a, b scoredRow) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.row, b.row)
	})
	rows = rows[:min(k, len(rows))]

	out := make([]result.ScoredCase, len(rows))
	for i, r := range rows {
		out[i] = result.New(corpus.At(r.row), r.score, m)
	}
	return out
}
