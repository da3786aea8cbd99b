package answer

import (
	"fmt"
	"strings"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/result"
)

// Fixed replies for the two no-answer outcomes.
const (
	NoResultsText = "I couldn't find any relevant cases for your query. " +
		"Please try rephrasing your question or check if it's related to construction problems covered in our database."
	LowConfidenceText = "I found some potentially related cases, but they may not be directly relevant to your specific question. " +
		"Please try being more specific about the construction problem you're facing."
)

const (
	maxRelated = 2
	maxSources = 3
)

// ComposeTemplate renders the deterministic markdown answer. results is the
// full ranked list and relevant the part of it that passed the gate.
func ComposeTemplate(results, relevant []result.ScoredCase) string {
	if len(results) == 0 {
		return NoResultsText
	}
	if len(relevant) == 0 {
		return LowConfidenceText
	}

	top := relevant[0].Case()
	parts := []string{
		"Based on similar cases in our database:\n",
		fmt.Sprintf("**Primary Recommendation (Case %s):**", top.ID()),
		fmt.Sprintf("*%s*\n", top.Title()),
		fmt.Sprintf("**Problem:** %s\n", top.Problem()),
		fmt.Sprintf("**Solution:** %s\n", top.Solution()),
	}
	if len(relevant) > 1 {
		parts = append(parts, "\n**Additional Related Cases:**")
	}
	for i := 1; i < len(relevant) && i <= maxRelated; i++ {
		c := relevant[i].Case()
		parts = append(parts, fmt.Sprintf("• **%s**: %s", c.ID(), c.Title()))
	}

	sources := make([]string, 0, maxSources)
	for _, id := range Sources(relevant) {
		sources = append(sources, "Case "+id)
	}
	parts = append(parts, "\n**Sources:** "+strings.Join(sources, ", "))

	return strings.Join(parts, "\n")
}

// Sources returns the ids of the first three relevant cases.
func Sources(relevant []result.ScoredCase) []string {
	n := min(len(relevant), maxSources)
	out := make([]string, n)
	for i := range n {
		out[i] = relevant[i].ID()
	}
	return out
}
