package cases

import "strings"

// Case is one construction-problem record (immutable value object).
type Case struct {
	id       string
	title    string
	problem  string
	solution string
	tags     string
}

// New creates a Case. Missing fields are empty strings; nothing is rejected,
// a corpus row is taken as it comes.
func New(id, title, problem, solution, tags string) Case {
	return Case{id: id, title: title, problem: problem, solution: solution, tags: tags}
}

// ID returns the case identifier.
func (c *Case) ID() string { return c.id }

// Title returns the case title.
func (c *Case) Title() string { return c.title }

// Problem returns the problem description.
func (c *Case) Problem() string { return c.problem }

// Solution returns the recorded solution.
func (c *Case) Solution() string { return c.solution }

// Tags returns the raw comma-separated tag list.
func (c *Case) Tags() string { return c.tags }

// FullText joins title, problem, solution and tags with single spaces.
func (c *Case) FullText() string {
	return c.title + " " + c.problem + " " + c.solution + " " + c.tags
}

// Representation is the labelled text that gets embedded for semantic search:
// "Title: … | Problem: … | Solution: … | Tags: …" with empty fields omitted.
func (c *Case) Representation() string {
	parts := make([]string, 0, 4)
	if c.title != "" {
		parts = append(parts, "Title: "+c.title)
	}
	if c.problem != "" {
		parts = append(parts, "Problem: "+c.problem)
	}
	if c.solution != "" {
		parts = append(parts, "Solution: "+c.solution)
	}
	if c.tags != "" {
		parts = append(parts, "Tags: "+strings.ReplaceAll(c.tags, ",", ", "))
	}
	return strings.Join(parts, " | ")
}

// Document is the chunking source used for vector-database ingestion.
func (c *Case) Document() string {
	return "TITLE: " + c.title + "\nPROBLEM: " + c.problem +
		"\nSOLUTION: " + c.solution + "\nTAGS: " + c.tags
}
