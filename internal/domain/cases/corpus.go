package cases

// Corpus is a read-only, row-ordered snapshot of loaded cases.
type Corpus struct {
	rows []Case
	byID map[string]int
}

// NewCorpus copies rows into a new snapshot. For duplicate ids ByID
// resolves to the first row.
func NewCorpus(rows []Case) *Corpus {
	c := &Corpus{
		rows: make([]Case, len(rows)),
		byID: make(map[string]int, len(rows)),
	}
	copy(c.rows, rows)
	for i := range c.rows {
		if _, ok := c.byID[c.rows[i].id]; !ok {
			c.byID[c.rows[i].id] = i
		}
	}
	return c
}

// Empty returns a corpus with no rows.
func Empty() *Corpus { return NewCorpus(nil) }

// Len returns the row count. Safe on a nil corpus.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rows)
}

// At returns the case at row i.
func (c *Corpus) At(i int) Case { return c.rows[i] }

// All returns a copy of every row in corpus order.
func (c *Corpus) All() []Case {
	if c == nil {
		return nil
	}
	out := make([]Case, len(c.rows))
	copy(out, c.rows)
	return out
}

// ByID looks up a case by identifier.
func (c *Corpus) ByID(id string) (Case, bool) {
	if c == nil {
		return Case{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Case{}, false
	}
	return c.rows[i], true
}

// Representations returns the embedding text of every row in corpus order.
func (c *Corpus) Representations() []string {
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.rows[i].Representation()
	}
	return out
}
