// Package corpus loads the tabular case file into an immutable snapshot.
package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"
)

// Column names of the case file. Any of them may be missing.
const (
	ColCaseID   = "case_id"
	ColTitle    = "title"
	ColProblem  = "problem"
	ColSolution = "solution"
	ColTags     = "tags"
)

const utf8BOM = "\ufeff"

// Loader reads case files. Failures degrade to an empty corpus.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a corpus loader.
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the first existing candidate path (path itself, then ../path for
// relative paths). It never fails: a missing or corrupt file is logged and
// yields an empty corpus.
func (l *Loader) Load(ctx context.Context, path string) *cases.Corpus {
	corpus, err := l.Read(ctx, path)
	if err != nil {
		l.logger.Warn("Corpus unavailable, serving empty corpus",
			zap.String("path", path),
			zap.Error(err),
		)
		return cases.Empty()
	}
	return corpus
}

// Read is the strict variant of Load. Errors wrap domain.ErrCorpusUnavailable.
func (l *Loader) Read(ctx context.Context, path string) (*cases.Corpus, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCorpusUnavailable, err)
	}

	resolved, ok := resolve(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s not found", domain.ErrCorpusUnavailable, path)
	}

	var (
		rows []cases.Case
		err  error
	)
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(resolved)
	default:
		rows, err = readCSVFile(resolved)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrCorpusUnavailable, resolved, err)
	}

	corpus := cases.NewCorpus(rows)
	if dups := duplicateIDs(rows); len(dups) > 0 {
		l.logger.Warn("Corpus contains duplicate case ids",
			zap.String("path", resolved),
			zap.Strings("case_ids", dups),
		)
	}
	l.logger.Info("Corpus loaded",
		zap.String("path", resolved),
		zap.Int("cases", corpus.Len()),
	)
	return corpus, nil
}

func resolve(path string) (string, bool) {
	candidates := []string{path}
	if !filepath.IsAbs(path) {
		candidates = append(candidates, filepath.Join("..", path))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

func readCSVFile(path string) ([]cases.Case, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	return ReadCSV(f)
}

// ReadCSV parses CSV with a header row. Short rows and missing columns read as "".
func ReadCSV(r io.Reader) ([]cases.Case, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		records = append(records, rec)
	}
	return fromRecords(records)
}

func readXLSX(path string) ([]cases.Case, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return fromRecords(records)
}

// fromRecords maps a header row plus data rows onto cases.
func fromRecords(records [][]string) ([]cases.Case, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	field := func(rec []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	out := make([]cases.Case, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		out = append(out, cases.New(
			field(rec, ColCaseID),
			field(rec, ColTitle),
			field(rec, ColProblem),
			field(rec, ColSolution),
			field(rec, ColTags),
		))
	}
	return out, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func duplicateIDs(rows []cases.Case) []string {
	seen := make(map[string]bool, len(rows))
	var dups []string
	for i := range rows {
		id := rows[i].ID()
		if seen[id] {
			dups = append(dups, id)
			continue
		}
		seen[id] = true
	}
	return dups
}
