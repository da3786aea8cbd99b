package answer

import (
	"context"
	"errors"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/mode"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/request"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/result"
)

// --- Mocks ---

type mockSearcher struct {
	byMode map[mode.Mode][]result.ScoredCase
	errs   map[mode.Mode]error
	calls  []mode.Mode
	last   request.Request
}

func (m *mockSearcher) Search(_ context.Context, req request.Request) ([]result.ScoredCase, error) {
	m.calls = append(m.calls, req.Mode())
	m.last = req
	if err := m.errs[req.Mode()]; err != nil {
		return nil, err
	}
	rs := m.byMode[req.Mode()]
	return rs[:min(len(rs), req.TopK())], nil
}

type mockComposer struct {
	text    string
	err     error
	calls   int
	history []Turn
	query   string
}

func (m *mockComposer) Compose(_ context.Context, query string, _ []result.ScoredCase, history []Turn) (string, error) {
	m.calls++
	m.query = query
	m.history = history
	return m.text, m.err
}

type mockCompleter struct {
	reply string
	err   error
	calls int
	msgs  []domain.ChatMessage
}

func (m *mockCompleter) Complete(_ context.Context, msgs []domain.ChatMessage) (string, error) {
	m.calls++
	m.msgs = msgs
	return m.reply, m.err
}

var errBackend = errors.New("backend down")

func hit(id, title string, score float64, m result.Method) result.ScoredCase {
	return result.New(cases.New(id, title, "problem of "+id, "solution of "+id, "tag"), score, m)
}

func fused(id, title string, score, rawSemantic, rawKeyword float64) result.ScoredCase {
	c := cases.New(id, title, "problem of "+id, "solution of "+id, "tag")
	return result.NewHybrid(c, score, result.Components{RawSemantic: rawSemantic, RawKeyword: rawKeyword})
}

// hybridHits passes C1..C4 through both the score gate and the hybrid gate.
func hybridHits() []result.ScoredCase {
	return []result.ScoredCase{
		fused("C1", "Roof leak", 0.92, 0.81, 0.9),
		fused("C2", "Ceiling stain", 0.40, 0.55, 0),
		fused("C3", "Gutter overflow", 0.15, 0.1, 0.15),
		fused("C4", "Paint peeling", 0.12, 0.3, 0),
		fused("C5", "Cracked slab", 0.05, 0.2, 0.05),
	}
}
