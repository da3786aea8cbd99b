package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/config"
	consultancy "github.com/maryamnawas03/consultancy-AI-agent/pkg/sdk"
)

// --- Mocks ---

type mockClient struct {
	results    []consultancy.Result
	answer     consultancy.Answer
	report     consultancy.IngestReport
	err        error
	reindexed  bool
	closed     bool
	lastQuery  string
	searchOpts int
}

func (m *mockClient) Search(_ context.Context, query string, opts ...consultancy.SearchOption) ([]consultancy.Result, error) {
	m.lastQuery = query
	m.searchOpts = len(opts)
	return m.results, m.err
}

func (m *mockClient) Chat(_ context.Context, _, message string, _ ...consultancy.SearchOption) (consultancy.Answer, error) {
	m.lastQuery = message
	return m.answer, m.err
}

func (m *mockClient) Reindex(context.Context) error {
	m.reindexed = true
	return m.err
}

func (m *mockClient) Ingest(context.Context) (consultancy.IngestReport, error) {
	return m.report, m.err
}

func (m *mockClient) Len() int { return 12 }

func (m *mockClient) Close() { m.closed = true }

func withClient(t *testing.T, m *mockClient) {
	t.Helper()
	old := newClient
	newClient = func(context.Context) (client, error) { return m, nil }
	t.Cleanup(func() { newClient = old })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return buf.String(), err
}

// --- Tests ---

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "search")
	if err == nil || !strings.Contains(err.Error(), "accepts 1 arg(s)") {
		t.Fatalf("expected arg count error, got %v", err)
	}
}

func TestSearchCmd_PrintsResults(t *testing.T) {
	m := &mockClient{results: []consultancy.Result{
		{Case: consultancy.Case{ID: "C1", Title: "Roof leak", Tags: "roofing,leak"}, Score: 0.912, Method: "hybrid"},
	}}
	withClient(t, m)

	out, err := execute(t, "search", "-k", "3", "roof leak")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.lastQuery != "roof leak" || m.searchOpts != 2 {
		t.Errorf("unexpected call: %q with %d opts", m.lastQuery, m.searchOpts)
	}
	if !strings.Contains(out, "[1] C1  Roof leak (0.912, hybrid)") {
		t.Errorf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "Tags: roofing,leak") {
		t.Errorf("expected tags line: %q", out)
	}
	if !m.closed {
		t.Error("expected client to be closed")
	}
}

func TestSearchCmd_NoResults(t *testing.T) {
	withClient(t, &mockClient{})

	out, err := execute(t, "search", "nothing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No results found.") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestSearchCmd_Error(t *testing.T) {
	withClient(t, &mockClient{err: consultancy.ErrEmbeddingProviderError})

	_, err := execute(t, "search", "roof")
	if !errors.Is(err, consultancy.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestAskCmd(t *testing.T) {
	m := &mockClient{answer: consultancy.Answer{
		Text: "Replace the flashing.", Method: "template", SearchMode: "hybrid", Trade: "general", BestScore: 0.92,
	}}
	withClient(t, m)

	out, err := execute(t, "ask", "roof", "leaking")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.lastQuery != "roof leaking" {
		t.Errorf("expected joined question, got %q", m.lastQuery)
	}
	if !strings.Contains(out, "Replace the flashing.") || !strings.Contains(out, "method=template") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestReindexCmd(t *testing.T) {
	m := &mockClient{}
	withClient(t, m)

	out, err := execute(t, "reindex")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.reindexed {
		t.Error("expected Reindex to be called")
	}
	if !strings.Contains(out, "Re-embedded 12 cases") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestIngestCmd(t *testing.T) {
	withClient(t, &mockClient{report: consultancy.IngestReport{Cases: 12, Chunks: 14, Dimensions: 768}})

	out, err := execute(t, "ingest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Ingested 12 cases as 14 chunks (768 dimensions)") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "casectl version dev") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := config.Config{}
	cfg.ApplyDefaults()
	if n := len(clientOptions(&cfg)); n != 3 {
		t.Errorf("expected corpus, embedder and cache options, got %d", n)
	}

	cfg.Cache.Driver = "redis"
	cfg.Cache.Addrs = []string{"localhost:6379"}
	cfg.VectorDB.URL = "http://localhost:6333"
	cfg.LLM.Enabled = true
	cfg.Search.LexicalFallback = true
	if n := len(clientOptions(&cfg)); n != 6 {
		t.Errorf("expected 6 options, got %d", n)
	}
}
