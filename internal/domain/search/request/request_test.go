package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/mode"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("hello", "", 0, 0, DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "hello" {
		t.Errorf("Query() = %q", r.Query())
	}
	if r.Mode() != mode.Hybrid {
		t.Errorf("Mode() = %q, want hybrid (default)", r.Mode())
	}
	if r.TopK() != DefaultTopK {
		t.Errorf("TopK() = %d, want %d", r.TopK(), DefaultTopK)
	}
	if w := r.Weights(); w.Semantic != 0.7 || w.Keyword != 0.3 {
		t.Errorf("Weights() = %+v", w)
	}
}

func TestNew_ExplicitValues(t *testing.T) {
	r, err := New("query", mode.Lexical, 3, 10, Weights{Semantic: 1, Keyword: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Mode() != mode.Lexical {
		t.Errorf("Mode() = %q", r.Mode())
	}
	if r.TopK() != 3 {
		t.Errorf("TopK() = %d", r.TopK())
	}
}

func TestNew_ClampsTopK(t *testing.T) {
	r, err := New("q", mode.Hybrid, 1000, 20, DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.TopK() != 20 {
		t.Errorf("TopK() = %d, want 20", r.TopK())
	}

	r, err = New("q", mode.Hybrid, 1000, 0, DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.TopK() != MaxTopK {
		t.Errorf("TopK() = %d, want %d", r.TopK(), MaxTopK)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		mode  mode.Mode
		w     Weights
	}{
		{"empty query", "", mode.Hybrid, DefaultWeights()},
		{"blank query", "   ", mode.Hybrid, DefaultWeights()},
		{"too long", strings.Repeat("a", MaxQueryLength+1), mode.Hybrid, DefaultWeights()},
		{"bad mode", "q", "fuzzy", DefaultWeights()},
		{"negative weight", "q", mode.Hybrid, Weights{Semantic: -1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.query, tc.mode, 0, 0, tc.w)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}
