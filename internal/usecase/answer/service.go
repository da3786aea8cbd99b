package answer

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	domainanswer "github.com/maryamnawas03/consultancy-AI-agent/internal/domain/answer"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/mode"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/request"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/result"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/logger"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/metrics"
)

// LexicalFallbackMode tags answers whose semantic search failed and were
// ranked lexically instead.
const LexicalFallbackMode = "lexical_fallback"

// Config holds chat defaults and policies.
type Config struct {
	DefaultMode      mode.Mode
	DefaultTopK      int
	MaxTopK          int
	Weights          request.Weights
	LexicalThreshold float64
	VectorThreshold  float64
	PromptTurns      int

	// LexicalFallback retries a failed semantic or hybrid search lexically.
	LexicalFallback bool
}

// ChatInput is one chat message.
type ChatInput struct {
	SessionID string
	Message   string
	TopK      int    // 0 means default
	Mode      string // empty means default
}

// Service answers chat messages from ranked cases.
type Service struct {
	search   searcher
	llm      composer
	sessions *Sessions
	cfg      Config
	logger   *zap.Logger
}

// NewService creates a chat service. llm may be nil, in which case every
// answer uses the template.
func NewService(s searcher, llm composer, sessions *Sessions, cfg Config, logger *zap.Logger) *Service {
	if !cfg.DefaultMode.IsValid() {
		cfg.DefaultMode = mode.Hybrid
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = request.DefaultTopK
	}
	if cfg.MaxTopK <= 0 {
		cfg.MaxTopK = request.MaxTopK
	}
	if cfg.Weights.Semantic == 0 && cfg.Weights.Keyword == 0 {
		cfg.Weights = request.DefaultWeights()
	}
	if cfg.LexicalThreshold <= 0 {
		cfg.LexicalThreshold = DefaultLexicalThreshold
	}
	if cfg.VectorThreshold <= 0 {
		cfg.VectorThreshold = DefaultVectorThreshold
	}
	if cfg.PromptTurns <= 0 {
		cfg.PromptTurns = DefaultPromptTurns
	}
	if sessions == nil {
		sessions = NewSessions(0, 0)
	}
	return &Service{search: s, llm: llm, sessions: sessions, cfg: cfg, logger: logger}
}

// Chat ranks cases for the message and composes an answer. Only an invalid
// request is returned as an error; search and model failures degrade to a
// low-confidence or template answer.
func (s *Service) Chat(ctx context.Context, in ChatInput) (domainanswer.Answer, error) {
	log := logger.FromContext(ctx, s.logger)

	m := s.cfg.DefaultMode
	if in.Mode != "" {
		m = mode.Parse(in.Mode)
	}
	topK := in.TopK
	if topK == 0 {
		topK = s.cfg.DefaultTopK
	}
	req, err := request.New(in.Message, m, topK, s.cfg.MaxTopK, s.cfg.Weights)
	if err != nil {
		return domainanswer.Answer{}, err
	}

	results, usedMode := s.rank(ctx, log, req)

	gate := gateFor(req.Mode(), s.cfg.LexicalThreshold, s.cfg.VectorThreshold)
	if usedMode == LexicalFallbackMode {
		gate = NewGate(s.cfg.LexicalThreshold)
	}
	relevant := gate.Relevant(results)

	ans := domainanswer.Answer{
		Sources:    Sources(relevant),
		BestScore:  result.BestScore(results),
		SearchMode: usedMode,
		Trade:      DetectTrade(in.Message),
		Results:    results,
	}

	switch {
	case len(relevant) == 0:
		ans.Text = ComposeTemplate(results, relevant)
		ans.Method = domainanswer.Template
		ans.LowConfidence = true
		metrics.LowConfidenceTotal.WithLabelValues(usedMode).Inc()
	case s.llm != nil:
		history := s.sessions.Recent(in.SessionID, s.cfg.PromptTurns)
		text, err := s.llm.Compose(ctx, req.Query(), relevant, history)
		if err != nil {
			log.Warn("LLM composition failed, using template", zap.Error(err))
			ans.Text = ComposeTemplate(results, relevant)
			ans.Method = domainanswer.TemplateFallback
			break
		}
		ans.Text = text
		ans.Method = domainanswer.LLM
	default:
		ans.Text = ComposeTemplate(results, relevant)
		ans.Method = domainanswer.Template
	}

	metrics.AnswersTotal.WithLabelValues(string(ans.Method)).Inc()
	s.sessions.Append(in.SessionID, Turn{User: in.Message, Assistant: ans.Text})
	return ans, nil
}

// rank runs the search and applies the lexical fallback policy. A search that
// still fails yields no results, which the caller reports as no evidence.
func (s *Service) rank(ctx context.Context, log *zap.Logger, req request.Request) ([]result.ScoredCase, string) {
	m := req.Mode()
	results, err := s.search.Search(ctx, req)
	if err == nil {
		return results, string(m)
	}

	log.Warn("Search failed", zap.String("mode", string(m)), zap.Error(err))
	if !s.cfg.LexicalFallback || !m.NeedsEmbedding() || errors.Is(err, domain.ErrInvalidRequest) {
		return nil, string(m)
	}

	lexReq, lexErr := request.New(req.Query(), mode.Lexical, req.TopK(), s.cfg.MaxTopK, req.Weights())
	if lexErr != nil {
		return nil, string(m)
	}
	results, err = s.search.Search(ctx, lexReq)
	if err != nil {
		log.Warn("Lexical fallback failed", zap.Error(err))
		return nil, string(m)
	}
	return results, LexicalFallbackMode
}
