package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/result"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/metrics"
)

// SystemPrompt constrains the model to the retrieved cases.
const SystemPrompt = `You are an internal construction consulting assistant.
Rules:
- Use ONLY the provided internal context (retrieved cases).
- If context is insufficient, say: "Not enough internal evidence to answer."
- Always include Sources: with the case_id(s) you used.
- Keep it practical: checks, steps, risks, and what info is missing.
`

// BreakerSettings configures the circuit breaker around the chat model.
type BreakerSettings struct {
	MinRequests      uint32
	FailureRatio     float64
	OpenTimeout      time.Duration
	HalfOpenMaxCalls uint32
}

// LLMComposer asks a chat model to answer from the relevant cases.
type LLMComposer struct {
	completer domain.Completer
	breaker   *gobreaker.CircuitBreaker[string]
	logger    *zap.Logger
}

// NewLLMComposer wraps completer in a circuit breaker.
func NewLLMComposer(completer domain.Completer, bs BreakerSettings, logger *zap.Logger) *LLMComposer {
	settings := gobreaker.Settings{
		Name:        "llm",
		MaxRequests: bs.HalfOpenMaxCalls,
		Timeout:     bs.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bs.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= bs.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			// a cancelled request says nothing about the model
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.LLMBreakerState.Set(float64(to))
			logger.Warn("Circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &LLMComposer{
		completer: completer,
		breaker:   gobreaker.NewCircuitBreaker[string](settings),
		logger:    logger,
	}
}

// Compose returns the model's answer. Every failure wraps domain.ErrLLMUnavailable.
func (c *LLMComposer) Compose(ctx context.Context, query string, relevant []result.ScoredCase, history []Turn) (string, error) {
	msgs := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: SystemPrompt},
		{Role: domain.RoleUser, Content: userPrompt(query, relevant, history)},
	}

	text, err := c.breaker.Execute(func() (string, error) {
		return c.completer.Complete(ctx, msgs)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
		}
		if !errors.Is(err, domain.ErrLLMUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
		}
		return "", err
	}
	return text, nil
}

// State returns the breaker state.
func (c *LLMComposer) State() gobreaker.State { return c.breaker.State() }

func userPrompt(query string, relevant []result.ScoredCase, history []Turn) string {
	hist := make([]string, len(history))
	for i, t := range history {
		hist[i] = "User: " + t.User + "\nAssistant: " + t.Assistant
	}

	blocks := make([]string, len(relevant))
	for i := range relevant {
		c := relevant[i].Case()
		blocks[i] = fmt.Sprintf("[case_id=%s score=%.3f]\n%s\n", c.ID(), relevant[i].Score(), c.Document())
	}

	var b strings.Builder
	b.WriteString("Question:\n")
	b.WriteString(query)
	b.WriteString("\n\nRecent chat (optional):\n")
	b.WriteString(strings.Join(hist, "\n"))
	b.WriteString("\n\nInternal context (use only this):\n")
	b.WriteString(strings.Join(blocks, "\n---\n"))
	b.WriteString("\n")
	return b.String()
}
