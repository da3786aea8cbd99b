package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/metrics"
)

// Generator produces answer text through the chat completions API.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// GeneratorConfig holds chat completion settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewGenerator creates a chat completion client.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	return &Generator{
		client:      newClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}
}

// Model returns the configured chat model.
func (g *Generator) Model() string { return g.model }

// Complete sends the conversation and returns the assistant reply.
// Errors wrap domain.ErrLLMUnavailable.
func (g *Generator) Complete(ctx context.Context, msgs []domain.ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages:    make([]openai.ChatCompletionMessage, len(msgs)),
	}
	for i, m := range msgs {
		req.Messages[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestDuration.WithLabelValues(g.model, "error").Observe(duration.Seconds())
		return "", wrapAPIError("chat", err, domain.ErrLLMUnavailable)
	}
	if len(resp.Choices) == 0 {
		metrics.LLMRequestDuration.WithLabelValues(g.model, "error").Observe(duration.Seconds())
		return "", fmt.Errorf("empty chat completion: %w", domain.ErrLLMUnavailable)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		metrics.LLMRequestDuration.WithLabelValues(g.model, "error").Observe(duration.Seconds())
		return "", fmt.Errorf("blank chat completion: %w", domain.ErrLLMUnavailable)
	}

	metrics.LLMRequestDuration.WithLabelValues(g.model, "success").Observe(duration.Seconds())
	g.logger.Debug("Chat completion finished",
		zap.String("model", g.model),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return text, nil
}

// HealthCheck verifies the chat endpoint is reachable.
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
