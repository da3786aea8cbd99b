package consultancy

import (
	"context"
	"fmt"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
)

// Embedder converts texts to vectors. Every call for one client must use
// the same model.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// ModelID names the model. Cached matrices are keyed by it.
	ModelID() string
}

// Message is one chat message passed to a Completer.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// Completer generates answer text from a conversation.
type Completer interface {
	Complete(ctx context.Context, msgs []Message) (string, error)
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) ModelID() string { return a.inner.ModelID() }

func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	vecs, err := a.inner.Embed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.BatchEmbeddingResult{Embeddings: vecs}, nil
}

// completerAdapter wraps public Completer to satisfy internal domain.Completer.
type completerAdapter struct {
	inner Completer
}

func (a *completerAdapter) Complete(ctx context.Context, msgs []domain.ChatMessage) (string, error) {
	pub := make([]Message, len(msgs))
	for i, m := range msgs {
		pub[i] = Message{Role: string(m.Role), Content: m.Content}
	}
	text, err := a.inner.Complete(ctx, pub)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return text, nil
}
