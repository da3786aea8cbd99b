package answer

import (
	"context"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/request"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/result"
)

// searcher ranks cases for a validated request (ISP).
type searcher interface {
	Search(ctx context.Context, req request.Request) ([]result.ScoredCase, error)
}

// composer turns relevant cases into answer text. Implemented by LLMComposer.
type composer interface {
	Compose(ctx context.Context, query string, relevant []result.ScoredCase, history []Turn) (string, error)
}
