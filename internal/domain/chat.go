package domain

import "context"

// Role is a chat message author.
type Role string

// Chat roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one message sent to a language model.
type ChatMessage struct {
	Role    Role
	Content string
}

// Completer generates text from a conversation. Errors wrap ErrLLMUnavailable.
type Completer interface {
	Complete(ctx context.Context, msgs []ChatMessage) (string, error)
}
