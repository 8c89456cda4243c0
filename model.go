package arkaine

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// Role identifies the author of a Message. Roles reuse langchaingo's chat message types so
// that history converts to provider requests without translation tables.
type Role = llms.ChatMessageType

const (
	RoleSystem    Role = llms.ChatMessageTypeSystem
	RoleUser      Role = llms.ChatMessageTypeHuman
	RoleAssistant Role = llms.ChatMessageTypeAI
)

// Message is one entry of a run's history.
type Message struct {
	Role    Role   `yaml:"role"`
	Content string `yaml:"content"`
}

// SystemMessage creates a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant-role message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Model is the language model client: an ordered list of messages in, reply text out.
// Implementations must honor ctx cancellation.
//
// See models.LCGWrapper for the langchaingo-backed implementation.
type Model interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, messages []Message) (string, error)

// Complete calls f(ctx, messages).
func (f ModelFunc) Complete(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}
