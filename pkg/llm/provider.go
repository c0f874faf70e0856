package llm

import "context"

// Role represents the role of the message sender (system, user, assistant).
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// GenerationParams controls the completion call.
type GenerationParams struct {
	Model            string  `json:"model,omitempty"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int64   `json:"max_tokens"`
	PresencePenalty  float64 `json:"presence_penalty"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
}

// Provider defines the interface for an LLM provider.
type Provider interface {
	// Chat sends a list of messages to the LLM and returns the reply text.
	Chat(ctx context.Context, messages []Message, params GenerationParams) (string, error)
	// Stream sends a list of messages to the LLM and returns a channel of reply chunks.
	Stream(ctx context.Context, messages []Message, params GenerationParams) (<-chan string, error)
}
