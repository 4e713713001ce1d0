package ports

import "context"

// UsageData represents raw usage data from LLM provider APIs
type UsageData struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
	Provider         string `json:"provider"`
}

// Role of a chat turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of the conversation
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatCompletion is the provider's reply with optional usage data
type ChatCompletion struct {
	Content string
	Usage   *UsageData
}

// ChatProvider answers a conversation given a system prompt. The last
// message is the user's current question.
type ChatProvider interface {
	Name() string
	Complete(ctx context.Context, systemPrompt string, messages []ChatMessage) (*ChatCompletion, error)
}
