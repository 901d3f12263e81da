package types

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	// RoleSystem is used for instructions that frame the conversation.
	RoleSystem MessageRole = "system"

	// RoleUser is used for content provided by the application.
	RoleUser MessageRole = "user"

	// RoleAssistant is used for content produced by the model.
	RoleAssistant MessageRole = "assistant"
)

// Message is a single chat message exchanged with an LLM provider.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) *Message {
	return &Message{Role: RoleAssistant, Content: content}
}

// ModelInfo describes the model an LLM provider is configured with.
type ModelInfo struct {
	// Name is the model identifier, e.g. "gpt-4o".
	Name string

	// Provider is the provider family, e.g. "openai".
	Provider string

	// MaxTokens is the model's context window size.
	MaxTokens int

	// SupportsStreaming indicates whether the provider can stream
	// responses for this model.
	SupportsStreaming bool

	// Metadata holds provider-specific extras such as a custom base URL.
	Metadata map[string]interface{}
}
