package models

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// StreamChunk is one incremental piece of a streamed completion.
// Exactly one of Text or Err is set.
type StreamChunk struct {
	Text string
	Err  error
}
