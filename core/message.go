package core

import "time"

// Conversation roles. Only user and assistant messages are persisted; the
// system prompt is rebuilt per request and never stored.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single conversation turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationRecord is the per-session bounded message log persisted by the
// conversation store. The store is the sole mutator of Messages.
type ConversationRecord struct {
	SessionID    string    `json:"session_id"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}
