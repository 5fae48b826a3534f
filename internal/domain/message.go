package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies which side of the conversation produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a conversation. Messages are immutable once appended.
// UsedTools is only meaningful on assistant messages.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`
	UsedTools []string  `json:"used_tools,omitempty"`
}

// NewUserMessage creates a user-authored message.
func NewUserMessage(content string, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Content:   content,
		Role:      RoleUser,
		Timestamp: now.UTC(),
	}
}

// NewAssistantMessage creates an assistant reply, recording which tools were
// invoked to produce it.
func NewAssistantMessage(content string, usedTools []string, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Content:   content,
		Role:      RoleAssistant,
		Timestamp: now.UTC(),
		UsedTools: usedTools,
	}
}
