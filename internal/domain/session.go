package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// titleMaxChars is how much of the first user message becomes the session title.
const titleMaxChars = 50

// DefaultTitle is the label a session carries until its title is derived from
// the first user message.
const DefaultTitle = "New Chat"

// Session is one conversation thread. It is identified locally by LocalID and
// may be linked to a backend-side conversation context via BackendID. A session
// with an empty BackendID is valid and acquires one lazily before the first
// outbound message.
type Session struct {
	LocalID        string    `json:"local_id"`
	BackendID      string    `json:"backend_id,omitempty"`
	Title          string    `json:"title"`
	Messages       []Message `json:"messages"`
	CreatedAt      time.Time `json:"created_at"`
	DebugPanelOpen bool      `json:"debug_panel_open,omitempty"`
	DebugEnabled   bool      `json:"debug_enabled,omitempty"`
}

// NewSession creates an unlinked session with a fresh local id.
func NewSession(now time.Time) Session {
	return Session{
		LocalID:   uuid.NewString(),
		Title:     DefaultTitle,
		Messages:  []Message{},
		CreatedAt: now.UTC(),
	}
}

// Linked reports whether the session carries a backend id. It says nothing
// about whether the backend still knows that id; verifying is the
// coordinator's job.
func (s *Session) Linked() bool {
	return s.BackendID != ""
}

// AppendMessage adds a message to the end of the transcript. Messages are
// append-only; insertion order is chronological order.
func (s *Session) AppendMessage(m Message) {
	s.Messages = append(s.Messages, m)
}

// DeriveTitle sets the title from the first user message, once. Subsequent
// calls are no-ops, so sending more messages never renames the session.
func (s *Session) DeriveTitle(content string) {
	if s.Title != "" && s.Title != DefaultTitle {
		return
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	runes := []rune(content)
	if len(runes) > titleMaxChars {
		s.Title = string(runes[:titleMaxChars]) + "..."
		return
	}
	s.Title = content
}
