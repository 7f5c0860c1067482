// Package chat implements the conversational surface of the platform:
// session management, the streaming send flow, and the event dispatch that
// turns decoded stream events into message mutations.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CitationSource is one retrieval source attached to an assistant message.
type CitationSource struct {
	DocID      string  `json:"docId"`
	ChunkIndex int     `json:"chunkIndex"`
	Score      float64 `json:"score"`
	Text       string  `json:"text,omitempty"`
}

// Message is one chat turn. The streaming dispatcher mutates Content,
// Citations and IsStreaming on the current assistant message only.
type Message struct {
	Role        string           `json:"role"`
	Content     string           `json:"content"`
	IsStreaming bool             `json:"isStreaming,omitempty"`
	Citations   []CitationSource `json:"citations,omitempty"`
}

// Session is one conversation.
type Session struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Messages  []*Message `json:"messages"`
}

// maxTitleRunes bounds the auto-title taken from the first message.
const maxTitleRunes = 20

// NewSession creates an empty session with a placeholder title.
func NewSession(title string) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AutoTitle derives the session title from its first message.
func AutoTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= maxTitleRunes {
		return message
	}
	return string(runes[:maxTitleRunes]) + "..."
}

// Touch bumps the session's updated timestamp.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now()
}

// LastMessage returns the most recent message, or nil for an empty session.
func (s *Session) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}
