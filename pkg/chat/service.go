package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/agentflow-ai/agentflow-go/pkg/client"
	"github.com/agentflow-ai/agentflow-go/pkg/logx"
	"github.com/agentflow-ai/agentflow-go/pkg/sse"
	"github.com/agentflow-ai/agentflow-go/pkg/stream"
)

// Service drives chat conversations: it owns the session list, streams
// assistant replies, and persists finished turns to the history store.
type Service struct {
	client  *client.Client
	history *HistoryStore
	log     *logx.Logger

	mu        sync.Mutex
	sessions  []*Session
	currentID string
	streaming bool

	// SelectedWorkflowID scopes replies to one workflow when set
	SelectedWorkflowID string

	// SelectedKBID grounds replies on one knowledge base when set
	SelectedKBID string

	// Thought exposes the transient progress status of the active run
	Thought *stream.Thought

	// OnToken receives each appended text increment (the terminal client
	// prints these as they arrive)
	OnToken func(delta string)
}

// NewService creates a chat service. history may be nil for an ephemeral,
// in-memory session list.
func NewService(c *client.Client, history *HistoryStore) *Service {
	return &Service{
		client:  c,
		history: history,
		log:     logx.WithField("component", "chat"),
		Thought: stream.NewThought(nil),
	}
}

type chatPayload struct {
	SessionID  string `json:"session_id"`
	Message    string `json:"message"`
	WorkflowID string `json:"workflow_id,omitempty"`
	KBID       string `json:"kb_id,omitempty"`
}

// Sessions returns the session list, newest first.
func (s *Service) Sessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Current returns the active session, or nil.
func (s *Service) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(s.currentID)
}

func (s *Service) findLocked(id string) *Session {
	for _, session := range s.sessions {
		if session.ID == id {
			return session
		}
	}
	return nil
}

// IsStreaming reports whether a reply is currently streaming.
func (s *Service) IsStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming
}

func (s *Service) setStreaming(v bool) {
	s.mu.Lock()
	s.streaming = v
	s.mu.Unlock()
}

// NewSession creates and activates an empty session at the head of the
// list.
func (s *Service) NewSession() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := NewSession(fmt.Sprintf("新会话 %d", len(s.sessions)+1))
	s.sessions = append([]*Session{session}, s.sessions...)
	s.currentID = session.ID
	return session
}

// SwitchTo activates an existing session.
func (s *Service) SwitchTo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(id) == nil {
		return errorRegistry.New(ErrSessionNotFound)
	}
	s.currentID = id
	return nil
}

// LoadHistory populates the session list from the history store.
func (s *Service) LoadHistory(ctx context.Context) error {
	if s.history == nil {
		return nil
	}
	listed, err := s.history.List(ctx)
	if err != nil {
		return err
	}

	sessions := make([]*Session, 0, len(listed))
	for _, meta := range listed {
		full, err := s.history.Load(ctx, meta.ID)
		if err != nil {
			return err
		}
		sessions = append(sessions, full)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = sessions
	if s.currentID == "" && len(sessions) > 0 {
		s.currentID = sessions[0].ID
	}
	return nil
}

// DeleteSession removes a session locally, server-side and from history.
// The server delete is best effort: a failed remote delete still removes
// the local copy, matching the web client.
func (s *Service) DeleteSession(ctx context.Context, id string) {
	if err := s.client.Do(ctx, "DELETE", "/chat/sessions/"+id, nil, nil); err != nil {
		s.log.WithError(err).Warn("remote session delete failed")
	}
	if s.history != nil {
		if err := s.history.Delete(ctx, id); err != nil {
			s.log.WithError(err).Warn("history session delete failed")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.sessions[:0]
	for _, session := range s.sessions {
		if session.ID != id {
			kept = append(kept, session)
		}
	}
	s.sessions = kept

	if s.currentID == id {
		s.currentID = ""
		if len(s.sessions) > 0 {
			s.currentID = s.sessions[0].ID
		}
	}
}

// Send streams one chat turn: it appends the user message and an assistant
// placeholder, then consumes the platform's event stream into the
// placeholder. Transport failures leave an inline connection-error text on
// the assistant message and are returned; cancellation ends the turn
// quietly with whatever partial content arrived.
func (s *Service) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if s.IsStreaming() {
		return errorRegistry.New(ErrBusy)
	}

	s.mu.Lock()
	session := s.findLocked(s.currentID)
	if session == nil {
		session = NewSession(fmt.Sprintf("新会话 %d", len(s.sessions)+1))
		s.sessions = append([]*Session{session}, s.sessions...)
		s.currentID = session.ID
	}

	session.Messages = append(session.Messages, &Message{Role: RoleUser, Content: text})
	if len(session.Messages) == 1 {
		session.Title = AutoTitle(text)
	}
	reply := &Message{Role: RoleAssistant, IsStreaming: true}
	session.Messages = append(session.Messages, reply)
	s.streaming = true
	s.mu.Unlock()

	s.Thought.Clear()

	evCtx := EventContext{
		Thought:      s.Thought,
		SetStreaming: s.setStreaming,
	}

	err := stream.Run(ctx, s.client, stream.Options{
		Path: "/chat/completions",
		Body: chatPayload{
			SessionID:  session.ID,
			Message:    text,
			WorkflowID: s.SelectedWorkflowID,
			KBID:       s.SelectedKBID,
		},
		IdleTimeout: stream.DefaultIdleTimeout,
		OnEvent: func(ev sse.Event) {
			before := len(reply.Content)
			ApplyEvent(ev, reply, evCtx)
			if s.OnToken != nil && len(reply.Content) > before {
				s.OnToken(reply.Content[before:])
			}
		},
		OnDone: func() {
			reply.IsStreaming = false
			s.setStreaming(false)
			s.Thought.Clear()
		},
	})

	if err != nil {
		reply.Content = stream.ConnectionErrorPrefix + err.Error()
	}

	reply.IsStreaming = false
	s.setStreaming(false)
	s.Thought.Clear()
	session.Touch()

	if s.history != nil {
		if saveErr := s.history.Save(context.WithoutCancel(ctx), session); saveErr != nil {
			s.log.WithError(saveErr).Warn("could not persist session")
		}
	}
	return err
}
