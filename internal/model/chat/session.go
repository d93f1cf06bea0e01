package chat

import (
	"github.com/google/uuid"
)

const (
	// DefaultTitle is shown until the first user message names the session.
	DefaultTitle = "New Chat"

	titleLimit    = 30
	titleEllipsis = "..."
)

// Session is one conversation thread. Messages are append-only.
type Session struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
	// Named is set once the title has been derived, whatever its text.
	Named bool `json:"titled,omitempty"`
}

// NewSession returns an empty session with a time-ordered identifier.
func NewSession() *Session {
	return &Session{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Title:    DefaultTitle,
		Messages: make([]Message, 0, 16),
	}
}

// Append adds a message to the end of the transcript.
func (s *Session) Append(sender Sender, text string) {
	s.Messages = append(s.Messages, Message{Sender: sender, Text: text})
}

// Titled reports whether the one-time title derivation already happened.
func (s *Session) Titled() bool {
	return s.Named
}

// SetTitle derives the title from text and marks the session as named.
func (s *Session) SetTitle(text string) {
	s.Title = DeriveTitle(text)
	s.Named = true
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *Session) Clone() *Session {
	c := *s
	c.Messages = append([]Message(nil), s.Messages...)
	return &c
}

// DeriveTitle shortens text to the sidebar title length.
func DeriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= titleLimit {
		return text
	}
	return string(runes[:titleLimit]) + titleEllipsis
}

// Listing is the sidebar projection of a session.
type Listing struct {
	ID     string
	Title  string
	Active bool
}

// State is the process-wide session list and active pointer.
// Sessions are ordered newest first.
type State struct {
	Sessions []*Session
	ActiveID string
}

// Find returns the session with the given id.
func (st *State) Find(id string) (*Session, bool) {
	for _, s := range st.Sessions {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// Clone deep-copies the state.
func (st *State) Clone() State {
	out := State{ActiveID: st.ActiveID, Sessions: make([]*Session, 0, len(st.Sessions))}
	for _, s := range st.Sessions {
		out.Sessions = append(out.Sessions, s.Clone())
	}
	return out
}
