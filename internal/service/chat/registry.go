package chat

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/zhouzirui/healthchat/internal/model/chat"
)

// Saver persists the full state after a mutation.
type Saver interface {
	Save(ctx context.Context, st chat.State) error
}

// HistoryView redraws the transcript of the active session.
type HistoryView interface {
	ReplayHistory(messages []chat.Message)
}

// Sidebar shows the session list.
type Sidebar interface {
	ShowSessions(items []chat.Listing)
}

// Registry owns the in-memory session list. It must only be used from the loop
// goroutine; every mutation is written through to the Saver.
type Registry struct {
	state   *chat.State
	saver   Saver
	history HistoryView
	sidebar Sidebar
}

// NewRegistry wraps an existing state. sidebar may be nil.
func NewRegistry(state *chat.State, saver Saver, history HistoryView, sidebar Sidebar) *Registry {
	return &Registry{state: state, saver: saver, history: history, sidebar: sidebar}
}

// Create inserts a fresh session at the front and makes it active.
func (r *Registry) Create(ctx context.Context) *chat.Session {
	session := chat.NewSession()
	r.state.Sessions = append([]*chat.Session{session}, r.state.Sessions...)
	r.state.ActiveID = session.ID

	r.history.ReplayHistory(nil)
	r.Persist(ctx)
	r.refreshSidebar()

	log.Debug().Str("session_id", session.ID).Int("sessions", len(r.state.Sessions)).Msg("session created")
	return session
}

// Select activates an existing session and replays its history. Unknown ids are
// ignored and false is returned.
func (r *Registry) Select(ctx context.Context, id string) bool {
	session, ok := r.state.Find(id)
	if !ok {
		log.Debug().Str("session_id", id).Msg("select ignored, session not found")
		return false
	}
	r.state.ActiveID = session.ID

	r.history.ReplayHistory(session.Messages)
	r.refreshSidebar()
	r.Persist(ctx)
	return true
}

// Append adds a message to a session. Unknown ids are ignored.
func (r *Registry) Append(ctx context.Context, id string, sender chat.Sender, text string) bool {
	session, ok := r.state.Find(id)
	if !ok {
		log.Debug().Str("session_id", id).Msg("append ignored, session not found")
		return false
	}
	session.Append(sender, text)
	r.Persist(ctx)
	return true
}

// MaybeSetTitle names a session after its first user message. It returns true
// only when the title changed.
func (r *Registry) MaybeSetTitle(ctx context.Context, id, text string) bool {
	session, ok := r.state.Find(id)
	if !ok || session.Titled() {
		return false
	}
	session.SetTitle(text)
	r.Persist(ctx)
	r.refreshSidebar()
	return true
}

// List returns the sidebar projection, newest first.
func (r *Registry) List() []chat.Listing {
	return lo.Map(r.state.Sessions, func(s *chat.Session, _ int) chat.Listing {
		return chat.Listing{ID: s.ID, Title: s.Title, Active: s.ID == r.state.ActiveID}
	})
}

// Active returns the active session.
func (r *Registry) Active() (*chat.Session, bool) {
	if r.state.ActiveID == "" {
		return nil, false
	}
	return r.state.Find(r.state.ActiveID)
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*chat.Session, bool) {
	return r.state.Find(id)
}

// Snapshot returns a deep copy of the state.
func (r *Registry) Snapshot() chat.State {
	return r.state.Clone()
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	return len(r.state.Sessions)
}

// Persist writes the current state. Failures are logged; the in-memory state
// stays authoritative.
func (r *Registry) Persist(ctx context.Context) {
	if err := r.saver.Save(ctx, *r.state); err != nil {
		log.Error().Err(err).Msg("persisting sessions failed")
	}
}

func (r *Registry) refreshSidebar() {
	if r.sidebar == nil {
		return
	}
	r.sidebar.ShowSessions(r.List())
}
