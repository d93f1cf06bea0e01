package store

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/zhouzirui/healthchat/internal/model/chat"
)

const (
	// SessionsKey holds the JSON-encoded session list.
	SessionsKey = "chatSessions"
	// ActiveKey holds the active session id as plain text.
	ActiveKey = "activeChatId"
)

type messageRecord struct {
	Sender string `json:"sender" validate:"oneof=user bot"`
	Text   string `json:"text"`
}

type sessionRecord struct {
	ID       string          `json:"id" validate:"required"`
	Title    string          `json:"title"`
	Messages []messageRecord `json:"messages" validate:"dive"`
	Titled   bool            `json:"titled,omitempty"`
}

type sessionList struct {
	Sessions []sessionRecord `validate:"unique=ID,dive"`
}

// Persistence maps chat.State onto the two durable keys.
type Persistence struct {
	kv       KV
	validate *validator.Validate
}

// NewPersistence wraps kv.
func NewPersistence(kv KV) *Persistence {
	return &Persistence{kv: kv, validate: validator.New()}
}

// Load reconstructs the last saved state. Missing, unreadable or malformed
// data yields an empty state; Load never fails.
func (p *Persistence) Load(ctx context.Context) chat.State {
	var st chat.State

	raw, found, err := p.kv.Get(ctx, SessionsKey)
	if err != nil {
		log.Warn().Err(err).Msg("reading stored sessions failed, starting fresh")
		return st
	}
	if found && raw != "" {
		sessions, err := p.decode(raw)
		if err != nil {
			log.Warn().Err(err).Msg("stored sessions are malformed, starting fresh")
			return st
		}
		st.Sessions = sessions
	}

	active, found, err := p.kv.Get(ctx, ActiveKey)
	if err != nil {
		log.Warn().Err(err).Msg("reading active session id failed")
		return st
	}
	if found {
		if _, ok := st.Find(active); ok {
			st.ActiveID = active
		} else if active != "" {
			log.Debug().Str("session_id", active).Msg("dropping dangling active session id")
		}
	}
	return st
}

// Save writes the full session list and the active id in one KV transaction.
func (p *Persistence) Save(ctx context.Context, st chat.State) error {
	records := lo.Map(st.Sessions, func(s *chat.Session, _ int) sessionRecord {
		return sessionRecord{
			ID:     s.ID,
			Title:  s.Title,
			Titled: s.Named,
			Messages: lo.Map(s.Messages, func(m chat.Message, _ int) messageRecord {
				return messageRecord{Sender: string(m.Sender), Text: m.Text}
			}),
		}
	})
	raw, err := json.Marshal(records)
	if err != nil {
		return errors.Wrap(err, "encode sessions")
	}
	return errors.Wrap(p.kv.Put(ctx, map[string]string{
		SessionsKey: string(raw),
		ActiveKey:   st.ActiveID,
	}), "save sessions")
}

func (p *Persistence) decode(raw string) ([]*chat.Session, error) {
	var records []sessionRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, errors.Wrap(err, "decode sessions")
	}
	if err := p.validate.Struct(sessionList{Sessions: records}); err != nil {
		return nil, errors.Wrap(err, "validate sessions")
	}

	return lo.Map(records, func(r sessionRecord, _ int) *chat.Session {
		title := r.Title
		if title == "" {
			title = chat.DefaultTitle
		}
		// Records written without the flag count as named once they carry a
		// custom title or any user message.
		named := r.Titled || title != chat.DefaultTitle
		messages := make([]chat.Message, 0, len(r.Messages))
		for _, m := range r.Messages {
			named = named || m.Sender == string(chat.SenderUser)
			messages = append(messages, chat.Message{Sender: chat.Sender(m.Sender), Text: m.Text})
		}
		return &chat.Session{ID: r.ID, Title: title, Messages: messages, Named: named}
	}), nil
}
