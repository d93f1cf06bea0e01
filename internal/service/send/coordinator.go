// Package send runs the user message → remote call → assistant reply cycle.
package send

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/healthchat/internal/client"
	"github.com/zhouzirui/healthchat/internal/loop"
	"github.com/zhouzirui/healthchat/internal/model/chat"
	"github.com/zhouzirui/healthchat/internal/service/render"
)

// FallbackText replaces the reply whenever the remote call fails.
const FallbackText = "⚠️ Network error. Please try again."

// Sessions is the registry surface the coordinator needs.
type Sessions interface {
	Active() (*chat.Session, bool)
	Create(ctx context.Context) *chat.Session
	Append(ctx context.Context, id string, sender chat.Sender, text string) bool
	MaybeSetTitle(ctx context.Context, id, text string) bool
	Persist(ctx context.Context)
}

// Renderer is the scheduler surface the coordinator needs.
type Renderer interface {
	Render(sender chat.Sender, text string, animate bool) *render.Reveal
	ShowTyping() *render.Placeholder
}

// Composer is the message input box.
type Composer interface {
	ClearInput()
}

// LanguageFunc returns the language tag attached to outbound requests.
type LanguageFunc func() string

// Coordinator drives send operations. Submit must be called on the loop; the
// remote call runs on its own goroutine and its completion is posted back.
type Coordinator struct {
	ctx       context.Context
	loop      loop.Loop
	sessions  Sessions
	renderer  Renderer
	transport client.Transport
	composer  Composer
	lang      LanguageFunc
	timeout   time.Duration
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithComposer clears the given input after a message is accepted.
func WithComposer(c Composer) Option {
	return func(co *Coordinator) { co.composer = c }
}

// WithTimeout bounds each remote call. Zero leaves calls unbounded.
func WithTimeout(d time.Duration) Option {
	return func(co *Coordinator) { co.timeout = d }
}

// NewCoordinator wires a coordinator. ctx scopes every remote call.
func NewCoordinator(ctx context.Context, l loop.Loop, sessions Sessions, renderer Renderer, transport client.Transport, lang LanguageFunc, opts ...Option) *Coordinator {
	c := &Coordinator{
		ctx:       ctx,
		loop:      l,
		sessions:  sessions,
		renderer:  renderer,
		transport: transport,
		lang:      lang,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit starts a send operation. It returns false when the input was empty and
// nothing happened.
func (c *Coordinator) Submit(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	session, ok := c.sessions.Active()
	if !ok {
		session = c.sessions.Create(c.ctx)
	}
	sessionID := session.ID

	c.sessions.Append(c.ctx, sessionID, chat.SenderUser, text)
	c.renderer.Render(chat.SenderUser, text, false)
	c.sessions.MaybeSetTitle(c.ctx, sessionID, text)
	if c.composer != nil {
		c.composer.ClearInput()
	}

	placeholder := c.renderer.ShowTyping()
	req := client.Request{Message: text, Lang: c.lang()}

	go c.call(sessionID, placeholder, req)
	return true
}

func (c *Coordinator) call(sessionID string, placeholder *render.Placeholder, req client.Request) {
	ctx := c.ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := c.transport.Send(ctx, req)
	elapsed := time.Since(start)

	c.loop.Post(func() {
		c.complete(sessionID, placeholder, reply, err, elapsed)
	})
}

func (c *Coordinator) complete(sessionID string, placeholder *render.Placeholder, reply string, err error, elapsed time.Duration) {
	placeholder.Remove()

	text := reply
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Dur("elapsed", elapsed).Msg("chat request failed")
		text = FallbackText
	} else {
		log.Debug().Str("session_id", sessionID).Dur("elapsed", elapsed).Int("length", len(reply)).Msg("chat reply received")
	}

	if active, ok := c.sessions.Active(); ok && active.ID == sessionID {
		c.renderer.Render(chat.SenderBot, text, true)
	}
	c.sessions.Append(c.ctx, sessionID, chat.SenderBot, text)
	c.sessions.Persist(c.ctx)
}
