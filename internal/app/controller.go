// Package app owns the chat state and routes UI events onto the loop.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/healthchat/internal/client"
	"github.com/zhouzirui/healthchat/internal/loop"
	"github.com/zhouzirui/healthchat/internal/model/chat"
	chatservice "github.com/zhouzirui/healthchat/internal/service/chat"
	"github.com/zhouzirui/healthchat/internal/service/render"
	"github.com/zhouzirui/healthchat/internal/service/send"
)

// DefaultWelcome greets the user in a brand-new store.
const DefaultWelcome = "👋 Hello! I'm your health assistant. Ask me about HIV treatment and ARVs, maternal and child health, nutrition, hygiene, or medications."

// DefaultLanguage is used until the selector picks another tag.
const DefaultLanguage = "en"

// StateStore loads and saves the session state.
type StateStore interface {
	Load(ctx context.Context) chat.State
	Save(ctx context.Context, st chat.State) error
}

// Options tunes the controller.
type Options struct {
	Welcome        string
	Language       string
	RevealTick     time.Duration
	RequestTimeout time.Duration
}

// Surfaces are the UI pieces the controller draws into.
type Surfaces struct {
	View     render.View
	Sidebar  chatservice.Sidebar
	Composer send.Composer
}

// Controller owns the explicit chat state. All of its methods post onto the
// loop, so they may be called from any goroutine.
type Controller struct {
	ctx   context.Context
	loop  loop.Loop
	store StateStore

	state       *chat.State
	registry    *chatservice.Registry
	scheduler   *render.Scheduler
	coordinator *send.Coordinator

	welcome string
	lang    string
}

// New wires the registry, render scheduler and send coordinator around one
// state object. Call Start before anything else.
func New(ctx context.Context, l loop.Loop, st StateStore, transport client.Transport, ui Surfaces, opts Options) *Controller {
	c := &Controller{
		ctx:     ctx,
		loop:    l,
		store:   st,
		state:   &chat.State{},
		welcome: opts.Welcome,
		lang:    opts.Language,
	}
	if c.welcome == "" {
		c.welcome = DefaultWelcome
	}
	if c.lang == "" {
		c.lang = DefaultLanguage
	}

	c.scheduler = render.NewScheduler(ui.View, l, opts.RevealTick)
	c.registry = chatservice.NewRegistry(c.state, st, c.scheduler, ui.Sidebar)

	var sendOpts []send.Option
	if ui.Composer != nil {
		sendOpts = append(sendOpts, send.WithComposer(ui.Composer))
	}
	if opts.RequestTimeout > 0 {
		sendOpts = append(sendOpts, send.WithTimeout(opts.RequestTimeout))
	}
	c.coordinator = send.NewCoordinator(ctx, l, c.registry, c.scheduler, transport, c.language, sendOpts...)
	return c
}

// Start restores persisted sessions. An empty store gets one session holding
// the welcome message.
func (c *Controller) Start() {
	c.loop.Post(c.start)
}

// Submit sends a user message.
func (c *Controller) Submit(text string) {
	c.loop.Post(func() { c.coordinator.Submit(text) })
}

// NewChat creates and activates an empty session.
func (c *Controller) NewChat() {
	c.loop.Post(func() { c.registry.Create(c.ctx) })
}

// Select activates the session with the given id.
func (c *Controller) Select(id string) {
	c.loop.Post(func() { c.registry.Select(c.ctx, id) })
}

// SelectRelative moves the active session by delta positions in the list.
func (c *Controller) SelectRelative(delta int) {
	c.loop.Post(func() {
		list := c.registry.List()
		if len(list) == 0 {
			return
		}
		idx := 0
		for i, item := range list {
			if item.Active {
				idx = i
				break
			}
		}
		next := (idx + delta) % len(list)
		if next < 0 {
			next += len(list)
		}
		c.registry.Select(c.ctx, list[next].ID)
	})
}

// SetLanguage changes the tag attached to future requests.
func (c *Controller) SetLanguage(lang string) {
	c.loop.Post(func() {
		lang = strings.TrimSpace(lang)
		if lang == "" {
			return
		}
		c.lang = lang
		log.Debug().Str("lang", lang).Msg("language changed")
	})
}

// Snapshot delivers a deep copy of the state to fn on the loop.
func (c *Controller) Snapshot(fn func(chat.State)) {
	c.loop.Post(func() { fn(c.registry.Snapshot()) })
}

func (c *Controller) start() {
	loaded := c.store.Load(c.ctx)
	c.state.Sessions = loaded.Sessions
	c.state.ActiveID = loaded.ActiveID

	if len(c.state.Sessions) == 0 {
		session := c.registry.Create(c.ctx)
		c.registry.Append(c.ctx, session.ID, chat.SenderBot, c.welcome)
		c.scheduler.Render(chat.SenderBot, c.welcome, false)
		log.Info().Str("session_id", session.ID).Msg("started with a fresh session")
		return
	}

	active := c.state.ActiveID
	if _, ok := c.state.Find(active); !ok {
		active = c.state.Sessions[0].ID
	}
	c.registry.Select(c.ctx, active)
	log.Info().Int("sessions", len(c.state.Sessions)).Str("active", active).Msg("sessions restored")
}

func (c *Controller) language() string {
	return c.lang
}
