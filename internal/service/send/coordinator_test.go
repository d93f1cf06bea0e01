package send_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/zhouzirui/healthchat/internal/client"
	"github.com/zhouzirui/healthchat/internal/client/clientmock"
	"github.com/zhouzirui/healthchat/internal/loop"
	"github.com/zhouzirui/healthchat/internal/model/chat"
	chatservice "github.com/zhouzirui/healthchat/internal/service/chat"
	"github.com/zhouzirui/healthchat/internal/service/render"
	"github.com/zhouzirui/healthchat/internal/service/send"
	"github.com/zhouzirui/healthchat/internal/store"
)

type composer struct{ cleared int }

func (c *composer) ClearInput() { c.cleared++ }

type harness struct {
	loop      *loop.Manual
	state     *chat.State
	reg       *chatservice.Registry
	view      *render.Transcript
	persist   *store.Persistence
	transport *clientmock.MockTransport
	composer  *composer
	co        *send.Coordinator
}

func newHarness(t *testing.T) *harness {
	ctrl := gomock.NewController(t)
	h := &harness{
		loop:      loop.NewManual(),
		state:     &chat.State{},
		view:      render.NewTranscript(nil),
		persist:   store.NewPersistence(store.NewMemory()),
		transport: clientmock.NewMockTransport(ctrl),
		composer:  &composer{},
	}
	sched := render.NewScheduler(h.view, h.loop, 0)
	h.reg = chatservice.NewRegistry(h.state, h.persist, sched, nil)
	h.co = send.NewCoordinator(context.Background(), h.loop, h.reg, sched, h.transport,
		func() string { return "en" }, send.WithComposer(h.composer))
	return h
}

func (h *harness) settle(t *testing.T, cond func() bool) {
	t.Helper()
	require.True(t, h.loop.RunUntil(cond, 2*time.Second), "condition not reached")
	h.loop.Advance(time.Minute)
}

func (h *harness) active(t *testing.T) *chat.Session {
	t.Helper()
	s, ok := h.reg.Active()
	require.True(t, ok)
	return s
}

func TestSubmitRejectsBlankInput(t *testing.T) {
	h := newHarness(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		assert.False(t, h.co.Submit(text))
	}

	assert.Zero(t, h.reg.Len())
	assert.Empty(t, h.view.Snapshot().Entries)
	assert.Zero(t, h.composer.cleared)
}

func TestSubmitWithoutSessionCreatesOne(t *testing.T) {
	h := newHarness(t)
	h.transport.EXPECT().
		Send(gomock.Any(), client.Request{Message: "hello", Lang: "en"}).
		Return("Hi! How can I help?", nil)

	require.True(t, h.co.Submit("hello"))

	s := h.active(t)
	assert.Equal(t, "hello", s.Title)
	assert.Equal(t, 1, h.composer.cleared)

	snap := h.view.Snapshot()
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, "hello", snap.Entries[0].Text)
	assert.True(t, snap.Entries[1].Typing)

	h.settle(t, func() bool { return len(s.Messages) == 2 })

	assert.Equal(t, []chat.Message{
		{Sender: chat.SenderUser, Text: "hello"},
		{Sender: chat.SenderBot, Text: "Hi! How can I help?"},
	}, s.Messages)

	snap = h.view.Snapshot()
	require.Len(t, snap.Entries, 2)
	assert.False(t, snap.Entries[1].Typing)
	assert.Equal(t, "Hi! How can I help?", snap.Entries[1].Text)
	assert.True(t, snap.AtBottom)

	saved := h.persist.Load(context.Background())
	require.Len(t, saved.Sessions, 1)
	assert.Equal(t, s.Messages, saved.Sessions[0].Messages)
}

func TestSubmitLongMessageTruncatesTitle(t *testing.T) {
	h := newHarness(t)
	text := "How do I take my ARV medication every day ok?"
	require.Len(t, []rune(text), 45)
	h.transport.EXPECT().Send(gomock.Any(), gomock.Any()).Return("ok", nil)

	h.co.Submit(text)

	s := h.active(t)
	assert.Equal(t, text[:30]+"...", s.Title)
	assert.NotEqual(t, text, s.Title)
	h.settle(t, func() bool { return len(s.Messages) == 2 })
}

func TestSubmitFailureRendersFallback(t *testing.T) {
	h := newHarness(t)
	h.transport.EXPECT().Send(gomock.Any(), gomock.Any()).Return("", errors.New("connection refused"))

	h.co.Submit("hello")
	s := h.active(t)
	h.settle(t, func() bool { return len(s.Messages) == 2 })

	assert.Equal(t, chat.Message{Sender: chat.SenderBot, Text: send.FallbackText}, s.Messages[1])

	snap := h.view.Snapshot()
	for _, e := range snap.Entries {
		assert.False(t, e.Typing)
	}
	assert.Equal(t, send.FallbackText, snap.Entries[len(snap.Entries)-1].Text)

	saved := h.persist.Load(context.Background())
	last := saved.Sessions[0].Messages[len(saved.Sessions[0].Messages)-1]
	assert.Equal(t, send.FallbackText, last.Text)
}

func TestSubmitAnimatesReply(t *testing.T) {
	h := newHarness(t)
	h.transport.EXPECT().Send(gomock.Any(), gomock.Any()).Return("abc", nil)

	h.co.Submit("q")
	s := h.active(t)
	require.True(t, h.loop.RunUntil(func() bool { return len(s.Messages) == 2 }, 2*time.Second))

	snap := h.view.Snapshot()
	assert.Equal(t, "", snap.Entries[1].Text)

	h.loop.Advance(render.DefaultTick)
	assert.Equal(t, "a", h.view.Snapshot().Entries[1].Text)
	h.loop.Advance(2 * render.DefaultTick)
	assert.Equal(t, "abc", h.view.Snapshot().Entries[1].Text)
}

func TestSecondTitleNeverOverrides(t *testing.T) {
	h := newHarness(t)
	h.transport.EXPECT().Send(gomock.Any(), gomock.Any()).Return("r", nil).Times(2)

	h.co.Submit("first")
	s := h.active(t)
	h.settle(t, func() bool { return len(s.Messages) == 2 })
	h.co.Submit("second")
	h.settle(t, func() bool { return len(s.Messages) == 4 })

	assert.Equal(t, "first", s.Title)
}

func TestOverlappingSendsCompleteInArrivalOrder(t *testing.T) {
	h := newHarness(t)
	releaseFirst := make(chan struct{})
	h.transport.EXPECT().Send(gomock.Any(), client.Request{Message: "slow", Lang: "en"}).
		DoAndReturn(func(ctx context.Context, _ client.Request) (string, error) {
			<-releaseFirst
			return "slow reply", nil
		})
	h.transport.EXPECT().Send(gomock.Any(), client.Request{Message: "fast", Lang: "en"}).
		Return("fast reply", nil)

	h.co.Submit("slow")
	h.co.Submit("fast")
	s := h.active(t)

	typing := 0
	for _, e := range h.view.Snapshot().Entries {
		if e.Typing {
			typing++
		}
	}
	assert.Equal(t, 2, typing)

	h.settle(t, func() bool { return len(s.Messages) == 3 })
	assert.Equal(t, "fast reply", s.Messages[2].Text)

	close(releaseFirst)
	h.settle(t, func() bool { return len(s.Messages) == 4 })
	assert.Equal(t, "slow reply", s.Messages[3].Text)

	for _, e := range h.view.Snapshot().Entries {
		assert.False(t, e.Typing)
	}
}

func TestReplyForInactiveSessionIsStoredNotRendered(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	h.transport.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, client.Request) (string, error) {
			<-release
			return "late", nil
		})

	h.co.Submit("question")
	first := h.active(t)
	second := h.reg.Create(context.Background())
	close(release)

	h.settle(t, func() bool { return len(first.Messages) == 2 })
	assert.Equal(t, "late", first.Messages[1].Text)
	assert.Empty(t, second.Messages)
	assert.Empty(t, h.view.Snapshot().Entries)
}
