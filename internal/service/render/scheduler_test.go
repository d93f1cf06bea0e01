package render_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/healthchat/internal/loop"
	"github.com/zhouzirui/healthchat/internal/model/chat"
	"github.com/zhouzirui/healthchat/internal/service/render"
)

func newScheduler() (*render.Scheduler, *render.Transcript, *loop.Manual) {
	l := loop.NewManual()
	view := render.NewTranscript(nil)
	return render.NewScheduler(view, l, 0), view, l
}

func TestRenderInstant(t *testing.T) {
	sched, view, l := newScheduler()

	r := sched.Render(chat.SenderUser, "hello", false)

	assert.True(t, r.Done())
	assert.Equal(t, 0, l.PendingTimers())
	snap := view.Snapshot()
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "hello", snap.Entries[0].Text)
	assert.Equal(t, chat.SenderUser, snap.Entries[0].Sender)
	assert.True(t, snap.AtBottom)
}

func TestRenderAnimatedRevealsOneRunePerTick(t *testing.T) {
	sched, view, l := newScheduler()

	r := sched.Render(chat.SenderBot, "héllo", true)
	snap := view.Snapshot()
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "", snap.Entries[0].Text)
	assert.True(t, snap.AtBottom)

	want := []string{"h", "hé", "hél", "héll", "héllo"}
	for i, w := range want {
		l.Advance(render.DefaultTick - time.Millisecond)
		assert.Equal(t, i, r.Shown(), "revealed early at step %d", i)
		l.Advance(time.Millisecond)

		snap = view.Snapshot()
		assert.Equal(t, w, snap.Entries[0].Text)
		assert.True(t, snap.AtBottom)
	}

	assert.True(t, r.Done())
	assert.Equal(t, 0, l.PendingTimers())
	assert.Equal(t, 5*render.DefaultTick, l.Now())
}

func TestRenderAnimatedEmptyText(t *testing.T) {
	sched, view, l := newScheduler()

	r := sched.Render(chat.SenderBot, "", true)

	assert.True(t, r.Done())
	assert.Equal(t, 0, l.PendingTimers())
	assert.Len(t, view.Snapshot().Entries, 1)
}

func TestOverlappingRevealsRunIndependently(t *testing.T) {
	sched, view, l := newScheduler()

	a := sched.Render(chat.SenderBot, "abcd", true)
	l.Advance(2 * render.DefaultTick)
	b := sched.Render(chat.SenderBot, "xy", true)
	l.Advance(2 * render.DefaultTick)

	assert.True(t, a.Done())
	assert.True(t, b.Done())
	snap := view.Snapshot()
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, "abcd", snap.Entries[0].Text)
	assert.Equal(t, "xy", snap.Entries[1].Text)
}

func TestRevealCancelLeavesPartialText(t *testing.T) {
	sched, view, l := newScheduler()

	r := sched.Render(chat.SenderBot, "abcdef", true)
	l.Advance(3 * render.DefaultTick)
	r.Cancel()
	l.Advance(10 * render.DefaultTick)

	assert.True(t, r.Done())
	assert.Equal(t, 3, r.Shown())
	assert.Equal(t, "abc", view.Snapshot().Entries[0].Text)
}

func TestReplayHistoryIsInstant(t *testing.T) {
	sched, view, l := newScheduler()
	sched.Render(chat.SenderBot, "stale", false)

	sched.ReplayHistory([]chat.Message{
		{Sender: chat.SenderUser, Text: "q"},
		{Sender: chat.SenderBot, Text: "a"},
	})

	assert.Equal(t, 0, l.PendingTimers())
	snap := view.Snapshot()
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, "q", snap.Entries[0].Text)
	assert.Equal(t, "a", snap.Entries[1].Text)
	assert.True(t, snap.AtBottom)
}

func TestPlaceholderRemoveIsIdempotent(t *testing.T) {
	sched, view, _ := newScheduler()

	p := sched.ShowTyping()
	snap := view.Snapshot()
	require.Len(t, snap.Entries, 1)
	assert.True(t, snap.Entries[0].Typing)

	p.Remove()
	p.Remove()
	assert.Empty(t, view.Snapshot().Entries)
}

func TestTranscriptReportsChanges(t *testing.T) {
	var snaps []render.Snapshot
	view := render.NewTranscript(func(s render.Snapshot) { snaps = append(snaps, s) })

	id := view.Append(chat.SenderUser, "x")
	view.Update(id, "y")
	view.Update(999, "ignored")
	view.Remove(999)

	require.Len(t, snaps, 2)
	assert.Equal(t, "y", snaps[1].Entries[0].Text)
}
