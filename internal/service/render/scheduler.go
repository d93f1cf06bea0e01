// Package render turns chat messages into transcript output, either at once or
// through a timed character reveal.
package render

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/healthchat/internal/loop"
	"github.com/zhouzirui/healthchat/internal/model/chat"
)

// DefaultTick is the delay between two revealed characters.
const DefaultTick = 20 * time.Millisecond

// Scheduler renders messages into a View on the loop.
type Scheduler struct {
	view View
	loop loop.Loop
	tick time.Duration
}

// NewScheduler creates a scheduler. A non-positive tick uses DefaultTick.
func NewScheduler(view View, l loop.Loop, tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Scheduler{view: view, loop: l, tick: tick}
}

// Render shows text from sender. With animate=false the full text appears in one
// update; otherwise it is revealed one rune per tick. The view is scrolled to the
// newest content either way.
func (s *Scheduler) Render(sender chat.Sender, text string, animate bool) *Reveal {
	if !animate {
		id := s.view.Append(sender, text)
		s.view.ScrollToBottom()
		return &Reveal{entry: id, steps: []rune(text), shown: len([]rune(text)), done: true}
	}

	id := s.view.Append(sender, "")
	s.view.ScrollToBottom()
	r := &Reveal{sched: s, entry: id, steps: []rune(text)}
	if len(r.steps) == 0 {
		r.done = true
		return r
	}
	r.arm()
	return r
}

// ReplayHistory redraws a full transcript without animation.
func (s *Scheduler) ReplayHistory(messages []chat.Message) {
	s.view.Clear()
	for _, m := range messages {
		s.view.Append(m.Sender, m.Text)
	}
	s.view.ScrollToBottom()
	log.Debug().Int("messages", len(messages)).Msg("history replayed")
}

// Clear empties the view.
func (s *Scheduler) Clear() {
	s.view.Clear()
	s.view.ScrollToBottom()
}

// ShowTyping inserts the transient typing indicator.
func (s *Scheduler) ShowTyping() *Placeholder {
	id := s.view.AppendTyping()
	s.view.ScrollToBottom()
	return &Placeholder{view: s.view, entry: id}
}

// Reveal is the finite step sequence of one animated message. Step i shows the
// first i+1 runes of the text.
type Reveal struct {
	sched *Scheduler
	entry EntryID
	steps []rune
	shown int
	timer loop.Timer
	done  bool
}

// Entry returns the view element the reveal writes to.
func (r *Reveal) Entry() EntryID { return r.entry }

// Done reports whether the full text is visible or the reveal was cancelled.
func (r *Reveal) Done() bool { return r.done }

// Shown returns how many runes are currently visible.
func (r *Reveal) Shown() int { return r.shown }

// Cancel stops a running reveal, leaving the partial text on screen.
func (r *Reveal) Cancel() {
	if r.done {
		return
	}
	r.done = true
	if r.timer != nil {
		r.timer.Stop()
	}
}

func (r *Reveal) arm() {
	r.timer = r.sched.loop.AfterFunc(r.sched.tick, r.step)
}

func (r *Reveal) step() {
	if r.done {
		return
	}
	r.shown++
	view := r.sched.view
	view.Update(r.entry, string(r.steps[:r.shown]))
	view.ScrollToBottom()

	if r.shown >= len(r.steps) {
		r.done = true
		r.timer = nil
		return
	}
	r.arm()
}

// Placeholder is the typing indicator of one pending send.
type Placeholder struct {
	view    View
	entry   EntryID
	removed bool
}

// Remove takes the indicator off screen. Calling it again is a no-op.
func (p *Placeholder) Remove() {
	if p.removed {
		return
	}
	p.removed = true
	p.view.Remove(p.entry)
}
