package render

import (
	"sync"

	"github.com/zhouzirui/healthchat/internal/model/chat"
)

// EntryID identifies one element of the rendered transcript.
type EntryID int

// View is the on-screen transcript surface the scheduler draws into.
type View interface {
	// Append adds a message element and returns its handle.
	Append(sender chat.Sender, text string) EntryID
	// Update replaces the visible text of an element. Unknown ids are ignored.
	Update(id EntryID, text string)
	// AppendTyping adds the transient typing indicator.
	AppendTyping() EntryID
	// Remove deletes an element. Unknown ids are ignored.
	Remove(id EntryID)
	// Clear removes every element.
	Clear()
	// ScrollToBottom keeps the newest element in view.
	ScrollToBottom()
}

// Entry is one rendered element.
type Entry struct {
	ID     EntryID
	Sender chat.Sender
	Text   string
	Typing bool
}

// Snapshot is an immutable copy of the transcript.
type Snapshot struct {
	Entries  []Entry
	AtBottom bool
}

// Transcript is an in-memory View. Every change is reported to the optional
// change hook with a fresh snapshot.
type Transcript struct {
	mu       sync.Mutex
	entries  []Entry
	nextID   EntryID
	atBottom bool
	onChange func(Snapshot)
}

// NewTranscript returns an empty transcript. onChange may be nil.
func NewTranscript(onChange func(Snapshot)) *Transcript {
	return &Transcript{atBottom: true, onChange: onChange}
}

func (t *Transcript) Append(sender chat.Sender, text string) EntryID {
	return t.add(Entry{Sender: sender, Text: text})
}

func (t *Transcript) AppendTyping() EntryID {
	return t.add(Entry{Sender: chat.SenderBot, Typing: true})
}

func (t *Transcript) Update(id EntryID, text string) {
	t.mutate(func() bool {
		for i := range t.entries {
			if t.entries[i].ID == id {
				t.entries[i].Text = text
				t.atBottom = false
				return true
			}
		}
		return false
	})
}

func (t *Transcript) Remove(id EntryID) {
	t.mutate(func() bool {
		for i := range t.entries {
			if t.entries[i].ID == id {
				t.entries = append(t.entries[:i], t.entries[i+1:]...)
				return true
			}
		}
		return false
	})
}

func (t *Transcript) Clear() {
	t.mutate(func() bool {
		t.entries = nil
		t.atBottom = true
		return true
	})
}

func (t *Transcript) ScrollToBottom() {
	t.mutate(func() bool {
		t.atBottom = true
		return true
	})
}

// Snapshot returns a copy of the current transcript.
func (t *Transcript) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Transcript) add(e Entry) EntryID {
	var id EntryID
	t.mutate(func() bool {
		t.nextID++
		id = t.nextID
		e.ID = id
		t.entries = append(t.entries, e)
		t.atBottom = false
		return true
	})
	return id
}

func (t *Transcript) mutate(fn func() bool) {
	t.mu.Lock()
	changed := fn()
	var snap Snapshot
	if changed && t.onChange != nil {
		snap = t.snapshotLocked()
	}
	t.mu.Unlock()

	if changed && t.onChange != nil {
		t.onChange(snap)
	}
}

func (t *Transcript) snapshotLocked() Snapshot {
	return Snapshot{
		Entries:  append([]Entry(nil), t.entries...),
		AtBottom: t.atBottom,
	}
}
