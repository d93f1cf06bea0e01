package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhouzirui/healthchat/internal/model/chat"
	"github.com/zhouzirui/healthchat/internal/service/render"
)

type transcriptMsg render.Snapshot

type sessionsMsg []chat.Listing

type clearInputMsg struct{}

// Bridge forwards updates produced on the chat loop into the bubbletea program.
// It implements the sidebar and composer surfaces and feeds the transcript hook.
type Bridge struct {
	send func(tea.Msg)
}

// NewBridge returns a bridge that delivers messages through send, usually
// (*tea.Program).Send.
func NewBridge(send func(tea.Msg)) *Bridge {
	return &Bridge{send: send}
}

// OnTranscript is the render.Transcript change hook.
func (b *Bridge) OnTranscript(s render.Snapshot) {
	b.send(transcriptMsg(s))
}

// ShowSessions implements the registry sidebar surface.
func (b *Bridge) ShowSessions(items []chat.Listing) {
	b.send(sessionsMsg(append([]chat.Listing(nil), items...)))
}

// ClearInput implements the composer surface.
func (b *Bridge) ClearInput() {
	b.send(clearInputMsg{})
}
