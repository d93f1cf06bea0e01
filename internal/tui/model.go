// Package tui is the terminal front end: a session sidebar, the transcript and
// a message composer.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/healthchat/internal/model/chat"
	"github.com/zhouzirui/healthchat/internal/service/render"
)

const sidebarWidth = 28

// Controller receives the UI events.
type Controller interface {
	Submit(text string)
	NewChat()
	SelectRelative(delta int)
	SetLanguage(lang string)
}

// Model is the bubbletea model of the chat screen.
type Model struct {
	ctrl     Controller
	input    textinput.Model
	viewport viewport.Model
	entries  []render.Entry
	sessions []chat.Listing
	langs    []string
	langIdx  int
	width    int
	height   int
}

// NewModel builds the screen. langs lists the selectable language tags; the
// first one is active.
func NewModel(ctrl Controller, langs []string) Model {
	in := textinput.New()
	in.Placeholder = "Ask a health question…"
	in.Prompt = "> "
	in.CharLimit = 2000
	in.Focus()

	if len(langs) == 0 {
		langs = []string{"en"}
	}
	return Model{
		ctrl:     ctrl,
		input:    in,
		viewport: viewport.New(80, 20),
		langs:    langs,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch ev := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = ev.Width, ev.Height
		m.resize()
		return m, nil
	case transcriptMsg:
		m.entries = ev.Entries
		m.viewport.SetContent(m.renderEntries())
		if ev.AtBottom {
			m.viewport.GotoBottom()
		}
		return m, nil
	case sessionsMsg:
		m.sessions = ev
		return m, nil
	case clearInputMsg:
		m.input.Reset()
		return m, nil
	case tea.KeyMsg:
		switch ev.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			m.ctrl.Submit(m.input.Value())
			return m, nil
		case "ctrl+n":
			m.ctrl.NewChat()
			return m, nil
		case "tab":
			m.ctrl.SelectRelative(1)
			return m, nil
		case "shift+tab":
			m.ctrl.SelectRelative(-1)
			return m, nil
		case "ctrl+l":
			m.langIdx = (m.langIdx + 1) % len(m.langs)
			m.ctrl.SetLanguage(m.langs[m.langIdx])
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.input.View(),
		statusStyle.Render(fmt.Sprintf("lang: %s · enter send · ctrl+n new chat · tab switch · ctrl+l language · esc quit", m.langs[m.langIdx])),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), body)
}

// Language returns the currently selected language tag.
func (m Model) Language() string {
	return m.langs[m.langIdx]
}

func (m *Model) resize() {
	w := m.width - sidebarWidth - 2
	if w < 20 {
		w = 20
	}
	h := m.height - 3
	if h < 3 {
		h = 3
	}
	m.viewport.Width = w
	m.viewport.Height = h
	m.input.Width = w - 3
	m.viewport.SetContent(m.renderEntries())
}

func (m Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Chats"))
	b.WriteString("\n")
	for _, s := range m.sessions {
		title := s.Title
		if s.Active {
			b.WriteString(activeStyle.Render("▸ " + title))
		} else {
			b.WriteString(listStyle.Render("  " + title))
		}
		b.WriteString("\n")
	}
	return sidebarStyle.Width(sidebarWidth).Render(b.String())
}

func (m Model) renderEntries() string {
	width := m.viewport.Width
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		var line string
		switch {
		case e.Typing:
			line = typingStyle.Render("Assistant is typing…")
		case e.Sender == chat.SenderUser:
			line = userStyle.Render("You: ") + e.Text
		default:
			line = botStyle.Render("Assistant: ") + e.Text
		}
		lines = append(lines, lipgloss.NewStyle().Width(width).Render(line))
	}
	return strings.Join(lines, "\n\n")
}
