package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	userStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	botStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("118"))
	typingStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("246"))
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	listStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("238")).
			PaddingRight(1)
)
