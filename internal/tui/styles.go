// ABOUTME: Shared lipgloss styles for the board TUI screens.
// ABOUTME: One palette so list, detail, editor, and login render consistently.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	badgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
)
