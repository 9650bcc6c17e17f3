package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	headerContainer = lipgloss.NewStyle().Padding(1, 1)
	headerTitle     = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	headerInfo      = lipgloss.NewStyle().Foreground(Secondary)
)

// Header renders the title bar: app name on the left, contextual info
// right-aligned.
func Header(title, info string, width int) string {
	w := lipgloss.Width
	left := headerTitle.Render(title)
	right := headerInfo.Render(info)
	space := lipgloss.NewStyle().Width(width - 2 - w(left) - w(right)).Render("")
	return headerContainer.Render(lipgloss.JoinHorizontal(lipgloss.Center, left, space, right)) + "\n"
}
