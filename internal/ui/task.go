package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/td0m/remind/pkg/task"
)

var (
	TaskIcon  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	TaskTitle = lipgloss.NewStyle().Bold(true)

	TaskDivider = lipgloss.NewStyle().Foreground(Faded).Padding(0, 1).Render("∙")
)

// StatusColor picks a colour for a task's due status: nagging tasks are
// red, snoozed and overdue ones fade out, far-away ones cool off.
func StatusColor(daysLeft int, c task.Classification) lipgloss.Color {
	switch {
	case c == task.Snoozed:
		return Faded
	case daysLeft < 0:
		return Secondary
	case c == task.Due:
		return Red
	case daysLeft <= 14:
		return Orange
	default:
		return Secondary
	}
}
