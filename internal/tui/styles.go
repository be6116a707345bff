package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#2EC4B6")
	colorAccent  = lipgloss.Color("#F39C12")
	colorMuted   = lipgloss.Color("#666666")
	colorSubtle  = lipgloss.Color("#414868")
	colorFg      = lipgloss.Color("#C0CAF5")
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	cityStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	nextStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	countdownStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	rowStyle = lipgloss.NewStyle().
			Foreground(colorFg)
)
