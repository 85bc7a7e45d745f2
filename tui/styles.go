package tui

import "github.com/charmbracelet/lipgloss"

var (
	goldColor  = lipgloss.Color("#EAB308")
	paleColor  = lipgloss.Color("#FEF9C3")
	mutedColor = lipgloss.Color("245")
	alarmColor = lipgloss.Color("#EF4444")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(goldColor)

	subtitleStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(paleColor)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(goldColor).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(goldColor)

	valueStyle    = lipgloss.NewStyle().Foreground(paleColor)
	activeStyle   = lipgloss.NewStyle().Bold(true).Foreground(goldColor).Underline(true)
	inactiveStyle = lipgloss.NewStyle().Foreground(mutedColor)
	alarmStyle    = lipgloss.NewStyle().Bold(true).Foreground(alarmColor)
	footerStyle   = lipgloss.NewStyle().Foreground(mutedColor).MarginTop(1)
	errorStyle    = lipgloss.NewStyle().Foreground(alarmColor)
)
