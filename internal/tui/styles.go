package tui

import "github.com/charmbracelet/lipgloss"

var (
	cursorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))            // purple
	markStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))           // gray
	markSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true) // green
	sizeStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))            // cyan
	pathStyleSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	headerStyle       = lipgloss.NewStyle().Bold(true)
	activeHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("227"))
	warnStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	logStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	optionOnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	optionOffStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func option(label string, on bool) string {
	if on {
		return optionOnStyle.Render("[x] " + label)
	}
	return optionOffStyle.Render("[ ] " + label)
}
