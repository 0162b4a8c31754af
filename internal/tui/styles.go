package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of the TUI.
type Styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Header   lipgloss.Style
	Active   lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
	Severity map[string]lipgloss.Style
}

// DefaultStyles is the built-in dark-terminal style set.
func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7AA2F7")),
		Label:  lipgloss.NewStyle().Foreground(lipgloss.Color("#A9B1D6")).Width(14),
		Header: lipgloss.NewStyle().Bold(true).Underline(true),
		Active: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E0AF68")),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#565F89")),
		Error:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7768E")),
		Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("#565F89")),
		Severity: map[string]lipgloss.Style{
			"HIGH":   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7768E")),
			"MEDIUM": lipgloss.NewStyle().Foreground(lipgloss.Color("#E0AF68")),
			"LOW":    lipgloss.NewStyle().Foreground(lipgloss.Color("#9ECE6A")),
		},
	}
}
