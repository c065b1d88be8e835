package explorer

import "github.com/charmbracelet/lipgloss"

// Styles holds the explorer's lipgloss styles.
type Styles struct {
	Title    lipgloss.Style
	Item     lipgloss.Style
	Field    lipgloss.Style
	Link     lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
}

// DefaultStyles returns the default explorer styles.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1),
		Item:     lipgloss.NewStyle(),
		Field:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Link:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}
