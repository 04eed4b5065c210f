package tui

import "github.com/charmbracelet/lipgloss"

var (
	special   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF99"))
	danger    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF3366"))
	highlight = lipgloss.NewStyle().Foreground(lipgloss.Color("#874BFD")).Bold(true)
	subtle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8FAFC")).
			Background(lipgloss.Color("#874BFD")).
			Padding(0, 1)

	listNormalStyle   = lipgloss.NewStyle().PaddingLeft(2)
	listSelectedStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("#00FF99")).Bold(true)

	detailsHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF99")).MarginBottom(1)
	detailsBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#874BFD")).
				Padding(1, 2)
)

// swatch renders a two-cell block in the item's color.
func swatch(color string) string {
	if color == "" {
		return "  "
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("██")
}
