package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DrSkyle/cargoload/pkg/engine/report"
)

func (m Model) viewDetails() string {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return "No Item Selected"
	}
	c := m.rows[m.cursor]

	header := detailsHeaderStyle.Render(fmt.Sprintf("ITEM #%d  %s", c.ID, swatch(c.Color)))

	status := special.Render(report.Status(c))
	position := fmt.Sprintf("POSITION:  (%.3f, %.3f, %.3f)", c.X, c.Y, c.Z)
	if !c.Placed() {
		status = danger.Render(report.Status(c))
		position = "POSITION:  outside the container"
	}

	props := []string{
		fmt.Sprintf("%-10s : %.3f", "radius", c.Radius),
		fmt.Sprintf("%-10s : %.3f", "height", c.Height),
		fmt.Sprintf("%-10s : %.3f", "volume", c.Volume()),
		fmt.Sprintf("%-10s : %.3f", "value", c.Value),
		fmt.Sprintf("%-10s : %.4f", "density", c.Density()),
		fmt.Sprintf("%-10s : %s", "color", c.Color),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"STATUS:    "+status,
		position,
		"",
		dimStyle.Render(strings.Join(props, "\n")),
		"",
		strings.Repeat("─", 40),
		highlight.Render("[B]ack to List"),
	)

	return detailsBoxStyle.Render(content)
}
