package tui

import (
	"fmt"
	"strings"

	"github.com/DrSkyle/cargoload/pkg/engine"
	"github.com/DrSkyle/cargoload/pkg/engine/report"
	"github.com/DrSkyle/cargoload/pkg/engine/tetris"
)

const rowFormat = "%-6s %8s %8s %10s %9s %9s %9s  %-8s"

// RenderTable renders a static summary and item table for non-interactive output.
func RenderTable(res *engine.Result) string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" %s ", res.Strategy)) + "\n\n")
	s.WriteString(summaryLine(res) + "\n\n")

	header := fmt.Sprintf("   "+rowFormat, "ID", "RADIUS", "HEIGHT", "VALUE", "X", "Y", "Z", "STATUS")
	s.WriteString(dimStyle.Render(header) + "\n")
	s.WriteString(dimStyle.Render("   "+strings.Repeat("─", len(header)-3)) + "\n")

	for _, c := range res.Items {
		s.WriteString(swatch(c.Color) + " " + styledRow(c) + "\n")
	}
	return s.String()
}

func summaryLine(res *engine.Result) string {
	loaded := special.Render(fmt.Sprintf("%d loaded", res.PlacedCount))
	unloaded := subtle.Render(fmt.Sprintf("%d unloaded", res.UnplacedCount))
	if res.UnplacedCount > 0 {
		unloaded = danger.Render(fmt.Sprintf("%d unloaded", res.UnplacedCount))
	}
	return fmt.Sprintf("%s · %s · value %.2f · fill %.1f%%", loaded, unloaded, res.TotalValue, res.FillRatio*100)
}

func row(c *tetris.Cylinder) string {
	return fmt.Sprintf(rowFormat,
		fmt.Sprintf("#%d", c.ID),
		fmt.Sprintf("%.2f", c.Radius),
		fmt.Sprintf("%.2f", c.Height),
		fmt.Sprintf("%.2f", c.Value),
		fmt.Sprintf("%.2f", c.X),
		fmt.Sprintf("%.2f", c.Y),
		fmt.Sprintf("%.2f", c.Z),
		report.Status(c),
	)
}

func styledRow(c *tetris.Cylinder) string {
	if c.Placed() {
		return row(c)
	}
	return danger.Render(row(c))
}
