package tui

import (
	"fmt"
	"strings"
)

// viewLevels summarizes every height level that has items resting on it.
func (m Model) viewLevels() string {
	s := strings.Builder{}

	headerTxt := fmt.Sprintf("   %-10s | %-6s | %-10s | %s", "LEVEL Z", "ITEMS", "VALUE", "TOP")
	s.WriteString(dimStyle.Render(headerTxt) + "\n")
	s.WriteString(dimStyle.Render("   "+strings.Repeat("─", 44)) + "\n")

	if len(m.levels) == 0 {
		return s.String() + "\n   " + subtle.Render("Nothing loaded.")
	}

	for i, z := range m.levels {
		items := m.Result.AtLevel(z)
		value, top := 0.0, z
		for _, c := range items {
			value += c.Value
			if c.Top() > top {
				top = c.Top()
			}
		}

		line := fmt.Sprintf("%-10.2f | %-6d | %-10.2f | %.2f", z, len(items), value, top)
		if i == m.levelCursor {
			s.WriteString(listSelectedStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString(listNormalStyle.Render("  "+line) + "\n")
		}
	}
	return s.String()
}
