package tui

import (
	"fmt"
	"strings"
)

func (m Model) viewList() string {
	s := strings.Builder{}

	if len(m.rows) == 0 {
		return "\n   " + subtle.Render("No items at this level.")
	}

	start, end := m.calculateWindow(len(m.rows))

	headerTxt := fmt.Sprintf("     "+rowFormat, "ID", "RADIUS", "HEIGHT", "VALUE", "X", "Y", "Z", "STATUS")
	s.WriteString(dimStyle.Render(headerTxt) + "\n")

	for i := start; i < end; i++ {
		c := m.rows[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := cursor + swatch(c.Color) + " " + row(c)

		switch {
		case i == m.cursor:
			s.WriteString(listSelectedStyle.Render(line) + "\n")
		case !c.Placed():
			s.WriteString(listNormalStyle.Render(danger.Render(line)) + "\n")
		default:
			s.WriteString(listNormalStyle.Render(line) + "\n")
		}
	}

	return s.String()
}

func (m Model) calculateWindow(total int) (int, int) {
	windowSize := m.height - 10 // header + footer
	if windowSize < 5 {
		windowSize = 5
	}

	start := m.cursor - (windowSize / 2)
	if start < 0 {
		start = 0
	}

	end := start + windowSize
	if end > total {
		end = total
		start = end - windowSize
		if start < 0 {
			start = 0
		}
	}
	return start, end
}
