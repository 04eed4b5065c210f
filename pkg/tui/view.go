package tui

import (
	"fmt"
	"strings"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.loading {
		return fmt.Sprintf("\n\n   %s Loading items...", m.spinner.View())
	}
	if m.Result == nil {
		msg := "No result."
		if m.err != nil {
			msg = m.err.Error()
		}
		return "\n\n   " + danger.Render(msg)
	}

	var body string
	switch m.state {
	case ViewStateDetail:
		body = m.viewDetails()
	case ViewStateLevels:
		body = m.viewLevels()
	case ViewStateHelp:
		body = m.viewHelp()
	default:
		body = m.viewList()
	}

	return strings.Join([]string{m.viewHeader(), body, m.viewFooter()}, "\n")
}

func (m Model) viewHeader() string {
	res := m.Result
	title := titleStyle.Render(fmt.Sprintf(" CARGOLOAD · %s ", res.Strategy))
	box := subtle.Render(fmt.Sprintf("container %.2f × %.2f × %.2f", res.Container.Length, res.Container.Width, res.Container.Height))
	fill := m.progress.ViewAs(res.FillRatio)
	return fmt.Sprintf("%s  %s\n%s\n%s\n", title, box, summaryLine(res), fill)
}

func (m Model) viewFooter() string {
	filter := "all items"
	switch {
	case m.level == allLevels:
	case m.unloadedFilter():
		filter = "unloaded items"
	default:
		filter = fmt.Sprintf("level z=%.2f", m.levels[m.level])
	}
	return dimStyle.Render(fmt.Sprintf("\n  [%s]  ↑/↓ move · enter details · l layer · v levels · ? help · q quit", filter))
}

func (m Model) viewHelp() string {
	lines := []string{
		highlight.Render("KEYS"),
		"↑/↓ k/j   move cursor",
		"enter     item details / pick level",
		"l         cycle layer filter",
		"v         level summary",
		"esc b     back to list",
		"q         quit",
	}
	return detailsBoxStyle.Render(strings.Join(lines, "\n"))
}
