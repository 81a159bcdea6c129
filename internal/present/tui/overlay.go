package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
)

var helpLines = []string{
	"d        sort by date (again to reverse)",
	"l        sort by likes (again to reverse)",
	"f        switch html / markdown links",
	"/        filter by title",
	"enter    print the selected essay",
	"↑/↓      move",
	"q        quit",
}

func helpBox() string {
	return lipgloss.NewStyle().
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(lipgloss.NewStyle().Bold(true).Render("Keys") + "\n\n" + strings.Join(helpLines, "\n"))
}

// renderOverlay composes a centered modal on top of the given base view string.
func (m model) renderOverlay(base, fg string, overlayW, overlayH int) string {
	termW, termH := m.width, m.height
	if termW <= 0 {
		termW = 80
	}
	if termH <= 0 {
		termH = 24
	}
	x := (termW - overlayW) / 2
	y := (termH - overlayH) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	dimBase := lipgloss.NewStyle().Faint(true).Render(base)

	baseLayer := lipgloss.NewLayer(dimBase).
		Width(termW).
		Height(termH)
	fgLayer := lipgloss.NewLayer(fg).
		Width(overlayW).
		Height(overlayH).
		X(x).
		Y(y)

	return lipgloss.NewCanvas(baseLayer, fgLayer).Render()
}
