package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"
)

// filterModal asks for a fuzzy title filter.
type filterModal struct {
	input  textinput.Model
	width  int
	height int
	padX   int
	padY   int
	box    lipglossv2.Style
}

func newFilterModal(value string, termW, termH int) *filterModal {
	m := &filterModal{padX: 2, padY: 1}
	m.input = textinput.New()
	m.input.Prompt = "title: "
	m.input.Placeholder = "fuzzy match"
	m.input.SetValue(value)
	m.resizeForTerm(termW, termH)
	return m
}

func (m *filterModal) resizeForTerm(termW, termH int) {
	if termW <= 0 || termH <= 0 {
		termW, termH = 80, 24
	}
	w := int(float64(termW) * 0.6)
	if termW < 80 {
		w = termW - 4
	}
	if w < 40 {
		w = max(36, termW-2)
	}
	if w > 80 {
		w = 80
	}
	m.width, m.height = w, 7
	m.box = lipglossv2.NewStyle().
		Width(w).
		Height(m.height).
		Padding(m.padY, m.padX).
		Border(lipglossv2.RoundedBorder()).
		BorderForeground(lipglossv2.Color("63"))

	innerW := w - 2 - m.padX*2
	m.input.Width = max(12, innerW-lipgloss.Width(m.input.Prompt))
}

func (m *filterModal) update(msg tea.Msg) (*filterModal, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *filterModal) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("Filter")
	help := lipgloss.NewStyle().Faint(true).Render("enter=apply • esc=cancel • ctrl+x=clear")
	return m.box.Render(header + "\n\n" + m.input.View() + "\n\n" + help)
}
