package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/stackshelf/internal/essaylist"
	"github.com/mithrel/stackshelf/internal/util"
	"github.com/mithrel/stackshelf/pkg/api"
)

// Options for the interactive list.
type Options struct {
	Title   string
	Headers bool
	Filter  string
}

// Run opens an interactive table over the controller's list. The essay
// selected with enter is returned, or nil when the user quits.
func Run(ctx context.Context, c *essaylist.Controller, opts Options) (*api.Essay, error) {
	m := newModel(c, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	if fm, ok := final.(model); ok && fm.selected != nil {
		return fm.selected, nil
	}
	return nil, nil
}

type model struct {
	ctrl     *essaylist.Controller
	table    table.Model
	title    string
	headers  bool
	filter   string
	shown    api.Essays
	selected *api.Essay
	modal    *filterModal
	help     bool
	status   string
	width    int
	height   int
}

func newModel(c *essaylist.Controller, opts Options) model {
	m := model{ctrl: c, title: opts.Title, headers: opts.Headers, filter: opts.Filter}
	m.table = table.New(table.WithColumns(m.columnsFor(12, 6, 40, 30)), table.WithFocused(true))
	m.updateRows()
	m.applyStyles()
	return m
}

// updateRows rebuilds the rows from the controller's current order,
// keeping only essays whose title matches the filter.
func (m *model) updateRows() {
	essays := m.ctrl.Essays()
	if m.filter != "" {
		titles := make([]string, len(essays))
		for i, e := range essays {
			titles[i] = e.Title
		}
		// keep display order; the fuzzy ranking only decides membership
		keep := make(map[int]bool)
		for _, i := range util.FuzzyFilter(m.filter, titles) {
			keep[i] = true
		}
		filtered := essays[:0]
		for i, e := range essays {
			if keep[i] {
				filtered = append(filtered, e)
			}
		}
		essays = filtered
	}
	m.shown = essays
	rendered := m.ctrl.State().ShowRendered
	rows := make([]table.Row, 0, len(essays))
	for _, e := range essays {
		link := e.FileLink
		if rendered {
			link = e.HTMLLink
		}
		rows = append(rows, table.Row{e.Date, fmt.Sprint(e.LikeCount), e.Title, link})
	}
	m.table.SetRows(rows)
	if cur := m.table.Cursor(); cur >= len(rows) || cur < 0 {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.applyLayout()
		if m.modal != nil {
			m.modal.resizeForTerm(ws.Width, ws.Height)
		}
		return m, nil
	}
	if m.modal != nil {
		return m.updateModal(msg)
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	if m.help {
		// any key closes help
		m.help = false
		return m, nil
	}
	switch key.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "enter":
		idx := m.table.Cursor()
		if idx >= 0 && idx < len(m.shown) {
			sel := m.shown[idx]
			m.selected = &sel
		}
		return m, tea.Quit
	case "d":
		m.ctrl.ClickSortDate()
		m.status = "date " + direction(m.ctrl.State().DateAscending, "oldest first", "newest first")
		m.updateRows()
		return m, nil
	case "l":
		m.ctrl.ClickSortLikes()
		m.status = "likes " + direction(m.ctrl.State().LikesAscending, "fewest first", "most first")
		m.updateRows()
		return m, nil
	case "f":
		label, err := m.ctrl.ClickToggleFormat()
		switch {
		case errors.Is(err, essaylist.ErrNoFormatToggle):
			m.status = "this list only has markdown links"
		case err != nil:
			m.status = err.Error()
		default:
			m.status = label
		}
		m.updateRows()
		return m, nil
	case "/":
		m.modal = newFilterModal(m.filter, m.width, m.height)
		return m, m.modal.input.Focus()
	case "?":
		m.help = true
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "ctrl+c":
			m.modal = nil
			return m, nil
		case "enter":
			m.filter = strings.TrimSpace(m.modal.input.Value())
			m.modal = nil
			m.table.SetCursor(0)
			m.updateRows()
			return m, nil
		case "ctrl+x":
			m.modal.input.SetValue("")
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.modal, cmd = m.modal.update(msg)
	return m, cmd
}

func direction(ascending bool, asc, desc string) string {
	if ascending {
		return asc
	}
	return desc
}

func (m model) renderFooter() string {
	left := "d=date • l=likes • f=format • /=filter • enter=open • ?=help • q=exit"

	var right string
	if m.status != "" {
		right = m.status + " • "
	}
	if m.filter != "" {
		right += fmt.Sprintf("%d/%d essays ", len(m.shown), m.ctrl.Len())
	} else {
		right += fmt.Sprintf("%d essays ", len(m.shown))
	}

	space := m.table.Width() - lipgloss.Width(left) - lipgloss.Width(right)
	if space < 1 {
		space = 1
	}
	return left + strings.Repeat(" ", space) + right
}

func (m model) View() string {
	var b strings.Builder
	if m.title != "" {
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.title) + "\n")
	}
	if len(m.shown) == 0 {
		b.WriteString("(no essays)\n")
	} else {
		b.WriteString(m.table.View() + "\n")
	}
	b.WriteString(m.renderFooter() + "\n")
	base := b.String()

	switch {
	case m.modal != nil:
		return m.renderOverlay(base, m.modal.View(), m.modal.width, m.modal.height)
	case m.help:
		fg := helpBox()
		return m.renderOverlay(base, fg, lipgloss.Width(fg), lipgloss.Height(fg))
	}
	return base
}

func (m *model) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	reserved := 1
	if m.title != "" {
		reserved++
	}
	m.table.SetHeight(max(4, m.height-reserved))
	m.table.SetWidth(m.width)
	avail := m.width - 8
	if avail < 40 {
		return
	}
	dateW, likesW := 12, 6
	rem := avail - dateW - likesW
	linkW := rem * 2 / 5
	titleW := rem - linkW
	m.table.SetColumns(m.columnsFor(dateW, likesW, titleW, linkW))
}

func (m *model) applyStyles() {
	s := table.DefaultStyles()
	if m.headers {
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
	} else {
		s.Header = s.Header.
			BorderBottom(false).
			Bold(false)
	}
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	m.table.SetStyles(s)
}

func (m *model) columnsFor(dateW, likesW, titleW, linkW int) []table.Column {
	titles := []string{"", "", "", ""}
	if m.headers {
		titles = []string{"Date", "Likes", "Title", "Link"}
	}
	return []table.Column{
		{Title: titles[0], Width: dateW},
		{Title: titles[1], Width: likesW},
		{Title: titles[2], Width: titleW},
		{Title: titles[3], Width: linkW},
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
