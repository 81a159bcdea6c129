package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/stackshelf/internal/essaylist"
	"github.com/mithrel/stackshelf/pkg/api"
)

func essays() api.Essays {
	return api.Essays{
		{Title: "Winter", LikeCount: 5, Date: "Jan 1, 2023", FileLink: "md/winter.md", HTMLLink: "html/winter.html"},
		{Title: "Summer", LikeCount: 1, Date: "Jun 1, 2023", FileLink: "md/summer.md", HTMLLink: "html/summer.html"},
		{Title: "Autumn", LikeCount: 9, Date: "Oct 1, 2022", FileLink: "md/autumn.md", HTMLLink: "html/autumn.html"},
	}
}

func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func shownTitles(m model) []string {
	out := make([]string, len(m.shown))
	for i, e := range m.shown {
		out[i] = e.Title
	}
	return out
}

func TestKeysDriveController(t *testing.T) {
	m := newModel(essaylist.New(essays(), essaylist.Controls{FormatToggle: true}), Options{Headers: true})
	assert.Equal(t, []string{"Winter", "Summer", "Autumn"}, shownTitles(m))

	m = press(t, m, "d")
	assert.Equal(t, []string{"Summer", "Winter", "Autumn"}, shownTitles(m))
	assert.Contains(t, m.status, "newest first")

	m = press(t, m, "d")
	assert.Equal(t, []string{"Autumn", "Winter", "Summer"}, shownTitles(m))

	m = press(t, m, "l")
	assert.Equal(t, []string{"Autumn", "Winter", "Summer"}, shownTitles(m))
	assert.Contains(t, m.status, "most first")
}

func TestFormatKeyChangesLinkColumn(t *testing.T) {
	m := newModel(essaylist.New(essays(), essaylist.Controls{FormatToggle: true}), Options{})
	assert.Equal(t, "html/winter.html", m.table.Rows()[0][3])

	m = press(t, m, "f")
	assert.Equal(t, "md/winter.md", m.table.Rows()[0][3])
	assert.Equal(t, essaylist.LabelSource, m.status)

	legacy := newModel(essaylist.New(essays(), essaylist.Controls{}), Options{})
	legacy = press(t, legacy, "f")
	assert.Equal(t, "md/winter.md", legacy.table.Rows()[0][3])
	assert.Contains(t, legacy.status, "markdown")
}

func TestFilterModal(t *testing.T) {
	m := newModel(essaylist.New(essays(), essaylist.Controls{}), Options{})
	m = press(t, m, "/")
	require.NotNil(t, m.modal)
	m = press(t, m, "s", "u", "m", "enter")
	assert.Nil(t, m.modal)
	assert.Equal(t, "sum", m.filter)
	assert.Equal(t, []string{"Summer"}, shownTitles(m))

	// sorting keeps the filter
	m = press(t, m, "l")
	assert.Equal(t, []string{"Summer"}, shownTitles(m))
	assert.Contains(t, m.renderFooter(), "1/3 essays")

	m = press(t, m, "/", "esc")
	assert.Nil(t, m.modal)
	assert.Equal(t, "sum", m.filter)
}

func TestEnterSelects(t *testing.T) {
	m := newModel(essaylist.New(essays(), essaylist.Controls{}), Options{})
	m = press(t, m, "l", "enter")
	require.NotNil(t, m.selected)
	assert.Equal(t, "Autumn", m.selected.Title)
}

func TestHelpClosesOnAnyKey(t *testing.T) {
	m := newModel(essaylist.New(essays(), essaylist.Controls{}), Options{})
	m = press(t, m, "?")
	assert.True(t, m.help)
	m = press(t, m, "d")
	assert.False(t, m.help)
	assert.Empty(t, m.status, "key that closes help is not applied")
}

func TestEmptyView(t *testing.T) {
	m := newModel(essaylist.New(nil, essaylist.Controls{}), Options{Title: "nobody"})
	assert.Contains(t, m.View(), "(no essays)")
}
