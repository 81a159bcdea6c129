package essaylist

import "errors"

// ErrNoFormatToggle is returned when the hosting surface has no
// HTML/markdown toggle control.
var ErrNoFormatToggle = errors.New("format toggle not available")

// Button labels for the format toggle. The label names the link format
// currently shown.
const (
	LabelRendered = "Show HTML"
	LabelSource   = "Show Markdown"
)

// Mode is the link display mode.
type Mode int

const (
	ModeRendered Mode = iota // links point at html_link
	ModeSource               // links point at file_link
)

func (m Mode) String() string {
	if m == ModeRendered {
		return "rendered"
	}
	return "source"
}

// Controls describes which optional controls the hosting surface has.
// Older pages were published without the format toggle.
type Controls struct {
	FormatToggle bool
}

// ToggleState is the list's interactive state.
type ToggleState struct {
	DateAscending  bool
	LikesAscending bool
	ShowRendered   bool
}

// InitialState picks the starting state for the given controls. Sort flags
// start ascending so the first click on either sort control flips them and
// orders descending. Without a format toggle the list shows source links.
func InitialState(c Controls) ToggleState {
	return ToggleState{
		DateAscending:  true,
		LikesAscending: true,
		ShowRendered:   c.FormatToggle,
	}
}

// Mode reports the current link display mode.
func (s ToggleState) Mode() Mode {
	if s.ShowRendered {
		return ModeRendered
	}
	return ModeSource
}

// ToggleFormat flips the link display mode.
func (s ToggleState) ToggleFormat() ToggleState {
	s.ShowRendered = !s.ShowRendered
	return s
}

// ToggleLabel returns the toggle button text for a display mode.
func ToggleLabel(showRendered bool) string {
	if showRendered {
		return LabelRendered
	}
	return LabelSource
}
