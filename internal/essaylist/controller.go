package essaylist

import (
	"html/template"
	"io"
	"sync"

	"github.com/mithrel/stackshelf/pkg/api"
)

// Controller owns one list: the original essays, the order currently shown,
// and the toggle state. Each Click method is one user click; calls are
// serialized so concurrent clicks behave as if queued on a single UI thread.
type Controller struct {
	mu       sync.Mutex
	original api.Essays
	working  api.Essays
	state    ToggleState
	controls Controls
	renderer Renderer
}

// Option configures a Controller.
type Option func(*Controller)

// WithLinkPrefix prefixes every rendered link.
func WithLinkPrefix(prefix string) Option {
	return func(c *Controller) { c.renderer.LinkPrefix = prefix }
}

// New returns a Controller showing essays in their original order. The
// controls decide the initial display mode once, here.
func New(essays api.Essays, controls Controls, opts ...Option) *Controller {
	c := &Controller{
		original: essays.Clone(),
		working:  essays.Clone(),
		state:    InitialState(controls),
		controls: controls,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Render writes the list as currently ordered and displayed.
func (c *Controller) Render(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderer.Render(w, c.working, c.state.ShowRendered)
}

// HTML is Render as template.HTML.
func (c *Controller) HTML() (template.HTML, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return RenderString(c.renderer, c.working, c.state.ShowRendered)
}

// ClickSortDate sorts a fresh copy of the original essays by date.
func (c *Controller) ClickSortDate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state, c.working = SortByDate(c.state, c.original.Clone())
}

// ClickSortLikes sorts a fresh copy of the original essays by likes.
func (c *Controller) ClickSortLikes() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state, c.working = SortByLikes(c.state, c.original.Clone())
}

// ClickToggleFormat flips the link format, keeping the current order, and
// returns the new button label.
func (c *Controller) ClickToggleFormat() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.controls.FormatToggle {
		return "", ErrNoFormatToggle
	}
	c.state = c.state.ToggleFormat()
	return ToggleLabel(c.state.ShowRendered), nil
}

// State returns the current toggle state.
func (c *Controller) State() ToggleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Controls returns the controls the Controller was created with.
func (c *Controller) Controls() Controls {
	return c.controls
}

// Label returns the format toggle label for the current state.
func (c *Controller) Label() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ToggleLabel(c.state.ShowRendered)
}

// Essays returns a copy of the essays in display order.
func (c *Controller) Essays() api.Essays {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.working.Clone()
}

// Len returns the number of essays.
func (c *Controller) Len() int {
	return len(c.original)
}
