package format

import (
	"io"

	"github.com/mithrel/stackshelf/internal/essaylist"
	"github.com/mithrel/stackshelf/pkg/api"
)

// HTMLWriter writes the same <ol> fragment the author pages embed.
type HTMLWriter struct {
	w        io.Writer
	opts     Options
	renderer essaylist.Renderer
	essays   api.Essays
}

func NewHTMLWriter(w io.Writer, opts Options, linkPrefix string) *HTMLWriter {
	return &HTMLWriter{w: w, opts: opts, renderer: essaylist.Renderer{LinkPrefix: linkPrefix}}
}

func (hw *HTMLWriter) WriteEssays(es api.Essays) error {
	hw.essays = append(hw.essays, es...)
	return nil
}

func (hw *HTMLWriter) Close() error {
	return hw.renderer.Render(hw.w, hw.essays, hw.opts.ShowRendered)
}
