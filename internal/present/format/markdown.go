package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/mithrel/stackshelf/pkg/api"
)

func newTermRenderer() (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(100),
	)
}

// MarkdownWriter collects essays and renders them as one glamour table on
// Close; table column widths depend on every row.
type MarkdownWriter struct {
	w    io.Writer
	opts Options
	b    strings.Builder
	rows int
}

func NewMarkdownWriter(w io.Writer, opts Options) *MarkdownWriter {
	mw := &MarkdownWriter{w: w, opts: opts}
	mw.b.WriteString("| Date | Likes | Title | Link |\n|---|---:|---|---|\n")
	return mw
}

func (mw *MarkdownWriter) WriteEssays(es api.Essays) error {
	for _, e := range es {
		title := cell(e.Title)
		if e.Subtitle != "" {
			title += " *" + cell(e.Subtitle) + "*"
		}
		fmt.Fprintf(&mw.b, "| %s | %d | %s | %s |\n", cell(e.Date), e.LikeCount, title, cell(mw.opts.link(e)))
		mw.rows++
	}
	return nil
}

func (mw *MarkdownWriter) Close() error {
	src := mw.b.String()
	if mw.rows == 0 {
		src = "_No essays._\n"
	}
	r, err := newTermRenderer()
	if err != nil {
		return err
	}
	out, err := r.Render(src)
	if err != nil {
		return err
	}
	_, err = io.WriteString(mw.w, out)
	return err
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// WritePrettyEssay renders one essay's markdown file for the terminal.
func WritePrettyEssay(w io.Writer, e api.Essay, body string) error {
	r, err := newTermRenderer()
	if err != nil {
		return err
	}
	if strings.TrimSpace(body) == "" {
		body = fmt.Sprintf("# %s\n\n%s\n\n**%s** · %d likes\n", e.Title, e.Subtitle, e.Date, e.LikeCount)
	}
	out, err := r.Render(body)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
