package present

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mithrel/stackshelf/internal/essaylist"
	"github.com/mithrel/stackshelf/internal/present/format"
	"github.com/mithrel/stackshelf/internal/present/tui"
	"github.com/mithrel/stackshelf/pkg/api"
)

type Mode int

const (
	ModePlain Mode = iota
	ModeJSON
	ModeNDJSON
	ModeMarkdown
	ModeHTML
	ModeCSV
	ModeXLSX
	ModeTUI
)

var modeNames = map[string]Mode{
	"plain":    ModePlain,
	"json":     ModeJSON,
	"ndjson":   ModeNDJSON,
	"markdown": ModeMarkdown,
	"pretty":   ModeMarkdown,
	"html":     ModeHTML,
	"csv":      ModeCSV,
	"xlsx":     ModeXLSX,
	"tui":      ModeTUI,
}

// ModeNames lists the accepted --output values.
func ModeNames() []string {
	return []string{"plain", "json", "ndjson", "markdown", "html", "csv", "xlsx", "tui"}
}

// ParseMode parses a string like "plain", "json", "csv", "tui".
func ParseMode(s string) (Mode, bool) {
	m, ok := modeNames[s]
	if !ok {
		return ModePlain, false
	}
	return m, true
}

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
	// ShowRendered selects html links for plain, csv, xlsx, markdown and html.
	ShowRendered bool
	LinkPrefix   string
	// OutPath is the workbook path for xlsx.
	OutPath string
	// PageSize bounds how many essays are handed to a writer at once.
	PageSize int
	// Title, Controls and Filter are used by the TUI.
	Title    string
	Controls essaylist.Controls
	Filter   string
	// Out receives the essay picked in the TUI.
	Out io.Writer
}

// RenderEssays renders essays in the order given according to options.
func RenderEssays(ctx context.Context, w io.Writer, essays api.Essays, opts Options) error {
	if opts.Mode == ModeTUI {
		return renderTUI(ctx, essays, opts)
	}
	fw, err := newWriter(w, opts)
	if err != nil {
		return err
	}
	size := opts.PageSize
	if size <= 0 {
		size = len(essays)
	}
	for start := 0; start < len(essays); start += size {
		if err := ctx.Err(); err != nil {
			_ = fw.Close()
			return err
		}
		end := min(start+size, len(essays))
		if err := fw.WriteEssays(essays[start:end]); err != nil {
			_ = fw.Close()
			return err
		}
	}
	return fw.Close()
}

func newWriter(w io.Writer, opts Options) (format.Writer, error) {
	fo := format.Options{Headers: opts.Headers, Indent: opts.JSONIndent, ShowRendered: opts.ShowRendered}
	switch opts.Mode {
	case ModePlain:
		return format.NewPlainWriter(w, fo), nil
	case ModeJSON:
		return format.NewJSONWriter(w, fo), nil
	case ModeNDJSON:
		return format.NewNDJSONWriter(w), nil
	case ModeMarkdown:
		return format.NewMarkdownWriter(w, fo), nil
	case ModeHTML:
		return format.NewHTMLWriter(w, fo, opts.LinkPrefix), nil
	case ModeCSV:
		return format.NewCSVWriter(w, fo), nil
	case ModeXLSX:
		return format.NewXLSXWriter(opts.OutPath, fo)
	default:
		return nil, fmt.Errorf("unsupported output mode %d", opts.Mode)
	}
}

func renderTUI(ctx context.Context, essays api.Essays, opts Options) error {
	ctrl := essaylist.New(essays, opts.Controls)
	sel, err := tui.Run(ctx, ctrl, tui.Options{Title: opts.Title, Headers: opts.Headers, Filter: opts.Filter})
	if err != nil {
		return err
	}
	if sel == nil {
		return nil
	}
	if opts.Out != nil {
		link := sel.FileLink
		if ctrl.State().ShowRendered {
			link = sel.HTMLLink
		}
		_, err = fmt.Fprintf(opts.Out, "%s\t%s\n", sel.Title, opts.LinkPrefix+link)
	}
	return err
}

// RenderEssay renders a single essay. body is the essay's markdown file
// content, used by the markdown mode; other modes print the record.
func RenderEssay(w io.Writer, e api.Essay, body string, opts Options) error {
	switch opts.Mode {
	case ModeMarkdown:
		return format.WritePrettyEssay(w, e, body)
	case ModeTUI:
		return errors.New("tui output not supported for a single essay")
	default:
		return RenderEssays(context.Background(), w, api.Essays{e}, opts)
	}
}
