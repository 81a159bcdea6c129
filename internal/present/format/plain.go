package format

import (
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mithrel/stackshelf/pkg/api"
)

// PlainWriter writes aligned columns, flushing after each batch.
type PlainWriter struct {
	tw          *tabwriter.Writer
	opts        Options
	wroteHeader bool
}

func NewPlainWriter(w io.Writer, opts Options) *PlainWriter {
	return &PlainWriter{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0), opts: opts}
}

func (pw *PlainWriter) WriteEssays(es api.Essays) error {
	if pw.opts.Headers && !pw.wroteHeader {
		_, _ = io.WriteString(pw.tw, strings.Join(header, "\t")+"\n")
		pw.wroteHeader = true
	}
	for _, e := range es {
		cells := pw.opts.row(e)
		for i := range cells {
			cells[i] = esc(cells[i])
		}
		_, _ = io.WriteString(pw.tw, strings.Join(cells, "\t")+"\n")
	}
	return pw.tw.Flush()
}

func (pw *PlainWriter) Close() error {
	return pw.tw.Flush()
}
