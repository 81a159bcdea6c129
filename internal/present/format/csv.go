package format

import (
	"encoding/csv"
	"io"

	"github.com/mithrel/stackshelf/pkg/api"
)

// CSVWriter writes RFC 4180 rows with the plain columns.
type CSVWriter struct {
	w           *csv.Writer
	opts        Options
	wroteHeader bool
}

func NewCSVWriter(w io.Writer, opts Options) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w), opts: opts}
}

func (cw *CSVWriter) WriteEssays(es api.Essays) error {
	if cw.opts.Headers && !cw.wroteHeader {
		if err := cw.w.Write(header); err != nil {
			return err
		}
		cw.wroteHeader = true
	}
	for _, e := range es {
		if err := cw.w.Write(cw.opts.row(e)); err != nil {
			return err
		}
	}
	cw.w.Flush()
	return cw.w.Error()
}

func (cw *CSVWriter) Close() error {
	cw.w.Flush()
	return cw.w.Error()
}
