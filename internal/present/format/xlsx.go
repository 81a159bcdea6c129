package format

import (
	"errors"

	"github.com/xuri/excelize/v2"

	"github.com/mithrel/stackshelf/pkg/api"
)

const sheet = "Sheet1"

// XLSXWriter streams rows into a workbook saved to path on Close. Likes
// are written as numbers so spreadsheets can sort on them.
type XLSXWriter struct {
	f    *excelize.File
	sw   *excelize.StreamWriter
	path string
	opts Options
	row  int
}

func NewXLSXWriter(path string, opts Options) (*XLSXWriter, error) {
	if path == "" {
		return nil, errors.New("xlsx output needs a file path")
	}
	f := excelize.NewFile()
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	xw := &XLSXWriter{f: f, sw: sw, path: path, opts: opts, row: 1}
	if opts.Headers {
		hdr := make([]interface{}, len(header))
		for i, h := range header {
			hdr[i] = h
		}
		if err := xw.setRow(hdr); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return xw, nil
}

func (xw *XLSXWriter) setRow(values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, xw.row)
	if err != nil {
		return err
	}
	if err := xw.sw.SetRow(cell, values); err != nil {
		return err
	}
	xw.row++
	return nil
}

func (xw *XLSXWriter) WriteEssays(es api.Essays) error {
	for _, e := range es {
		if err := xw.setRow([]interface{}{e.Date, e.LikeCount, e.Title, e.Subtitle, xw.opts.link(e)}); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the stream and saves the workbook.
func (xw *XLSXWriter) Close() error {
	defer xw.f.Close()
	if err := xw.sw.Flush(); err != nil {
		return err
	}
	return xw.f.SaveAs(xw.path)
}
