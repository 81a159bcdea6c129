package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/stackshelf/pkg/api"
)

// JSONWriter incrementally writes essays as one JSON array.
type JSONWriter struct {
	w        io.Writer
	indent   bool
	wroteAny bool
}

func NewJSONWriter(w io.Writer, opts Options) *JSONWriter {
	return &JSONWriter{w: w, indent: opts.Indent}
}

func (jw *JSONWriter) WriteEssays(es api.Essays) error {
	for _, e := range es {
		var (
			b   []byte
			err error
		)
		if jw.indent {
			b, err = json.MarshalIndent(e, "  ", "  ")
		} else {
			b, err = json.Marshal(e)
		}
		if err != nil {
			return err
		}
		sep := ","
		if !jw.wroteAny {
			sep = "["
		}
		if jw.indent {
			sep += "\n  "
		}
		if _, err := io.WriteString(jw.w, sep); err != nil {
			return err
		}
		if _, err := jw.w.Write(b); err != nil {
			return err
		}
		jw.wroteAny = true
	}
	return nil
}

// Close finishes the array.
func (jw *JSONWriter) Close() error {
	switch {
	case !jw.wroteAny:
		_, err := io.WriteString(jw.w, "[]\n")
		return err
	case jw.indent:
		_, err := io.WriteString(jw.w, "\n]\n")
		return err
	default:
		_, err := io.WriteString(jw.w, "]\n")
		return err
	}
}
