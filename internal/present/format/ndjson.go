package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/stackshelf/pkg/api"
)

// NDJSONWriter writes one JSON object per line.
type NDJSONWriter struct{ enc *json.Encoder }

func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{enc: json.NewEncoder(w)}
}

func (nw *NDJSONWriter) WriteEssays(es api.Essays) error {
	for _, e := range es {
		if err := nw.enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

func (nw *NDJSONWriter) Close() error { return nil }
