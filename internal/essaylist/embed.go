package essaylist

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mithrel/stackshelf/pkg/api"
)

// ParseEmbedded decodes the JSON array embedded in an author page (or held
// in a data file). Anything other than an array of essays is an error.
func ParseEmbedded(r io.Reader) (api.Essays, error) {
	br := bufio.NewReader(r)
	first, err := peekFirstNonSpace(br)
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("embedded essay data: empty")
		}
		return nil, fmt.Errorf("embedded essay data: %w", err)
	}
	if first != '[' {
		return nil, fmt.Errorf("embedded essay data: want JSON array, got %q", first)
	}
	var out api.Essays
	if err := json.NewDecoder(br).Decode(&out); err != nil {
		return nil, fmt.Errorf("embedded essay data: %w", err)
	}
	if out == nil {
		out = api.Essays{}
	}
	return out, nil
}

func peekFirstNonSpace(r *bufio.Reader) (byte, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b == ' ' || b == '\n' || b == '\r' || b == '\t' {
			continue
		}
		if err := r.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}
