package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mithrel/stackshelf/internal/util"
)

// Essay is one archived post as it appears in an author's data file.
type Essay struct {
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	LikeCount int    `json:"like_count"`
	Date      string `json:"date"`
	FileLink  string `json:"file_link"`
	HTMLLink  string `json:"html_link"`
	SourceURL string `json:"source_url,omitempty"`
}

// Essays is an ordered list of essays.
type Essays []Essay

// Clone returns a copy that can be reordered without touching e.
func (e Essays) Clone() Essays {
	if e == nil {
		return nil
	}
	return append(Essays(nil), e...)
}

// Time parses Date into an instant. Unparseable dates return the zero time.
func (e Essay) Time() time.Time {
	t, _ := util.ParseDate(e.Date)
	return t
}

// UnmarshalJSON accepts like_count as a number or as a numeric string.
func (e *Essay) UnmarshalJSON(b []byte) error {
	type plain Essay
	aux := struct {
		*plain
		LikeCount json.RawMessage `json:"like_count"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	n, err := parseLikes(aux.LikeCount)
	if err != nil {
		return fmt.Errorf("essay %q: %w", e.Title, err)
	}
	e.LikeCount = n
	return nil
}

func parseLikes(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid like_count %s", raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative like_count %d", n)
	}
	return n, nil
}
