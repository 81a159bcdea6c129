package util

import (
	"strings"
	"time"
)

// dateLayouts are tried in order. Substack prints "Mar 14, 2023" on post
// pages; data files written by other tools may carry ISO dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan. 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// ParseDate parses an essay date. The returned time is UTC for layouts
// without a zone. ok is false when no layout matches.
func ParseDate(s string) (t time.Time, ok bool) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
