package format

import (
	"strconv"
	"strings"

	"github.com/mithrel/stackshelf/pkg/api"
)

// Writer receives essays in batches. Close finishes the output; nothing
// is guaranteed to be written before it returns.
type Writer interface {
	WriteEssays(es api.Essays) error
	Close() error
}

// Options shared by the writers.
type Options struct {
	Headers bool
	Indent  bool
	// ShowRendered picks html_link over file_link for the link column.
	ShowRendered bool
}

// columns: date, likes, title, subtitle, link
var header = []string{"date", "likes", "title", "subtitle", "link"}

func (o Options) link(e api.Essay) string {
	if o.ShowRendered {
		return e.HTMLLink
	}
	return e.FileLink
}

func (o Options) row(e api.Essay) []string {
	return []string{e.Date, strconv.Itoa(e.LikeCount), e.Title, e.Subtitle, o.link(e)}
}

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}
