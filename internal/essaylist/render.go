package essaylist

import (
	"html/template"
	"io"
	"strings"

	"github.com/mithrel/stackshelf/pkg/api"
)

var listTmpl = template.Must(template.New("list").Parse(`<ol class="essays">
{{- range .}}
  <li>
    <a href="{{.Href}}" target="_blank" rel="noopener">{{.Title}}</a>
    <div class="subtitle">{{.Subtitle}}</div>
    <div class="meta">{{.Likes}} likes · {{.Date}}</div>
  </li>
{{- end}}
</ol>
`))

type listItem struct {
	Href     string
	Title    string
	Subtitle string
	Likes    int
	Date     string
}

// Renderer writes the list markup. LinkPrefix is prepended to every link,
// for pages that live in a different directory than the one the data
// file's paths are relative to.
type Renderer struct {
	LinkPrefix string
}

// Render writes the full list for essays in the order given. Each item
// links to the essay's html_link when showRendered is set and to its
// file_link otherwise.
func (r Renderer) Render(w io.Writer, essays api.Essays, showRendered bool) error {
	items := make([]listItem, 0, len(essays))
	for _, e := range essays {
		href := e.FileLink
		if showRendered {
			href = e.HTMLLink
		}
		items = append(items, listItem{
			Href:     r.LinkPrefix + href,
			Title:    e.Title,
			Subtitle: e.Subtitle,
			Likes:    e.LikeCount,
			Date:     e.Date,
		})
	}
	return listTmpl.Execute(w, items)
}

// Render writes essays with the zero Renderer.
func Render(w io.Writer, essays api.Essays, showRendered bool) error {
	return Renderer{}.Render(w, essays, showRendered)
}

// RenderString is Render into a string, for templates that embed the list.
func RenderString(r Renderer, essays api.Essays, showRendered bool) (template.HTML, error) {
	var b strings.Builder
	if err := r.Render(&b, essays, showRendered); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}
