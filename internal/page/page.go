// Package page builds author pages: a list of an author's essays with
// sort controls, the essay index embedded as JSON, and an initial
// server-side render of the list.
package page

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mithrel/stackshelf/internal/essaylist"
	"github.com/mithrel/stackshelf/internal/render"
	"github.com/mithrel/stackshelf/pkg/api"
)

//go:embed templates/*.html
var tmplFS embed.FS

var defaultTmpl = template.Must(template.ParseFS(tmplFS, "templates/author.html"))

// Placeholders understood in legacy templates.
const (
	legacyAuthorMarker = "<!-- AUTHOR_NAME -->"
	legacyDataTag      = `<script type="application/json" id="essaysData"></script>`
	legacyAuthorWord   = "author_name"
)

// Options describes one author page.
type Options struct {
	Author string
	Essays api.Essays
	// OutDir receives <Author>.html.
	OutDir string
	// Root is the directory essay links are relative to. Defaults to ".".
	Root string
	// TemplatePath overrides the embedded template. Templates holding the
	// legacy placeholders are filled by substitution.
	TemplatePath string
	FormatToggle bool
	// Actions, when set, is the URL prefix for server-side sort and
	// toggle forms. Static pages leave it empty.
	Actions string
}

// Data is what page templates execute against.
type Data struct {
	Author        string
	DisplayName   string
	Data          template.JS
	List          template.HTML
	Label         string
	LabelRendered string
	LabelSource   string
	FormatToggle  bool
	LinkPrefix    string
	Stylesheet    string
	Actions       string
}

// DisplayName turns an author slug into a heading.
func DisplayName(author string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(author)
	return cases.Title(language.English).String(s)
}

// OutputPath is where Generate writes the page.
func OutputPath(outDir, author string) string {
	return filepath.Join(outDir, author+".html")
}

// LinkPrefix is the prefix that makes root-relative essay links work from
// a page in outDir.
func LinkPrefix(root, outDir string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absOut, absRoot)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel) + "/", nil
}

// EmbedJSON encodes essays for a script element. <, > and & are escaped
// so the data cannot close the element.
func EmbedJSON(essays api.Essays) ([]byte, error) {
	if essays == nil {
		essays = api.Essays{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	enc.SetIndent("", "    ")
	if err := enc.Encode(essays); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// NewData builds template data. The list is rendered by a fresh controller
// so it matches what a first visit shows.
func NewData(opts Options) (Data, error) {
	if opts.Root == "" {
		opts.Root = "."
	}
	prefix, err := LinkPrefix(opts.Root, opts.OutDir)
	if err != nil {
		return Data{}, err
	}
	css, err := render.RelativeStylesheet(opts.Root, opts.OutDir)
	if err != nil {
		return Data{}, err
	}
	blob, err := EmbedJSON(opts.Essays)
	if err != nil {
		return Data{}, err
	}
	ctl := essaylist.New(opts.Essays, essaylist.Controls{FormatToggle: opts.FormatToggle}, essaylist.WithLinkPrefix(prefix))
	list, err := ctl.HTML()
	if err != nil {
		return Data{}, err
	}
	return Data{
		Author:        opts.Author,
		DisplayName:   DisplayName(opts.Author),
		Data:          template.JS(blob),
		List:          list,
		Label:         ctl.Label(),
		LabelRendered: essaylist.LabelRendered,
		LabelSource:   essaylist.LabelSource,
		FormatToggle:  opts.FormatToggle,
		LinkPrefix:    prefix,
		Stylesheet:    css,
		Actions:       opts.Actions,
	}, nil
}

// Execute writes the page for d with the embedded template.
func Execute(w io.Writer, d Data) error {
	return defaultTmpl.Execute(w, d)
}

// Render writes the page for opts to w.
func Render(w io.Writer, opts Options) error {
	if opts.TemplatePath != "" {
		raw, err := os.ReadFile(opts.TemplatePath)
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}
		if IsLegacy(raw) {
			out, err := FillLegacy(raw, opts.Author, opts.Essays)
			if err != nil {
				return err
			}
			_, err = w.Write(out)
			return err
		}
		t, err := template.New(filepath.Base(opts.TemplatePath)).Parse(string(raw))
		if err != nil {
			return fmt.Errorf("parse template: %w", err)
		}
		d, err := NewData(opts)
		if err != nil {
			return err
		}
		return t.Execute(w, d)
	}
	d, err := NewData(opts)
	if err != nil {
		return err
	}
	return Execute(w, d)
}

// Generate writes <OutDir>/<Author>.html and returns its path.
func Generate(opts Options) (string, error) {
	if strings.TrimSpace(opts.Author) == "" {
		return "", fmt.Errorf("page: author is required")
	}
	var buf bytes.Buffer
	if err := Render(&buf, opts); err != nil {
		return "", fmt.Errorf("page %s: %w", opts.Author, err)
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return "", err
	}
	out := OutputPath(opts.OutDir, opts.Author)
	tmp := out + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return out, os.Rename(tmp, out)
}

// IsLegacy reports whether tmpl uses the placeholder format.
func IsLegacy(tmpl []byte) bool {
	return bytes.Contains(tmpl, []byte(legacyAuthorMarker)) || bytes.Contains(tmpl, []byte(legacyDataTag))
}

// FillLegacy substitutes the author name and essay data into a legacy
// template. Pages built this way have no format toggle.
func FillLegacy(tmpl []byte, author string, essays api.Essays) ([]byte, error) {
	blob, err := EmbedJSON(essays)
	if err != nil {
		return nil, err
	}
	filled := `<script type="application/json" id="essaysData">` + string(blob) + `</script>`
	s := string(tmpl)
	s = strings.ReplaceAll(s, legacyAuthorMarker, author)
	s = strings.ReplaceAll(s, legacyDataTag, filled)
	s = strings.ReplaceAll(s, legacyAuthorWord, author)
	return []byte(s), nil
}
