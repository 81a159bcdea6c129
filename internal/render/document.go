package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/mithrel/stackshelf/pkg/api"
)

// StylesheetPath is where essay pages expect the shared stylesheet,
// relative to the output root.
const StylesheetPath = "assets/css/essay-styles.css"

type frontMatter struct {
	Title     string `yaml:"title"`
	Subtitle  string `yaml:"subtitle,omitempty"`
	Date      string `yaml:"date"`
	Likes     int    `yaml:"likes"`
	SourceURL string `yaml:"source_url,omitempty"`
}

// ComposeMarkdown writes the markdown file for one essay: YAML frontmatter,
// then a readable heading block, then body.
func ComposeMarkdown(e api.Essay, body string) (string, error) {
	fm, err := yaml.Marshal(frontMatter{
		Title:     e.Title,
		Subtitle:  e.Subtitle,
		Date:      e.Date,
		Likes:     e.LikeCount,
		SourceURL: e.SourceURL,
	})
	if err != nil {
		return "", fmt.Errorf("frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString(HeadingBlock(e))
	b.WriteString(body)
	return b.String(), nil
}

// HeadingBlock is the title, subtitle, date and likes lines that open every
// essay's markdown.
func HeadingBlock(e api.Essay) string {
	var b strings.Builder
	b.WriteString("# " + e.Title + "\n\n")
	if e.Subtitle != "" {
		b.WriteString("## " + e.Subtitle + "\n\n")
	}
	b.WriteString("**" + e.Date + "**\n\n")
	b.WriteString("**Likes:** " + strconv.Itoa(e.LikeCount) + "\n\n")
	return b.String()
}

// ParseMarkdown reads a file written by ComposeMarkdown back into an essay
// and its body (heading block included). Link fields are left empty.
func ParseMarkdown(r io.Reader) (api.Essay, []byte, error) {
	var fm frontMatter
	rest, err := frontmatter.Parse(r, &fm)
	if err != nil {
		return api.Essay{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if fm.Title == "" {
		return api.Essay{}, nil, fmt.Errorf("parse frontmatter: missing title")
	}
	if fm.Likes < 0 {
		return api.Essay{}, nil, fmt.Errorf("parse frontmatter: negative likes %d", fm.Likes)
	}
	return api.Essay{
		Title:     fm.Title,
		Subtitle:  fm.Subtitle,
		Date:      fm.Date,
		LikeCount: fm.Likes,
		SourceURL: fm.SourceURL,
	}, bytes.TrimLeft(rest, "\n"), nil
}

var pageTmpl = template.Must(template.New("essay").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="{{.CSS}}">
</head>
<body>
    <main class="markdown-content">
{{.Body}}
    </main>
</body>
</html>
`))

// WrapHTML writes a standalone page around an HTML fragment. cssPath is
// the stylesheet link as seen from the page, see RelativeStylesheet.
func WrapHTML(w io.Writer, title, body, cssPath string) error {
	if title == "" {
		title = "Markdown Content"
	}
	return pageTmpl.Execute(w, struct {
		Title string
		CSS   string
		Body  template.HTML
	}{title, cssPath, template.HTML(body)})
}

// RelativeStylesheet returns the link from a page inside pageDir to the
// stylesheet under root, always with forward slashes.
func RelativeStylesheet(root, pageDir string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	absDir, err := filepath.Abs(pageDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absDir, filepath.Join(absRoot, StylesheetPath))
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
