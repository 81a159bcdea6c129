package page

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/stackshelf/internal/essaylist"
	"github.com/mithrel/stackshelf/pkg/api"
)

func sample() api.Essays {
	return api.Essays{
		{Title: "Winter", Date: "2023-01-01", LikeCount: 5, FileLink: "md/w/winter.md", HTMLLink: "html/w/winter.html"},
		{Title: "</script><b>", Date: "2023-06-01", LikeCount: 1, FileLink: "md/w/x.md", HTMLLink: "html/w/x.html"},
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "The Fitzwilliam", DisplayName("the-fitzwilliam"))
	assert.Equal(t, "Astral Codex", DisplayName("astral_codex"))
}

func TestLinkPrefix(t *testing.T) {
	root := t.TempDir()
	p, err := LinkPrefix(root, filepath.Join(root, "substack_html_pages"))
	require.NoError(t, err)
	assert.Equal(t, "../", p)

	p, err = LinkPrefix(root, root)
	require.NoError(t, err)
	assert.Equal(t, "", p)
}

func TestEmbedJSONCannotCloseScript(t *testing.T) {
	b, err := EmbedJSON(sample())
	require.NoError(t, err)
	assert.NotContains(t, string(b), "</script>")
	assert.Contains(t, string(b), `\u003c/script\u003e`)

	back, err := essaylist.ParseEmbedded(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, sample(), back)
}

func TestGenerateDefaultTemplate(t *testing.T) {
	root := t.TempDir()
	out, err := Generate(Options{
		Author:       "w",
		Essays:       sample(),
		OutDir:       filepath.Join(root, "substack_html_pages"),
		Root:         root,
		FormatToggle: true,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "substack_html_pages", "w.html"), out)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	html := string(raw)

	assert.Equal(t, 1, strings.Count(html, "</script>\n    <script>"), "data script followed by the inline script")
	assert.Contains(t, html, `<h1>W</h1>`)
	assert.Contains(t, html, `href="../html/w/winter.html"`, "initial render shows rendered links")
	assert.Contains(t, html, `id="toggle-format" type="button">Show HTML</button>`)
	assert.Contains(t, html, `href="../assets/css/essay-styles.css"`)
	assert.Equal(t, 2, strings.Count(html, "<li>\n"))

	start := strings.Index(html, `id="essaysData">`) + len(`id="essaysData">`)
	end := strings.Index(html[start:], "</script>")
	back, err := essaylist.ParseEmbedded(strings.NewReader(html[start : start+end]))
	require.NoError(t, err)
	assert.Equal(t, sample(), back)
}

func TestGenerateWithoutToggle(t *testing.T) {
	root := t.TempDir()
	var b bytes.Buffer
	require.NoError(t, Render(&b, Options{Author: "w", Essays: sample(), OutDir: root, Root: root}))
	html := b.String()
	assert.NotContains(t, html, "toggle-format\" type")
	assert.Contains(t, html, `href="md/w/winter.md"`)
}

func TestRenderServerActions(t *testing.T) {
	var b bytes.Buffer
	dir := t.TempDir()
	require.NoError(t, Render(&b, Options{Author: "w", Essays: sample(), OutDir: dir, Root: dir, FormatToggle: true, Actions: "/authors/w"}))
	html := b.String()
	assert.Contains(t, html, `action="/authors/w/sort/date"`)
	assert.Contains(t, html, `action="/authors/w/toggle"`)
	assert.NotContains(t, html, "addEventListener")
}

func TestLegacyTemplate(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "author_template.html")
	require.NoError(t, os.WriteFile(tmpl, []byte(`<html><h1><!-- AUTHOR_NAME --></h1>
<script type="application/json" id="essaysData"></script>
<script src="../assets/js/author_name.js"></script></html>`), 0o644))

	out, err := Generate(Options{Author: "w", Essays: sample(), OutDir: dir, TemplatePath: tmpl})
	require.NoError(t, err)
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	html := string(raw)
	assert.Contains(t, html, "<h1>w</h1>")
	assert.Contains(t, html, `<script src="../assets/js/w.js">`)
	assert.Contains(t, html, `"like_count": 5`)
	assert.NotContains(t, html, `id="essaysData"></script>`)
}

func TestCustomTemplate(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "custom.html")
	require.NoError(t, os.WriteFile(tmpl, []byte(`<p>{{.DisplayName}} ({{.Label}})</p>{{.List}}`), 0o644))

	var b bytes.Buffer
	require.NoError(t, Render(&b, Options{Author: "w", Essays: sample(), OutDir: dir, Root: dir, TemplatePath: tmpl, FormatToggle: true}))
	assert.True(t, strings.HasPrefix(b.String(), "<p>W (Show HTML)</p><ol"))
}

func TestGenerateRequiresAuthor(t *testing.T) {
	_, err := Generate(Options{OutDir: t.TempDir()})
	assert.Error(t, err)
}
