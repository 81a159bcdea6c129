package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/stackshelf/internal/config"
	"github.com/mithrel/stackshelf/internal/datafile"
	"github.com/mithrel/stackshelf/internal/render"
	"github.com/mithrel/stackshelf/internal/scrape"
	"github.com/mithrel/stackshelf/pkg/api"
)

const postPage = `<html><body><article class="post">
<h1 class="post-title">%s</h1>
<h3 class="subtitle">A subtitle</h3>
<div class="post-date">%s</div>
<a class="post-ufi-button"><span class="label">%d</span></a>
<div class="available-content"><p>Hello <a href="https://example.com">world</a>.</p></div>
</article></body></html>`

func fakeSubstack(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var base string
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<url><loc>%[1]s/p/older</loc></url>
<url><loc>%[1]s/p/newer</loc></url></urlset>`, base)
	})
	mux.HandleFunc("/p/older", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, postPage, "Older Post", "Jan 2, 2023", 40)
	})
	mux.HandleFunc("/p/newer", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, postPage, "Newer Post", "Mar 4, 2024", 7)
	})
	ts := httptest.NewServer(mux)
	base = ts.URL
	t.Cleanup(ts.Close)
	return ts
}

// setup writes a config that keeps every path inside a temp root.
func setup(t *testing.T, extra string) (cfgPath, root string) {
	t.Helper()
	root = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "xdg"))
	esc := func(p string) string { return strings.ReplaceAll(p, `\`, `\\`) }
	content := fmt.Sprintf(`root = "%s"
md_dir = "%s"
html_dir = "%s"
data_dir = "%s"
%s
[scrape]
delay = "0s"
`, esc(root), esc(filepath.Join(root, "md")), esc(filepath.Join(root, "html")), esc(filepath.Join(root, "data")), extra)
	cfgPath = filepath.Join(root, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))
	return cfgPath, root
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestScrapeListShow(t *testing.T) {
	ts := fakeSubstack(t)
	cfgPath, root := setup(t, "")

	out, err := run(t, cfgPath, "scrape", "-u", ts.URL)
	require.NoError(t, err, out)
	assert.Contains(t, out, "127\t2 new\t2 total")

	saved, err := datafile.Load(datafile.Path(filepath.Join(root, "data"), "127"))
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "Older Post", saved[0].Title)

	pageHTML, err := os.ReadFile(filepath.Join(root, "html", "127.html"))
	require.NoError(t, err)
	assert.Contains(t, string(pageHTML), "Newer Post")

	out, err = run(t, cfgPath, "essays", "list", "127", "--output", "json", "--sort", "likes", "--desc")
	require.NoError(t, err, out)
	var listed api.Essays
	require.NoError(t, json.Unmarshal([]byte(out), &listed), out)
	require.Len(t, listed, 2)
	assert.Equal(t, "Older Post", listed[0].Title)

	out, err = run(t, cfgPath, "essays", "list", "127", "--sort", "date", "--desc", "--noheaders")
	require.NoError(t, err, out)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Newer Post")

	out, err = run(t, cfgPath, "essays", "show", "127", "newer", "--output", "json")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"title":"Newer Post"`)

	out, err = run(t, cfgPath, "essays", "authors")
	require.NoError(t, err, out)
	assert.Equal(t, "127\t2\n", out)

	// second run finds nothing new but keeps the data
	out, err = run(t, cfgPath, "scrape", "-u", ts.URL)
	require.NoError(t, err, out)
	assert.Contains(t, out, "127\t0 new\t2 total")
}

func TestScrapeSkipSeen(t *testing.T) {
	ts := fakeSubstack(t)
	cfgPath, root := setup(t, "")

	_, err := run(t, cfgPath, "scrape", "-u", ts.URL, "-n", "1")
	require.NoError(t, err)
	// the markdown is gone but the catalog still has the post
	require.NoError(t, os.RemoveAll(filepath.Join(root, "md")))

	out, err := run(t, cfgPath, "scrape", "-u", ts.URL, "--skip-seen")
	require.NoError(t, err, out)
	assert.Contains(t, out, "127\t1 new\t2 total")
}

func TestScrapePremium(t *testing.T) {
	cfgPath, _ := setup(t, "")
	_, err := run(t, cfgPath, "scrape", "-u", "https://ava.substack.com", "--premium")
	assert.ErrorIs(t, err, scrape.ErrPremium)
}

func TestScrapeNeedsTarget(t *testing.T) {
	cfgPath, _ := setup(t, "")
	_, err := run(t, cfgPath, "scrape")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to scrape")
}

func TestScrapeTargets(t *testing.T) {
	cfg := config.Config{
		NumPosts: 5,
		BaseURL:  "https://base.substack.com",
		Publications: []config.Publication{
			{Name: "ava", URL: "https://ava.substack.com", NumPosts: 2},
			{Name: "bo", URL: "https://bo.substack.com"},
		},
	}
	got, err := scrapeTargets(cfg, "", -1)
	require.NoError(t, err)
	assert.Equal(t, []scrapeTarget{{"https://ava.substack.com", 2}, {"https://bo.substack.com", 5}}, got)

	got, err = scrapeTargets(cfg, "", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got[0].limit)

	got, err = scrapeTargets(cfg, "https://x.substack.com", -1)
	require.NoError(t, err)
	assert.Equal(t, []scrapeTarget{{"https://x.substack.com", 5}}, got)

	cfg.Publications = nil
	got, err = scrapeTargets(cfg, "", 0)
	require.NoError(t, err)
	assert.Equal(t, []scrapeTarget{{"https://base.substack.com", 0}}, got)
}

func writeMarkdown(t *testing.T, dir string, name string, e api.Essay) {
	t.Helper()
	doc, err := render.ComposeMarkdown(e, "Body of "+e.Title+".\n")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644))
}

func TestImportAndPage(t *testing.T) {
	cfgPath, root := setup(t, "")
	mdDir := filepath.Join(root, "md", "ava")
	writeMarkdown(t, mdDir, "a-taste.md", api.Essay{Title: "Taste", Date: "Mar 14, 2023", LikeCount: 12})
	writeMarkdown(t, mdDir, "b-archive.md", api.Essay{Title: "Archive", Date: "Jan 2, 2022", LikeCount: 3})
	require.NoError(t, os.WriteFile(filepath.Join(mdDir, "c-broken.md"), []byte("no frontmatter"), 0o644))

	out, err := run(t, cfgPath, "essays", "import", "ava", "--html")
	require.NoError(t, err, out)
	assert.Contains(t, out, "ava\t2 imported\t2 total")
	assert.FileExists(t, filepath.Join(root, "html", "ava", "a-taste.html"))

	essays, err := datafile.Load(datafile.Path(filepath.Join(root, "data"), "ava"))
	require.NoError(t, err)
	require.Len(t, essays, 2)
	assert.Equal(t, "Taste", essays[0].Title)

	pagePath := filepath.Join(root, "html", "ava.html")
	b, err := os.ReadFile(pagePath)
	require.NoError(t, err)
	assert.Contains(t, string(b), `id="toggle-format"`)

	out, err = run(t, cfgPath, "page", "ava", "--no-toggle")
	require.NoError(t, err, out)
	b, err = os.ReadFile(pagePath)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `id="toggle-format"`)

	out, err = run(t, cfgPath, "page")
	require.NoError(t, err, out)
	assert.Contains(t, out, "ava\t2 essays")

	_, err = run(t, cfgPath, "page", "nobody")
	assert.Error(t, err)
}

func TestEssaysEdit(t *testing.T) {
	cfgPath, root := setup(t, "")
	mdDir := filepath.Join(root, "md", "ava")
	writeMarkdown(t, mdDir, "a-taste.md", api.Essay{Title: "Taste", Date: "Mar 14, 2023", LikeCount: 12})
	out, err := run(t, cfgPath, "essays", "import", "ava", "--html")
	require.NoError(t, err, out)

	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "true")
	out, err = run(t, cfgPath, "essays", "edit", "ava", "Taste")
	require.NoError(t, err, out)
	assert.Contains(t, out, "No changes")

	t.Setenv("EDITOR", "sed -i s/Taste/Flavour/")
	out, err = run(t, cfgPath, "essays", "edit", "ava", "Taste")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Flavour")

	essays, err := datafile.Load(datafile.Path(filepath.Join(root, "data"), "ava"))
	require.NoError(t, err)
	require.Len(t, essays, 1)
	assert.Equal(t, "Flavour", essays[0].Title)
	assert.Equal(t, 12, essays[0].LikeCount)

	b, err := os.ReadFile(filepath.Join(root, "html", "ava", "a-taste.html"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "<title>Flavour</title>")
	b, err = os.ReadFile(filepath.Join(root, "html", "ava.html"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "Flavour")

	out, err = run(t, cfgPath, "essays", "list", "ava", "-o", "plain")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Flavour")
	assert.NotContains(t, out, "Taste")
}

func seedDataFile(t *testing.T, root string) api.Essays {
	t.Helper()
	es := api.Essays{
		{Title: "Taste", LikeCount: 12, Date: "Mar 14, 2023", FileLink: "md/ava/taste.md", HTMLLink: "html/ava/taste.html", SourceURL: "https://ava.substack.com/p/taste"},
		{Title: "Archive", LikeCount: 3, Date: "Jan 2, 2022", FileLink: "md/ava/archive.md", HTMLLink: "html/ava/archive.html", SourceURL: "https://ava.substack.com/p/archive"},
	}
	require.NoError(t, datafile.Save(datafile.Path(filepath.Join(root, "data"), "ava"), es))
	return es
}

func TestEssaysListExports(t *testing.T) {
	cfgPath, root := setup(t, "")
	seedDataFile(t, root)

	out, err := run(t, cfgPath, "essays", "list", "ava", "-o", "csv", "--links", "markdown", "--filter", "arch")
	require.NoError(t, err, out)
	assert.Equal(t, "date,likes,title,subtitle,link\n\"Jan 2, 2022\",3,Archive,,md/ava/archive.md\n", out)

	_, err = run(t, cfgPath, "essays", "list", "ava", "-o", "xlsx")
	assert.Error(t, err)

	xlsx := filepath.Join(root, "ava.xlsx")
	_, err = run(t, cfgPath, "essays", "list", "ava", "-o", "xlsx", "--out", xlsx)
	require.NoError(t, err)
	assert.FileExists(t, xlsx)

	_, err = run(t, cfgPath, "essays", "list", "ava", "-o", "yaml")
	assert.Error(t, err)
	_, err = run(t, cfgPath, "essays", "list", "nobody")
	assert.Error(t, err)
}

func TestEssaysDelete(t *testing.T) {
	cfgPath, root := setup(t, "")
	es := seedDataFile(t, root)

	// listing seeds the catalog from the data file
	_, err := run(t, cfgPath, "essays", "list", "ava", "-o", "ndjson")
	require.NoError(t, err)

	out, err := run(t, cfgPath, "essays", "delete", es[0].ID())
	require.NoError(t, err, out)
	assert.Contains(t, out, "Taste")

	left, err := datafile.Load(datafile.Path(filepath.Join(root, "data"), "ava"))
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "Archive", left[0].Title)

	_, err = run(t, cfgPath, "essays", "delete", es[0].ID())
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	cfgPath, _ := setup(t, "num_posts = -1\nbase_url = \"nope\"")
	_, err := run(t, cfgPath, "essays", "authors")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "num_posts must not be negative")
	assert.Contains(t, err.Error(), "base_url has invalid url")

	// config commands still work with a broken config
	out, err := run(t, cfgPath, "config", "publication", "add", "https://ava.substack.com")
	require.NoError(t, err, out)
}

func TestConfigGenerateAndPublications(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	out, err := run(t, path, "config", "generate", "-o", path)
	require.NoError(t, err, out)
	_, err = run(t, path, "config", "generate", "-o", path)
	assert.Error(t, err, "refuses to overwrite")

	out, err = run(t, path, "config", "publication", "add", "https://ava.substack.com/", "-n", "3")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Added ava")

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, config.Load(context.Background(), v))
	require.NoError(t, config.CheckConfigValidity(v))
	pubs := config.FromViper(v).Publications
	require.Len(t, pubs, 1)
	assert.Equal(t, config.Publication{Name: "ava", URL: "https://ava.substack.com/", NumPosts: 3}, pubs[0])

	out, err = run(t, path, "config", "publication", "remove", "ava")
	require.NoError(t, err, out)
	_, err = run(t, path, "config", "publication", "remove", "ava")
	assert.Error(t, err)
}

func TestCompletion(t *testing.T) {
	out, err := run(t, filepath.Join(t.TempDir(), "none.toml"), "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "stackshelf-cli")

	_, err = run(t, "", "completion", "tcsh")
	assert.Error(t, err)
}

func TestFilterByTitle(t *testing.T) {
	es := api.Essays{{Title: "On Taste"}, {Title: "Archive"}, {Title: "Tasting Notes"}}
	got := filterByTitle(es, "tast")
	require.Len(t, got, 2)
	assert.Equal(t, "On Taste", got[0].Title, "keeps list order")
	assert.Equal(t, es, filterByTitle(es, " "))
}

func TestFindEssay(t *testing.T) {
	es := api.Essays{
		{Title: "On Taste", SourceURL: "https://a.substack.com/p/taste"},
		{Title: "Archive", SourceURL: "https://a.substack.com/p/archive"},
	}
	e, err := findEssay(es, es[1].ID())
	require.NoError(t, err)
	assert.Equal(t, "Archive", e.Title)

	e, err = findEssay(es, "on taste")
	require.NoError(t, err)
	assert.Equal(t, "On Taste", e.Title)

	e, err = findEssay(es, "arch")
	require.NoError(t, err)
	assert.Equal(t, "Archive", e.Title)

	_, err = findEssay(es, "zzz")
	assert.Error(t, err)
}

func TestParseLinks(t *testing.T) {
	for in, want := range map[string]bool{"html": true, "markdown": false, "md": false} {
		got, err := parseLinks(in, !want)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	got, err := parseLinks("", true)
	require.NoError(t, err)
	assert.True(t, got)
	_, err = parseLinks("pdf", true)
	assert.Error(t, err)
}
