package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postPage = `<html><body><article class="post">
<h1 class="post-title">  First   Post </h1>
<h3 class="subtitle">A subtitle</h3>
<div class="post-date">Jan 2, 2024</div>
<a class="post-ufi-button"><span class="label">42</span></a>
<div class="available-content"><p>Hello <a href="https://example.com">world</a>.</p></div>
</article></body></html>`

func fastClient() *Client {
	c := NewClient(5*time.Second, "test-agent")
	c.Backoffs = []time.Duration{0, time.Millisecond, time.Millisecond}
	return c
}

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestExtractPost(t *testing.T) {
	p, err := ExtractPost(doc(t, postPage))
	require.NoError(t, err)
	assert.Equal(t, "First Post", p.Title)
	assert.Equal(t, "A subtitle", p.Subtitle)
	assert.Equal(t, "Jan 2, 2024", p.Date)
	assert.Equal(t, 42, p.Likes)
	assert.Contains(t, p.ContentHTML, `<div class="available-content">`)
	assert.False(t, p.Missing())
}

func TestExtractPostDefaults(t *testing.T) {
	p, err := ExtractPost(doc(t, `<html><body><span class="like-count">many</span><p>x</p></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, TitleNotFound, p.Title)
	assert.Equal(t, "", p.Subtitle)
	assert.Equal(t, DateNotFound, p.Date)
	assert.Equal(t, 0, p.Likes, "non-numeric like text is ignored")
	assert.Equal(t, ContentNotFound, p.ContentHTML)
	assert.True(t, p.Missing())
}

func TestParsePageRejects(t *testing.T) {
	_, err := ParsePage([]byte(`<div class="available-content"></div><h2 class="paywall-title">Subscribe</h2>`))
	assert.ErrorIs(t, err, ErrPaywalled)

	_, err = ParsePage([]byte(`<html><body><p>nothing</p></body></html>`))
	assert.ErrorIs(t, err, ErrNoContent)

	_, err = ParsePage([]byte(postPage))
	assert.NoError(t, err)
}

func TestFilterURLs(t *testing.T) {
	in := []string{"https://x.com/p/a", "https://x.com/about", "https://x.com/archive?sort=new", "https://x.com/podcast/1", "https://x.com/p/b"}
	assert.Equal(t, []string{"https://x.com/p/a", "https://x.com/p/b"}, FilterURLs(in, DefaultKeywords))
	assert.Equal(t, in, FilterURLs(in, nil))
}

func TestWriterName(t *testing.T) {
	cases := map[string]string{
		"https://www.thefitzwilliam.com/":     "thefitzwilliam",
		"https://astralcodexten.substack.com": "astralcodexten",
		"http://localhost:8080/":              "localhost",
	}
	for in, want := range cases {
		got, err := WriterName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := WriterName("not a url")
	assert.Error(t, err)
}

func TestFilenameFromURL(t *testing.T) {
	assert.Equal(t, "my-post.md", FilenameFromURL("https://x.substack.com/p/my-post", ".md"))
	assert.Equal(t, "my-post.html", FilenameFromURL("https://x.substack.com/p/my-post", "html"))
	assert.Equal(t, "my-post.md", FilenameFromURL("https://x.substack.com/p/my-post/", "md"))
}

func TestParseSitemapAndFeed(t *testing.T) {
	sm := `<?xml version="1.0"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<url><loc>https://x.com/p/a</loc></url><url><loc> https://x.com/p/b </loc></url></urlset>`
	urls, err := parseSitemap([]byte(sm))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x.com/p/a", "https://x.com/p/b"}, urls)

	other := `<urlset xmlns="http://example.com/other"><url><loc>https://x.com/p/a</loc></url></urlset>`
	urls, err = parseSitemap([]byte(other))
	require.NoError(t, err)
	assert.Empty(t, urls)

	rss := `<rss><channel><title>x</title><item><link>https://x.com/p/c</link></item><item><title>no link</title></item></channel></rss>`
	urls, err = parseFeed([]byte(rss))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x.com/p/c"}, urls)
}

func TestClientRetriesTransientErrors(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer ts.Close()

	body, final, err := fastClient().Get(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, ts.URL, final.String())
	assert.Equal(t, int32(3), hits.Load())
}

func TestClientGivesUp(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, _, err := fastClient().Get(context.Background(), ts.URL)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClientDoesNotRetry404(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer ts.Close()

	_, _, err := fastClient().Get(context.Background(), ts.URL)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, int32(1), hits.Load())
}

// fakeSubstack serves a sitemap with three posts, one of them paywalled,
// plus an about page the keyword filter must drop.
func fakeSubstack(t *testing.T, withSitemap bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var base string
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		if !withSitemap {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<url><loc>%[1]s/p/first</loc></url>
<url><loc>%[1]s/about</loc></url>
<url><loc>%[1]s/p/locked</loc></url>
<url><loc>%[1]s/p/second</loc></url></urlset>`, base)
	})
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<rss><channel><item><link>%s/p/first</link></item></channel></rss>`, base)
	})
	mux.HandleFunc("/p/first", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, postPage)
	})
	mux.HandleFunc("/p/second", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.ReplaceAll(postPage, "First", "Second"))
	})
	mux.HandleFunc("/p/locked", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="available-content"></div><div class="paywall-overlay"></div>`)
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("filtered url fetched: %s", r.URL)
	})
	ts := httptest.NewServer(mux)
	base = ts.URL
	return ts
}

func newScraper(t *testing.T, base string) (*Scraper, string) {
	t.Helper()
	root := t.TempDir()
	s, err := New(fastClient(), Options{
		BaseURL: base,
		MDDir:   filepath.Join(root, "md"),
		HTMLDir: filepath.Join(root, "html"),
		Root:    root,
	})
	require.NoError(t, err)
	return s, root
}

func TestScraperRun(t *testing.T) {
	ts := fakeSubstack(t, true)
	defer ts.Close()

	s, root := newScraper(t, ts.URL)
	assert.Equal(t, "127", s.Writer())

	got, err := s.Run(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "First Post", got[0].Title)
	assert.Equal(t, "Second Post", got[1].Title)
	assert.Equal(t, 42, got[0].LikeCount)
	assert.Equal(t, ts.URL+"/p/first", got[0].SourceURL)

	md, err := os.ReadFile(got[0].FileLink)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# First Post\n\n## A subtitle\n\n**Jan 2, 2024**\n\n**Likes:** 42")
	assert.Contains(t, string(md), "[world](https://example.com)")

	page, err := os.ReadFile(got[0].HTMLLink)
	require.NoError(t, err)
	assert.Contains(t, string(page), `href="../../assets/css/essay-styles.css"`)
	assert.Contains(t, string(page), "<h1")
	assert.FileExists(t, filepath.Join(root, "html", "127", "first.html"))

	again, err := s.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, again, "existing markdown files are not scraped twice")
}

func TestScraperHonorsLimit(t *testing.T) {
	ts := fakeSubstack(t, true)
	defer ts.Close()

	s, _ := newScraper(t, ts.URL)
	got, err := s.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestScraperFallsBackToFeed(t *testing.T) {
	ts := fakeSubstack(t, false)
	defer ts.Close()

	s, _ := newScraper(t, ts.URL)
	got, err := s.Run(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "First Post", got[0].Title)
}

func TestScraperSkipsSeen(t *testing.T) {
	ts := fakeSubstack(t, true)
	defer ts.Close()

	root := t.TempDir()
	s, err := New(fastClient(), Options{
		BaseURL: ts.URL,
		MDDir:   filepath.Join(root, "md"),
		HTMLDir: filepath.Join(root, "html"),
		Root:    root,
		Seen: func(_ context.Context, u string) (bool, error) {
			return strings.HasSuffix(u, "/p/first"), nil
		},
	})
	require.NoError(t, err)
	got, err := s.Run(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Second Post", got[0].Title)
}

func TestScraperStopsOnCancel(t *testing.T) {
	ts := fakeSubstack(t, true)
	defer ts.Close()

	s, _ := newScraper(t, ts.URL)
	s.opts.Delay = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	got, err := s.Run(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, got, 1)
}
