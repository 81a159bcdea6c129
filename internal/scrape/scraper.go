package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mithrel/stackshelf/internal/render"
	"github.com/mithrel/stackshelf/pkg/api"
)

// ErrPremium is returned for premium scraping, which needs a logged-in
// browser session.
var ErrPremium = errors.New("premium scraping is not supported")

var errSkip = errors.New("nothing extracted")

// Options configures a Scraper.
type Options struct {
	BaseURL string
	// MDDir and HTMLDir are roots; files go under a per-writer subdirectory.
	MDDir   string
	HTMLDir string
	// Root is the output root that holds assets/. Defaults to ".".
	Root     string
	Delay    time.Duration
	Keywords []string
	// Seen, when set, skips URLs the catalog already holds.
	Seen func(ctx context.Context, sourceURL string) (bool, error)
	Log  *log.Logger
}

// Scraper archives one publication.
type Scraper struct {
	client  *Client
	opts    Options
	writer  string
	mdDir   string
	htmlDir string
}

// New prepares a scraper for opts.BaseURL and creates its output
// directories.
func New(c *Client, opts Options) (*Scraper, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("scrape: base url is required")
	}
	opts.BaseURL = NormalizeBase(opts.BaseURL)
	writer, err := WriterName(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Keywords == nil {
		opts.Keywords = DefaultKeywords
	}
	if opts.Log == nil {
		opts.Log = log.New(io.Discard, "", 0)
	}
	s := &Scraper{
		client:  c,
		opts:    opts,
		writer:  writer,
		mdDir:   filepath.Join(opts.MDDir, writer),
		htmlDir: filepath.Join(opts.HTMLDir, writer),
	}
	for _, d := range []string{s.mdDir, s.htmlDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("scrape: %w", err)
		}
	}
	return s, nil
}

// Writer returns the publication's short name.
func (s *Scraper) Writer() string { return s.writer }

// Run scrapes up to limit posts (0 means all) and returns the essays it
// saved. Per-post failures are logged and skipped. On cancellation the
// essays saved so far are returned with ctx's error.
func (s *Scraper) Run(ctx context.Context, limit int) (api.Essays, error) {
	urls, err := s.client.Discover(ctx, s.opts.BaseURL)
	if err != nil {
		return nil, err
	}
	urls = FilterURLs(urls, s.opts.Keywords)
	s.opts.Log.Printf("scrape: writer=%s posts=%d", s.writer, len(urls))

	out := api.Essays{}
	count := 0
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		mdPath := filepath.Join(s.mdDir, FilenameFromURL(u, ".md"))
		htmlPath := filepath.Join(s.htmlDir, FilenameFromURL(u, ".html"))

		if exists(mdPath) {
			s.opts.Log.Printf("scrape: exists path=%s", mdPath)
		} else if seen, err := s.seen(ctx, u); err != nil {
			s.opts.Log.Printf("scrape: skip url=%s err=%v", u, err)
			continue
		} else if seen {
			s.opts.Log.Printf("scrape: cataloged url=%s", u)
		} else {
			e, err := s.scrapeOne(ctx, u, mdPath, htmlPath)
			if err != nil {
				if ctx.Err() != nil {
					return out, ctx.Err()
				}
				s.opts.Log.Printf("scrape: skip url=%s err=%v", u, err)
				continue
			}
			s.opts.Log.Printf("scrape: saved title=%q md=%s html=%s", e.Title, mdPath, htmlPath)
			out = append(out, e)
			if err := s.pause(ctx); err != nil {
				return out, err
			}
		}

		count++
		if limit > 0 && count >= limit {
			break
		}
	}
	s.opts.Log.Printf("scrape: done writer=%s saved=%d", s.writer, len(out))
	return out, nil
}

func (s *Scraper) seen(ctx context.Context, u string) (bool, error) {
	if s.opts.Seen == nil {
		return false, nil
	}
	return s.opts.Seen(ctx, u)
}

func (s *Scraper) pause(ctx context.Context) error {
	if s.opts.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(s.opts.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scraper) scrapeOne(ctx context.Context, u, mdPath, htmlPath string) (api.Essay, error) {
	body, _, err := s.client.Get(ctx, u)
	if err != nil {
		return api.Essay{}, err
	}
	doc, err := ParsePage(body)
	if err != nil {
		return api.Essay{}, err
	}
	post, err := ExtractPost(doc)
	if err != nil {
		return api.Essay{}, err
	}
	if post.Missing() {
		return api.Essay{}, errSkip
	}

	e := api.Essay{
		Title:     post.Title,
		Subtitle:  post.Subtitle,
		LikeCount: post.Likes,
		Date:      post.Date,
		FileLink:  filepath.ToSlash(mdPath),
		HTMLLink:  filepath.ToSlash(htmlPath),
		SourceURL: u,
	}

	md, err := render.HTMLToMarkdown(post.ContentHTML)
	if err != nil {
		return api.Essay{}, err
	}
	mdDoc, err := render.ComposeMarkdown(e, md)
	if err != nil {
		return api.Essay{}, err
	}
	if err := writeNew(mdPath, []byte(mdDoc)); err != nil {
		return api.Essay{}, err
	}

	fragment, err := render.MarkdownToHTML(render.HeadingBlock(e) + md)
	if err != nil {
		return api.Essay{}, err
	}
	css, err := render.RelativeStylesheet(s.opts.Root, s.htmlDir)
	if err != nil {
		return api.Essay{}, err
	}
	var page bytes.Buffer
	if err := render.WrapHTML(&page, e.Title, fragment, css); err != nil {
		return api.Essay{}, err
	}
	if err := os.WriteFile(htmlPath, page.Bytes(), 0o644); err != nil {
		return api.Essay{}, err
	}
	return e, nil
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// writeNew creates p and fails if it already exists.
func writeNew(p string, b []byte) error {
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
