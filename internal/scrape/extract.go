package scrape

import (
	"bytes"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrPaywalled marks a subscriber-only post.
	ErrPaywalled = errors.New("post is paywalled")
	// ErrNoContent marks a page without a recognizable post body.
	ErrNoContent = errors.New("no post content found")
)

// Fallbacks for fields no selector matched.
const (
	TitleNotFound   = "Title not found"
	DateNotFound    = "Date not found"
	ContentNotFound = "<p>Content not found</p>"
)

// Substack has shipped several layouts; each list is tried in order and
// the first match wins.
var (
	titleSelectors = []string{
		"h1.post-title", "h2.post-title", "h1", "article h1",
		"article header h1", ".post-header h1",
	}
	subtitleSelectors = []string{
		"h3.subtitle", ".post-subtitle", "article header h3", ".post-header h2",
	}
	dateSelectors = []string{
		"div._color-pub-secondary-text_3axfk_207", ".post-date", "time",
		"article header time", ".post-header time", ".pencraft.pc-reset time",
		"div.pencraft.pc-reset ._meta_3axfk_442",
	}
	likeSelectors = []string{
		"a.post-ufi-button .label", ".like-count", ".post-likes", ".like-button .count",
	}
	contentSelectors = []string{
		"div.available-content", "article .post-content", "div.post-content",
		".substack-post", "article.post",
	}
)

const (
	paywallSelector   = "h2.paywall-title, div.paywall-overlay"
	bodyCheckSelector = "div.available-content, article.post, div.post-content"
)

var (
	spaceRe  = regexp.MustCompile(`\s+`)
	digitsRe = regexp.MustCompile(`^[0-9]+$`)
)

// Post is the metadata and body pulled from one post page.
type Post struct {
	Title       string
	Subtitle    string
	Date        string
	Likes       int
	ContentHTML string
}

// Missing reports whether neither a title nor a body was found.
func (p Post) Missing() bool {
	return p.Title == TitleNotFound && p.ContentHTML == ContentNotFound
}

// ParsePage parses a post page and rejects paywalled or empty pages.
func ParsePage(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if doc.Find(paywallSelector).Length() > 0 {
		return nil, ErrPaywalled
	}
	if doc.Find(bodyCheckSelector).Length() == 0 {
		return nil, ErrNoContent
	}
	return doc, nil
}

// ExtractPost pulls the post fields out of doc, using the fallback
// constants for anything not found.
func ExtractPost(doc *goquery.Document) (Post, error) {
	p := Post{
		Title:       firstText(doc, titleSelectors, TitleNotFound),
		Subtitle:    firstText(doc, subtitleSelectors, ""),
		Date:        firstText(doc, dateSelectors, DateNotFound),
		ContentHTML: ContentNotFound,
	}

	for _, sel := range likeSelectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		txt := strings.TrimSpace(s.Text())
		if !digitsRe.MatchString(txt) {
			continue
		}
		n, err := strconv.Atoi(txt)
		if err != nil {
			continue
		}
		p.Likes = n
		break
	}

	for _, sel := range contentSelectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		h, err := goquery.OuterHtml(s)
		if err != nil {
			return Post{}, err
		}
		p.ContentHTML = h
		break
	}
	return p, nil
}

func firstText(doc *goquery.Document, selectors []string, def string) string {
	for _, sel := range selectors {
		s := doc.Find(sel).First()
		if s.Length() > 0 {
			return textCondense(s.Text())
		}
	}
	return def
}

func textCondense(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
