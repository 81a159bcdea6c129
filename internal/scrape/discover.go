package scrape

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// DefaultKeywords mark non-post pages in a sitemap.
var DefaultKeywords = []string{"about", "archive", "podcast"}

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemap struct {
	URLs []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
	XMLName xml.Name
}

type feed struct {
	Items []struct {
		Link string `xml:"link"`
	} `xml:"channel>item"`
}

// NormalizeBase returns base with a trailing slash.
func NormalizeBase(base string) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// Discover lists post URLs from sitemap.xml, or from feed.xml when the
// sitemap is unavailable or empty. The feed only carries recent posts.
func (c *Client) Discover(ctx context.Context, base string) ([]string, error) {
	base = NormalizeBase(base)
	urls, smErr := c.fromSitemap(ctx, base+"sitemap.xml")
	if len(urls) > 0 {
		return urls, nil
	}
	urls, feedErr := c.fromFeed(ctx, base+"feed.xml")
	if len(urls) > 0 {
		return urls, nil
	}
	if smErr != nil || feedErr != nil {
		return nil, fmt.Errorf("discover posts: sitemap: %v; feed: %v", smErr, feedErr)
	}
	return nil, nil
}

func (c *Client) fromSitemap(ctx context.Context, u string) ([]string, error) {
	body, _, err := c.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	return parseSitemap(body)
}

func parseSitemap(body []byte) ([]string, error) {
	var sm sitemap
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&sm); err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}
	if sm.XMLName.Space != "" && sm.XMLName.Space != sitemapNS {
		return nil, nil
	}
	out := make([]string, 0, len(sm.URLs))
	for _, u := range sm.URLs {
		if loc := strings.TrimSpace(u.Loc); loc != "" {
			out = append(out, loc)
		}
	}
	return out, nil
}

func (c *Client) fromFeed(ctx context.Context, u string) ([]string, error) {
	body, _, err := c.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	return parseFeed(body)
}

func parseFeed(body []byte) ([]string, error) {
	var f feed
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&f); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	out := make([]string, 0, len(f.Items))
	for _, it := range f.Items {
		if link := strings.TrimSpace(it.Link); link != "" {
			out = append(out, link)
		}
	}
	return out, nil
}

// FilterURLs drops every URL that contains any of keywords.
func FilterURLs(urls, keywords []string) []string {
	out := make([]string, 0, len(urls))
next:
	for _, u := range urls {
		for _, k := range keywords {
			if k != "" && strings.Contains(u, k) {
				continue next
			}
		}
		out = append(out, u)
	}
	return out
}

// WriterName is the publication's short name: the first host label,
// skipping a leading "www".
func WriterName(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("writer name: %w", err)
	}
	parts := strings.Split(u.Hostname(), ".")
	if len(parts) > 1 && parts[0] == "www" {
		parts = parts[1:]
	}
	if parts[0] == "" {
		return "", fmt.Errorf("writer name: no host in %q", base)
	}
	return parts[0], nil
}

// FilenameFromURL is the URL's last path segment plus ext.
func FilenameFromURL(rawURL, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		name = path.Base(strings.TrimSuffix(u.Path, "/"))
	} else if i := strings.LastIndex(rawURL, "/"); i >= 0 {
		name = rawURL[i+1:]
	}
	return name + ext
}
