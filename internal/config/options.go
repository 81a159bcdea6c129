package config

import "path/filepath"

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// Default directory names, relative to the working directory like the
// archives they describe.
const (
	DefaultMDDir   = "substack_md_files"
	DefaultHTMLDir = "substack_html_pages"
	DefaultDataDir = "data"
	dbFile         = "stackshelf.db"
)

// DefaultUserAgent is sent with every scrape request unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// GetConfigOptions returns the default configuration options and their meanings.
// This is the single source of truth for default values and generator output.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		// Core paths and conventions
		{Key: "base_url", Default: "", Comment: "Publication scraped when scrape gets no --url and no publications are configured"},
		{Key: "root", Default: ".", Comment: "Output root; essay links and assets/ are relative to it"},
		{Key: "md_dir", Default: DefaultMDDir, Comment: "Markdown output root; files go under md_dir/<author>"},
		{Key: "html_dir", Default: DefaultHTMLDir, Comment: "HTML output root; essays under html_dir/<author>, author pages at html_dir/<author>.html"},
		{Key: "data_dir", Default: DefaultDataDir, Comment: "Per-author JSON data files"},
		{Key: "db_path", Default: "", Comment: "Catalog database; empty means data_dir/" + dbFile},
		{Key: "template", Default: "", Comment: "Author page template; empty uses the built-in one"},
		{Key: "num_posts", Default: 0, Comment: "Posts to scrape per run; 0 scrapes all"},
		{Key: "keywords", Default: []string{"about", "archive", "podcast"}, Comment: "URLs containing any of these are not posts"},
		{Key: "http_addr", Default: ":8080", Comment: "HTTP listen address for serve"},
		{Key: "publications", Default: map[string]any{}, Comment: "Named publications: [publications.<name>] url/num_posts"},

		{Key: "scrape.delay", Default: "1s", Comment: "Pause between fetched posts"},
		{Key: "scrape.timeout", Default: "25s", Comment: "Per-request timeout"},
		{Key: "scrape.user_agent", Default: DefaultUserAgent, Comment: "User-Agent header for scrape requests"},
		{Key: "scrape.skip_seen", Default: false, Comment: "Skip posts the catalog already holds even when their files are gone"},

		{Key: "serve.watch", Default: false, Comment: "Reload author data and rebuild pages when data files change"},
		{Key: "serve.tls_domain", Default: "", Comment: "Serve HTTPS for this domain with automatic certificates"},
		{Key: "serve.tls_email", Default: "", Comment: "ACME account email for automatic certificates"},

		{Key: "page.format_toggle", Default: true, Comment: "Author pages get the HTML/markdown link toggle"},
		{Key: "export.page_size", Default: 200, Comment: "Rows per batch for list exports"},
	}
}

// ResolveDBPath returns db_path, or data_dir/stackshelf.db when unset.
func ResolveDBPath(dbPath, dataDir string) string {
	if dbPath != "" {
		return expandHome(dbPath)
	}
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	return filepath.Join(expandHome(dataDir), dbFile)
}
