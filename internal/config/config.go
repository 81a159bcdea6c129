package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved configuration.
type Config struct {
	BaseURL      string
	Root         string
	MDDir        string
	HTMLDir      string
	DataDir      string
	DBPath       string
	Template     string
	NumPosts     int
	Keywords     []string
	HTTPAddr     string
	Publications []Publication

	ScrapeDelay   time.Duration
	ScrapeTimeout time.Duration
	UserAgent     string
	SkipSeen      bool

	Watch     bool
	TLSDomain string
	TLSEmail  string

	FormatToggle bool
	PageSize     int
}

// Publication is one [publications.<name>] section.
type Publication struct {
	Name     string
	URL      string
	NumPosts int
}

// applyDefaults seeds Viper with defaults defined in GetConfigOptions.
// This centralizes default values and descriptions in one place.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// The provided Viper instance is mutated with defaults, file contents, and env.
func Load(ctx context.Context, v *viper.Viper) error {
	// Configure Viper search paths. If SetConfigFile was provided upstream,
	// it takes precedence; these paths are harmless fallbacks.
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "stackshelf"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "stackshelf"))
		}
		v.AddConfigPath(".")
	}

	// Apply centralized defaults (lowest precedence)
	applyDefaults(v)

	// Read config file if present (overrides defaults)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && v.ConfigFileUsed() != "" {
			if _, statErr := os.Stat(v.ConfigFileUsed()); statErr == nil {
				return fmt.Errorf("read config %s: %w", v.ConfigFileUsed(), err)
			}
		}
	}

	// Environment variables: STACKSHELF_* (highest among these sources)
	v.SetEnvPrefix("stackshelf")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow comma-separated env override for keywords
	if s := strings.TrimSpace(os.Getenv("STACKSHELF_KEYWORDS")); s != "" {
		v.Set("keywords", splitList(s))
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// FromViper builds a Config from v. Durations that do not parse are left
// zero; CheckConfigValidity reports them.
func FromViper(v *viper.Viper) Config {
	c := Config{
		BaseURL:       v.GetString("base_url"),
		Root:          expandHome(v.GetString("root")),
		MDDir:         expandHome(v.GetString("md_dir")),
		HTMLDir:       expandHome(v.GetString("html_dir")),
		DataDir:       expandHome(v.GetString("data_dir")),
		Template:      expandHome(v.GetString("template")),
		NumPosts:      v.GetInt("num_posts"),
		Keywords:      v.GetStringSlice("keywords"),
		HTTPAddr:      v.GetString("http_addr"),
		Publications:  publications(v),
		ScrapeDelay:   v.GetDuration("scrape.delay"),
		ScrapeTimeout: v.GetDuration("scrape.timeout"),
		UserAgent:     v.GetString("scrape.user_agent"),
		SkipSeen:      v.GetBool("scrape.skip_seen"),
		Watch:         v.GetBool("serve.watch"),
		TLSDomain:     v.GetString("serve.tls_domain"),
		TLSEmail:      v.GetString("serve.tls_email"),
		FormatToggle:  v.GetBool("page.format_toggle"),
		PageSize:      v.GetInt("export.page_size"),
	}
	if c.Root == "" {
		c.Root = "."
	}
	c.DBPath = ResolveDBPath(v.GetString("db_path"), c.DataDir)
	return c
}

func publications(v *viper.Viper) []Publication {
	raw := v.GetStringMap("publications")
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Publication, 0, len(names))
	for _, name := range names {
		out = append(out, Publication{
			Name:     name,
			URL:      v.GetString("publications." + name + ".url"),
			NumPosts: v.GetInt("publications." + name + ".num_posts"),
		})
	}
	return out
}

// CheckConfigValidity reports every invalid setting in one error.
func CheckConfigValidity(v *viper.Viper) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for _, key := range []string{"md_dir", "html_dir", "data_dir"} {
		if strings.TrimSpace(v.GetString(key)) == "" {
			add("%s is required", key)
		}
	}
	if u := v.GetString("base_url"); u != "" && !validURL(u) {
		add("base_url has invalid url %q", u)
	}
	if v.GetInt("num_posts") < 0 {
		add("num_posts must not be negative")
	}
	if v.GetInt("export.page_size") <= 0 {
		add("export.page_size must be greater than 0")
	}
	if strings.TrimSpace(v.GetString("http_addr")) == "" {
		add("http_addr is required")
	}
	for _, key := range []string{"scrape.delay", "scrape.timeout"} {
		d, err := time.ParseDuration(v.GetString(key))
		switch {
		case err != nil:
			add("%s must be a duration like 1s", key)
		case d < 0:
			add("%s must not be negative", key)
		case key == "scrape.timeout" && d == 0:
			add("scrape.timeout must be greater than 0")
		}
	}
	if v.GetString("serve.tls_email") != "" && v.GetString("serve.tls_domain") == "" {
		add("serve.tls_email needs serve.tls_domain")
	}
	if t := v.GetString("template"); t != "" {
		if _, err := os.Stat(expandHome(t)); err != nil {
			add("template %s not readable", t)
		}
	}
	for _, p := range publications(v) {
		if p.URL == "" {
			add("publication %s missing url", p.Name)
		} else if !validURL(p.URL) {
			add("publication %s has invalid url", p.Name)
		}
		if p.NumPosts < 0 {
			add("publication %s num_posts must not be negative", p.Name)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid config:\n  " + strings.Join(problems, "\n  "))
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "stackshelf", "config.toml")
}
