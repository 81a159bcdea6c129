package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithrel/stackshelf/internal/config"
	"github.com/mithrel/stackshelf/internal/scrape"
)

type scrapeTarget struct {
	url   string
	limit int
}

func newScrapeCmd() *cobra.Command {
	var (
		url      string
		number   int
		mdDir    string
		htmlDir  string
		premium  bool
		skipSeen bool
	)
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape a publication into markdown, HTML and an author page",
		Long: `Scrape fetches a publication's posts (sitemap first, RSS feed as a fallback),
saves each as markdown and HTML, merges them into the author's data file and
catalog, and regenerates the author page.

Without --url every configured publication is scraped, or base_url when none
are configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if premium {
				return scrape.ErrPremium
			}
			app := getApp(cmd)
			cfg := app.Cfg
			if cmd.Flags().Changed("directory") {
				cfg.MDDir = mdDir
			}
			if cmd.Flags().Changed("html-directory") {
				cfg.HTMLDir = htmlDir
			}
			if !cmd.Flags().Changed("number") {
				number = -1
			}
			if !cmd.Flags().Changed("skip-seen") {
				skipSeen = cfg.SkipSeen
			}
			targets, err := scrapeTargets(cfg, url, number)
			if err != nil {
				return err
			}
			app.Cfg = cfg

			client := scrape.NewClient(cfg.ScrapeTimeout, cfg.UserAgent)
			var errs []error
			for _, t := range targets {
				opts := scrape.Options{
					BaseURL:  t.url,
					MDDir:    cfg.MDDir,
					HTMLDir:  cfg.HTMLDir,
					Root:     cfg.Root,
					Delay:    cfg.ScrapeDelay,
					Keywords: cfg.Keywords,
					Log:      app.Log,
				}
				if skipSeen {
					opts.Seen = app.Store.Seen
				}
				s, err := scrape.New(client, opts)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				essays, runErr := s.Run(cmd.Context(), t.limit)
				if runErr != nil && len(essays) == 0 {
					errs = append(errs, fmt.Errorf("%s: %w", s.Writer(), runErr))
					if cmd.Context().Err() != nil {
						break
					}
					continue
				}
				// keep what was saved even when the run was cut short
				merged, out, err := publish(cmd.Context(), app, s.Writer(), essays)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", s.Writer(), err))
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d new\t%d total\t%s\n", s.Writer(), len(essays), len(merged), out)
				if runErr != nil {
					errs = append(errs, fmt.Errorf("%s: %w", s.Writer(), runErr))
					if cmd.Context().Err() != nil {
						break
					}
				}
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().StringVarP(&url, "url", "u", "", "publication URL (e.g. https://name.substack.com)")
	cmd.Flags().IntVarP(&number, "number", "n", 0, "posts to scrape; 0 scrapes all")
	cmd.Flags().StringVarP(&mdDir, "directory", "d", config.DefaultMDDir, "markdown output directory")
	cmd.Flags().StringVar(&htmlDir, "html-directory", config.DefaultHTMLDir, "HTML output directory")
	cmd.Flags().BoolVar(&premium, "premium", false, "scrape premium posts (not supported)")
	cmd.Flags().BoolVar(&skipSeen, "skip-seen", false, "skip posts already in the catalog")
	return cmd
}

// scrapeTargets picks what to scrape. number < 0 means "not given".
func scrapeTargets(cfg config.Config, url string, number int) ([]scrapeTarget, error) {
	limit := func(own int) int {
		switch {
		case number >= 0:
			return number
		case own > 0:
			return own
		default:
			return cfg.NumPosts
		}
	}
	if url != "" {
		return []scrapeTarget{{url: url, limit: limit(0)}}, nil
	}
	if len(cfg.Publications) > 0 {
		out := make([]scrapeTarget, 0, len(cfg.Publications))
		for _, p := range cfg.Publications {
			out = append(out, scrapeTarget{url: p.URL, limit: limit(p.NumPosts)})
		}
		return out, nil
	}
	if cfg.BaseURL != "" {
		return []scrapeTarget{{url: cfg.BaseURL, limit: limit(0)}}, nil
	}
	return nil, errors.New("nothing to scrape: pass --url, or set base_url or [publications.<name>] in the config")
}
