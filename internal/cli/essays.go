package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mithrel/stackshelf/internal/datafile"
	"github.com/mithrel/stackshelf/internal/db"
	"github.com/mithrel/stackshelf/internal/essaylist"
	"github.com/mithrel/stackshelf/internal/page"
	"github.com/mithrel/stackshelf/internal/present"
	"github.com/mithrel/stackshelf/internal/render"
	"github.com/mithrel/stackshelf/internal/util"
	"github.com/mithrel/stackshelf/internal/wire"
	"github.com/mithrel/stackshelf/pkg/api"
)

func newEssaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "essays",
		Aliases: []string{"e"},
		Short:   "Browse and manage archived essays",
	}
	cmd.AddCommand(newEssaysListCmd())
	cmd.AddCommand(newEssaysShowCmd())
	cmd.AddCommand(newEssaysImportCmd())
	cmd.AddCommand(newEssaysEditCmd())
	cmd.AddCommand(newEssaysAuthorsCmd())
	cmd.AddCommand(newEssaysDeleteCmd())
	return cmd
}

func newEssaysListCmd() *cobra.Command {
	var (
		outputMode string
		sortBy     string
		desc       bool
		filter     string
		outPath    string
		noHeaders  bool
		links      string
		limit      int
	)
	cmd := &cobra.Command{
		Use:               "list AUTHOR",
		Short:             "List an author's essays",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeAuthors,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			author := args[0]
			if outputMode == "" {
				outputMode = defaultOutput(cmd.OutOrStdout())
			}
			mode, ok := present.ParseMode(strings.ToLower(outputMode))
			if !ok {
				return fmt.Errorf("invalid --output: %s (want %s)", outputMode, strings.Join(present.ModeNames(), "|"))
			}
			order, err := db.ParseOrder(sortBy)
			if err != nil {
				return err
			}
			rendered, err := parseLinks(links, app.Cfg.FormatToggle)
			if err != nil {
				return err
			}
			if mode == present.ModeXLSX && outPath == "" {
				return errors.New("--output xlsx needs --out FILE")
			}

			essays, err := catalogEssays(cmd.Context(), app, db.ListQuery{Author: author, Order: order, Desc: desc, Limit: limit})
			if err != nil {
				return err
			}
			opts := present.Options{
				Mode:         mode,
				Headers:      !noHeaders,
				ShowRendered: rendered,
				OutPath:      outPath,
				PageSize:     app.Cfg.PageSize,
				Title:        page.DisplayName(author),
				Controls:     essaylist.Controls{FormatToggle: app.Cfg.FormatToggle},
				Filter:       filter,
				Out:          cmd.OutOrStdout(),
			}
			if mode == present.ModeTUI {
				// the TUI applies the filter itself so it can be edited
				return present.RenderEssays(cmd.Context(), cmd.OutOrStdout(), essays, opts)
			}
			essays = filterByTitle(essays, filter)
			if mode == present.ModeXLSX {
				return present.RenderEssays(cmd.Context(), cmd.OutOrStdout(), essays, opts)
			}
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				if err := present.RenderEssays(cmd.Context(), f, essays, opts); err != nil {
					_ = f.Close()
					return err
				}
				return f.Close()
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderEssays(cmd.Context(), w, essays, opts)
			})
		},
	}
	cmd.Flags().StringVarP(&outputMode, "output", "o", "", "output mode: "+strings.Join(present.ModeNames(), "|")+" (default tui on a terminal, plain otherwise)")
	cmd.Flags().StringVar(&sortBy, "sort", "original", "order: original|date|likes")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().StringVar(&filter, "filter", "", "fuzzy title filter")
	cmd.Flags().StringVar(&outPath, "out", "", "write to FILE instead of stdout (required for xlsx)")
	cmd.Flags().BoolVar(&noHeaders, "noheaders", false, "omit column headers")
	cmd.Flags().StringVar(&links, "links", "", "link column: html|markdown (default from page.format_toggle)")
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most N essays")
	_ = cmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(present.ModeNames(), cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("sort", cobra.FixedCompletions([]string{"original", "date", "likes"}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func defaultOutput(out io.Writer) string {
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "tui"
	}
	return "plain"
}

func parseLinks(s string, toggle bool) (bool, error) {
	switch strings.ToLower(s) {
	case "":
		return toggle, nil
	case "html":
		return true, nil
	case "markdown", "md":
		return false, nil
	}
	return false, fmt.Errorf("invalid --links: %s (want html|markdown)", s)
}

// catalogEssays lists an author's essays from the catalog. An author the
// catalog has never seen is seeded from their data file first.
func catalogEssays(ctx context.Context, app *wire.App, q db.ListQuery) (api.Essays, error) {
	essays, err := app.Store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(essays) > 0 {
		return essays, nil
	}
	path := datafile.Path(app.Cfg.DataDir, q.Author)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no essays for %s", q.Author)
	}
	fromFile, err := datafile.Load(path)
	if err != nil {
		return nil, err
	}
	if len(fromFile) == 0 {
		return api.Essays{}, nil
	}
	if err := app.Store.UpsertMany(ctx, q.Author, fromFile); err != nil {
		return nil, err
	}
	return app.Store.List(ctx, q)
}

// filterByTitle keeps essays whose title fuzzy-matches q, in their
// current order.
func filterByTitle(essays api.Essays, q string) api.Essays {
	if strings.TrimSpace(q) == "" {
		return essays
	}
	titles := make([]string, len(essays))
	for i, e := range essays {
		titles[i] = e.Title
	}
	idx := util.FuzzyFilter(q, titles)
	sort.Ints(idx)
	out := make(api.Essays, 0, len(idx))
	for _, i := range idx {
		out = append(out, essays[i])
	}
	return out
}

func newEssaysShowCmd() *cobra.Command {
	var outputMode string
	cmd := &cobra.Command{
		Use:               "show AUTHOR TITLE|ID",
		Short:             "Show one essay",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeAuthors,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			mode, ok := present.ParseMode(strings.ToLower(outputMode))
			if !ok {
				return fmt.Errorf("invalid --output: %s", outputMode)
			}
			essays, err := catalogEssays(cmd.Context(), app, db.ListQuery{Author: args[0]})
			if err != nil {
				return err
			}
			e, err := findEssay(essays, args[1])
			if err != nil {
				return err
			}
			body := ""
			if mode == present.ModeMarkdown {
				if b, err := os.ReadFile(resolveLink(app, e.FileLink)); err == nil {
					body = stripFrontMatter(b)
				}
			}
			opts := present.Options{Mode: mode, Headers: true, ShowRendered: app.Cfg.FormatToggle}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderEssay(w, e, body, opts)
			})
		},
	}
	cmd.Flags().StringVarP(&outputMode, "output", "o", "markdown", "output mode: markdown|plain|json|ndjson|html|csv")
	return cmd
}

// findEssay matches key against IDs, then titles, then fuzzy titles.
func findEssay(essays api.Essays, key string) (api.Essay, error) {
	for _, e := range essays {
		if e.ID() == key {
			return e, nil
		}
	}
	for _, e := range essays {
		if strings.EqualFold(e.Title, key) {
			return e, nil
		}
	}
	titles := make([]string, len(essays))
	for i, e := range essays {
		titles[i] = e.Title
	}
	if idx := util.FuzzyFilter(key, titles); len(idx) > 0 {
		return essays[idx[0]], nil
	}
	return api.Essay{}, fmt.Errorf("no essay matches %q", key)
}

func stripFrontMatter(b []byte) string {
	if _, body, err := render.ParseMarkdown(bytes.NewReader(b)); err == nil {
		return string(body)
	}
	return string(b)
}

func newEssaysAuthorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "authors",
		Short: "List cataloged authors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			stats, err := app.Store.Authors(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range stats {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", s.Name, s.Essays)
			}
			return nil
		},
	}
}

func newEssaysDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Remove an essay from the catalog and its author's data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			rec, err := app.Store.Get(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return fmt.Errorf("no essay with id %s", args[0])
				}
				return err
			}
			if err := app.Store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			path := datafile.Path(app.Cfg.DataDir, rec.Author)
			essays, err := datafile.Load(path)
			if err != nil {
				return err
			}
			kept := make(api.Essays, 0, len(essays))
			for _, e := range essays {
				if e.ID() != rec.Essay.ID() {
					kept = append(kept, e)
				}
			}
			if err := datafile.Save(path, kept); err != nil {
				return err
			}
			if _, err := generatePage(app, rec.Author, kept, app.Cfg.Template, app.Cfg.FormatToggle); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\t%s\n", args[0], rec.Essay.Title)
			return nil
		},
	}
}
