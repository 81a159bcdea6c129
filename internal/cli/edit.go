package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mithrel/stackshelf/internal/datafile"
	"github.com/mithrel/stackshelf/internal/db"
	"github.com/mithrel/stackshelf/internal/editor"
	"github.com/mithrel/stackshelf/internal/render"
	"github.com/mithrel/stackshelf/internal/wire"
	"github.com/mithrel/stackshelf/pkg/api"
)

func newEssaysEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "edit AUTHOR TITLE|ID",
		Short:             "Edit an essay's markdown, then refresh its HTML, data file entry and page",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeAuthors,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			author := args[0]
			essays, err := catalogEssays(cmd.Context(), app, db.ListQuery{Author: author})
			if err != nil {
				return err
			}
			old, err := findEssay(essays, args[1])
			if err != nil {
				return err
			}
			path := resolveLink(app, old.FileLink)
			final, changed, err := editor.Edit(path)
			if err != nil {
				return err
			}
			if !changed {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No changes")
				return nil
			}
			updated, err := applyEdit(cmd, app, author, old, final)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\t%s\n", updated.ID(), updated.Title)
			return nil
		},
	}
}

// applyEdit folds an edited markdown file back into the essay record and
// everything derived from it.
func applyEdit(cmd *cobra.Command, app *wire.App, author string, old api.Essay, final []byte) (api.Essay, error) {
	parsed, body, err := render.ParseMarkdown(bytes.NewReader(final))
	if err != nil {
		return api.Essay{}, fmt.Errorf("edited file: %w", err)
	}
	updated := old
	updated.Title = parsed.Title
	updated.Subtitle = parsed.Subtitle
	updated.Date = parsed.Date
	updated.LikeCount = parsed.LikeCount
	if parsed.SourceURL != "" {
		updated.SourceURL = parsed.SourceURL
	}

	if old.HTMLLink != "" {
		htmlPath := resolveLink(app, old.HTMLLink)
		css, err := render.RelativeStylesheet(app.Cfg.Root, filepath.Dir(htmlPath))
		if err != nil {
			return api.Essay{}, err
		}
		if err := renderEssayHTML(htmlPath, updated.Title, string(body), css); err != nil {
			return api.Essay{}, err
		}
	}

	path := datafile.Path(app.Cfg.DataDir, author)
	essays, err := datafile.Load(path)
	if err != nil {
		return api.Essay{}, err
	}
	for i, e := range essays {
		if e.ID() == old.ID() {
			essays[i] = updated
		}
	}
	if err := datafile.Save(path, essays); err != nil {
		return api.Essay{}, err
	}
	if updated.ID() != old.ID() {
		if err := app.Store.Delete(cmd.Context(), old.ID()); err != nil {
			return api.Essay{}, err
		}
	}
	if err := app.Store.Upsert(cmd.Context(), author, updated); err != nil {
		return api.Essay{}, err
	}
	if _, err := generatePage(app, author, essays, app.Cfg.Template, app.Cfg.FormatToggle); err != nil {
		return api.Essay{}, err
	}
	return updated, nil
}

// resolveLink turns a data file link into a path on disk.
func resolveLink(app *wire.App, link string) string {
	p := filepath.FromSlash(link)
	if filepath.IsAbs(p) {
		return p
	}
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return filepath.Join(app.Cfg.Root, p)
}
