package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mithrel/stackshelf/internal/datafile"
)

func newPageCmd() *cobra.Command {
	var tmpl string
	var noToggle bool
	cmd := &cobra.Command{
		Use:               "page [AUTHOR...]",
		Short:             "Regenerate author pages from their data files",
		Long:              "Regenerate html_dir/<author>.html for each author, or for every author with a data file when none are given.",
		ValidArgsFunction: completeAuthors,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			authors := args
			if len(authors) == 0 {
				all, err := datafile.Authors(app.Cfg.DataDir)
				if err != nil {
					return err
				}
				if len(all) == 0 {
					return fmt.Errorf("no data files in %s", app.Cfg.DataDir)
				}
				authors = all
			}
			if tmpl == "" {
				tmpl = app.Cfg.Template
			}
			toggle := app.Cfg.FormatToggle && !noToggle
			for _, author := range authors {
				path := datafile.Path(app.Cfg.DataDir, author)
				if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("no data file for %s at %s", author, path)
				}
				essays, err := datafile.Load(path)
				if err != nil {
					return err
				}
				out, err := generatePage(app, author, essays, tmpl, toggle)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d essays\t%s\n", author, len(essays), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tmpl, "template", "", "page template file (defaults to config template or the built-in one)")
	cmd.Flags().BoolVar(&noToggle, "no-toggle", false, "omit the HTML/markdown link toggle")
	return cmd
}
