package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/stackshelf/internal/render"
	"github.com/mithrel/stackshelf/internal/wire"
	"github.com/mithrel/stackshelf/pkg/api"
)

func newEssaysImportCmd() *cobra.Command {
	var writeHTML bool
	cmd := &cobra.Command{
		Use:   "import AUTHOR",
		Short: "Rebuild an author's data file and catalog from their markdown files",
		Long: `Import reads md_dir/<author>/*.md, using each file's frontmatter as the essay
record, and merges the result into the data file and catalog before
regenerating the author page. With --html, missing HTML copies are rendered.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeAuthors,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			author := args[0]
			essays, err := importMarkdown(app, author, writeHTML)
			if err != nil {
				return err
			}
			merged, out, err := publish(cmd.Context(), app, author, essays)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d imported\t%d total\t%s\n", author, len(essays), len(merged), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&writeHTML, "html", false, "render HTML copies that are missing")
	return cmd
}

// importMarkdown reads the author's markdown files in name order. Files
// without usable frontmatter are logged and skipped.
func importMarkdown(app *wire.App, author string, writeHTML bool) (api.Essays, error) {
	mdDir := filepath.Join(app.Cfg.MDDir, author)
	htmlDir := filepath.Join(app.Cfg.HTMLDir, author)
	paths, err := filepath.Glob(filepath.Join(mdDir, "*.md"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no markdown files in %s", mdDir)
	}
	sort.Strings(paths)

	css := ""
	if writeHTML {
		if err := os.MkdirAll(htmlDir, 0o755); err != nil {
			return nil, err
		}
		if css, err = render.RelativeStylesheet(app.Cfg.Root, htmlDir); err != nil {
			return nil, err
		}
	}

	out := api.Essays{}
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		e, body, err := render.ParseMarkdown(bytes.NewReader(raw))
		if err != nil {
			app.Log.Printf("import: skip path=%s err=%v", p, err)
			continue
		}
		htmlPath := filepath.Join(htmlDir, strings.TrimSuffix(filepath.Base(p), ".md")+".html")
		e.FileLink = filepath.ToSlash(p)
		e.HTMLLink = filepath.ToSlash(htmlPath)
		if writeHTML {
			if err := writeEssayHTML(htmlPath, e.Title, string(body), css); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func writeEssayHTML(path, title, markdown, css string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return renderEssayHTML(path, title, markdown, css)
}

// renderEssayHTML writes the standalone HTML copy of one essay.
func renderEssayHTML(path, title, markdown, css string) error {
	fragment, err := render.MarkdownToHTML(markdown)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := render.WrapHTML(&buf, title, fragment, css); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
