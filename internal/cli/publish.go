package cli

import (
	"context"
	"fmt"

	"github.com/mithrel/stackshelf/internal/datafile"
	"github.com/mithrel/stackshelf/internal/page"
	"github.com/mithrel/stackshelf/internal/wire"
	"github.com/mithrel/stackshelf/pkg/api"
)

// publish merges essays into the author's data file, records them in the
// catalog and regenerates the author page. It returns the merged list
// and the page path.
func publish(ctx context.Context, app *wire.App, author string, essays api.Essays) (api.Essays, string, error) {
	merged, err := datafile.Update(datafile.Path(app.Cfg.DataDir, author), essays)
	if err != nil {
		return nil, "", fmt.Errorf("data file: %w", err)
	}
	if err := app.Store.UpsertMany(ctx, author, essays); err != nil {
		return nil, "", fmt.Errorf("catalog: %w", err)
	}
	out, err := generatePage(app, author, merged, app.Cfg.Template, app.Cfg.FormatToggle)
	if err != nil {
		return nil, "", err
	}
	return merged, out, nil
}

func generatePage(app *wire.App, author string, essays api.Essays, tmpl string, toggle bool) (string, error) {
	return page.Generate(page.Options{
		Author:       author,
		Essays:       essays,
		OutDir:       app.Cfg.HTMLDir,
		Root:         app.Cfg.Root,
		TemplatePath: tmpl,
		FormatToggle: toggle,
	})
}
