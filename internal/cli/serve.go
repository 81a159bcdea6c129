package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithrel/stackshelf/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve author pages with server-side sorting",
		Long: `Serve every author with a data file at /authors/<author>. Sort and toggle
buttons post back to the server, which keeps one list state per author.
Essay files are served from the output root under /files/.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if !cmd.Flags().Changed("addr") {
				addr = app.Cfg.HTTPAddr
			}
			if !cmd.Flags().Changed("watch") {
				watch = app.Cfg.Watch
			}
			srv := server.New(server.Options{
				Root:         app.Cfg.Root,
				DataDir:      app.Cfg.DataDir,
				HTMLDir:      app.Cfg.HTMLDir,
				TemplatePath: app.Cfg.Template,
				FormatToggle: app.Cfg.FormatToggle,
				Log:          app.Log,
			})
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on %s\n", app.Cfg.DataDir, addr)
			return srv.ListenAndServe(cmd.Context(), server.ServeOptions{
				Addr:  addr,
				Watch: watch,
				TLS:   server.TLSOptions{Domain: app.Cfg.TLSDomain, Email: app.Cfg.TLSEmail},
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to http_addr)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload authors and regenerate pages when data files change")
	return cmd
}
