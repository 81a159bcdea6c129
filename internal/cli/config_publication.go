package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/stackshelf/internal/config"
	"github.com/mithrel/stackshelf/internal/scrape"
)

func newConfigPublicationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "publication",
		Aliases: []string{"pub"},
		Short:   "Manage [publications.<name>] sections scraped by default",
	}
	cmd.AddCommand(newConfigPublicationAddCmd())
	cmd.AddCommand(newConfigPublicationRemoveCmd())
	return cmd
}

func configFilePath(cmd *cobra.Command) string {
	if f := cmd.Flag("config"); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	return config.DefaultConfigPath()
}

func newConfigPublicationAddCmd() *cobra.Command {
	var name string
	var number int
	cmd := &cobra.Command{
		Use:   "add URL",
		Short: "Add or replace a publication",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := scrape.NormalizeBase(args[0])
			if name == "" {
				var err error
				if name, err = scrape.WriterName(url); err != nil {
					return err
				}
			}
			if strings.ContainsAny(name, ". []\"") {
				return fmt.Errorf("invalid publication name %q", name)
			}
			values := map[string]any{"url": url}
			if number > 0 {
				values["num_posts"] = number
			}
			path := configFilePath(cmd)
			existing, err := readConfigOrDefault(path)
			if err != nil {
				return err
			}
			updated, _ := config.UpsertPublicationConfig(existing, name, values)
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) to %s\n", name, url, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "section name (defaults to the publication's subdomain)")
	cmd.Flags().IntVarP(&number, "number", "n", 0, "posts to scrape for this publication; 0 uses num_posts")
	return cmd
}

func newConfigPublicationRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a publication",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFilePath(cmd)
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			updated, changed := config.DeletePublicationConfig(string(data), args[0])
			if !changed {
				return fmt.Errorf("publication %s not found in %s", args[0], path)
			}
			if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", args[0], path)
			return nil
		},
	}
}

// readConfigOrDefault returns the config file, or the generated default
// when there is none yet.
func readConfigOrDefault(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.RenderDefaultTOML(), nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
