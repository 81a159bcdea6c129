package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mithrel/stackshelf/internal/config"
	"github.com/mithrel/stackshelf/internal/datafile"
	"github.com/mithrel/stackshelf/internal/util"
)

// completeAuthors suggests authors that have a data file. It reads config
// itself because completion runs before the app is wired.
func completeAuthors(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	v := viper.New()
	if f := cmd.Flag("config"); f != nil && f.Value.String() != "" {
		v.SetConfigFile(f.Value.String())
	}
	if err := config.Load(cmd.Context(), v); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	authors, err := datafile.Authors(config.FromViper(v).DataDir)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return util.ScoreCompletions(toComplete, authors, 0), cobra.ShellCompDirectiveNoFileComp
}
