package cmd

import (
	"fmt"

	"github.com/MinterTeam/minter-presale/version"
	"github.com/spf13/cobra"
)

var Version = &cobra.Command{
	Use:   "version",
	Short: "Show this node's version",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (app %d, commit %s)\n", version.Version, version.AppVer, version.GitCommit)
		return err
	},
}
