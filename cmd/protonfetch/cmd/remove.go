package cmd

import (
	"github.com/spf13/cobra"

	"github.com/protonfetch/protonfetch/internal/service/fetcher"
)

// removeCmd deletes an installed release and re-converges the links.
var removeCmd = &cobra.Command{
	Use:   "remove <tag>",
	Short: "Remove an installed release and backfill its links",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, stop := commandContext()
		defer stop()

		return fetcher.Remove(ctx, commonOptions(), args[0])
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(removeCmd)
}
