package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/protonfetch/protonfetch/internal/service/fetcher"
)

// releaseCount limits how many tags list-releases prints.
var releaseCount int

// listReleasesCmd prints the fork's published release tags, newest first.
var listReleasesCmd = &cobra.Command{
	Use:   "list-releases",
	Short: "List published release tags of the selected fork",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := commandContext()
		defer stop()

		tags, err := fetcher.ListReleases(ctx, commonOptions(), releaseCount)
		if err != nil {
			return err
		}

		for _, tag := range tags {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), tag)
		}

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	listReleasesCmd.Flags().IntVarP(&releaseCount, "count", "n", 10, "maximum number of releases to list")
	rootCmd.AddCommand(listReleasesCmd)
}
