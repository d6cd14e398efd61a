package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/protonfetch/protonfetch/internal/service/fetcher"
)

// listLinksCmd prints the state of the fork's three stable links.
var listLinksCmd = &cobra.Command{
	Use:   "list-links",
	Short: "Show where the stable version links point",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := commandContext()
		defer stop()

		listed, err := fetcher.ListLinks(ctx, commonOptions())
		if err != nil {
			return err
		}

		for _, link := range listed {
			if link.Target == "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (absent)\n", link.Name)
				continue
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", link.Name, link.Target)
		}

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(listLinksCmd)
}
