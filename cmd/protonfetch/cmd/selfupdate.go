package cmd

import (
	"github.com/spf13/cobra"

	"github.com/protonfetch/protonfetch/internal/service/selfupdate"
)

// selfUpdateCmd replaces the running binary with the newest release.
var selfUpdateCmd = &cobra.Command{
	Use:   "self-update",
	Short: "Update protonfetch itself to the newest published release",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := commandContext()
		defer stop()

		return selfupdate.Run(ctx, &selfupdate.Options{ConfigPath: configPath})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(selfUpdateCmd)
}
