package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/protonfetch/protonfetch/internal/fork"
	"github.com/protonfetch/protonfetch/internal/logger"
	"github.com/protonfetch/protonfetch/internal/service/fetcher"
	"github.com/protonfetch/protonfetch/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// forkID selects the product line to operate on.
	forkID string
	// tagName requests a specific release instead of the latest one.
	tagName string
	// extractDir overrides the configured extraction root.
	extractDir string
	// downloadDir overrides the configured archive directory.
	downloadDir string
	// noProgress disables the console progress indicator.
	noProgress bool
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd fetches a release and reconciles the version links.
	rootCmd = &cobra.Command{
		Use:   "protonfetch",
		Short: "Fetch Proton builds and keep the three newest versions behind stable links",
		Long: "Protonfetch downloads custom Proton releases, extracts them into the Steam " +
			"compatibility tools directory and maintains three stable symlinks pointing at " +
			"the newest installed versions, so Steam always finds them under fixed names.",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			return fetcher.Run(ctx, commonOptions())
		},
	}
)

// commandContext sets up graceful shutdown handling.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// commonOptions collects the flag values shared by all subcommands.
func commonOptions() *fetcher.Options {
	return &fetcher.Options{
		ConfigPath:  configPath,
		ForkID:      forkID,
		Tag:         tagName,
		ExtractDir:  extractDir,
		DownloadDir: downloadDir,
		NoProgress:  noProgress,
	}
}

// Execute runs the protonfetch CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	cobra.OnInitialize(func() {
		if level, ok := logger.ParseLogLevel(logLevel); ok {
			logger.SetLevel(level)
		}
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "path to configuration file")
	flags.StringVarP(&forkID, "fork", "f", "", "fork to operate on ("+joinForkIDs()+")")
	flags.StringVar(&extractDir, "extract-dir", "", "directory builds are extracted into")
	flags.StringVar(&downloadDir, "output-dir", "", "directory archives are downloaded into")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.Flags().StringVarP(&tagName, "tag", "t", "", "release tag to fetch instead of the latest")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress indicator")
}

func joinForkIDs() string {
	out := ""
	for i, id := range fork.IDs() {
		if i > 0 {
			out += "|"
		}

		out += id
	}

	return out
}
