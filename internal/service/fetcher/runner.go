package fetcher

import (
	"context"
	"os"
	"path/filepath"

	"github.com/protonfetch/protonfetch/internal/config"
	"github.com/protonfetch/protonfetch/internal/fork"
	"github.com/protonfetch/protonfetch/internal/github"
	"github.com/protonfetch/protonfetch/internal/links"
	"github.com/protonfetch/protonfetch/internal/logger"
	"github.com/protonfetch/protonfetch/internal/progress"
	"github.com/protonfetch/protonfetch/internal/release"
	"github.com/protonfetch/protonfetch/internal/transfer"
)

// runner bundles the configured collaborators of a single invocation.
type runner struct {
	cfg        *config.Config
	fork       *fork.Fork
	client     *github.Client
	resolver   *release.Resolver
	downloader *transfer.Downloader
	manager    *links.Manager
	sink       progress.Sink
}

// newRunner loads configuration, applies option overrides and wires the
// pipeline components.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	cfg, err := config.LoadOrInit(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.ExtractDir != "" {
		cfg.ExtractDir = opts.ExtractDir
	}

	if opts.DownloadDir != "" {
		cfg.DownloadDir = opts.DownloadDir
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	forkID := opts.ForkID
	if forkID == "" {
		forkID = cfg.DefaultFork
	}

	f, err := fork.ByID(forkID)
	if err != nil {
		return nil, err
	}

	client := github.NewClient(cfg.GitHubToken, cfg.Timeout)

	var sink progress.Sink = progress.NewConsole(os.Stderr)
	if opts.NoProgress {
		sink = progress.Discard{}
	}

	logger.DebugKV(ctx, "Runner configured",
		"fork", f.ID, "extract_dir", cfg.ExtractDir, "download_dir", cfg.DownloadDir)

	return &runner{
		cfg:        cfg,
		fork:       f,
		client:     client,
		resolver:   release.NewResolver(client),
		downloader: transfer.NewDownloader(client),
		manager:    links.NewManager(cfg.ExtractDir, f),
		sink:       sink,
	}, nil
}

// archivePath is where the named asset is stored before extraction.
func (r *runner) archivePath(assetName string) string {
	return filepath.Join(r.cfg.DownloadDir, assetName)
}
