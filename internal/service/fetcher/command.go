package fetcher

import (
	"context"
	"fmt"

	"github.com/protonfetch/protonfetch/internal/errdefs"
	"github.com/protonfetch/protonfetch/internal/extract"
	"github.com/protonfetch/protonfetch/internal/links"
	"github.com/protonfetch/protonfetch/internal/logger"
	"github.com/protonfetch/protonfetch/internal/transfer"
)

// Options are inputs accepted by the fetcher entry points.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// ForkID selects the fork; empty means the configured default.
	ForkID string
	// Tag requests a specific release instead of the latest one.
	// A non-empty tag marks the operation as a manual release.
	Tag string
	// ExtractDir overrides the configured extraction root.
	ExtractDir string
	// DownloadDir overrides the configured archive directory.
	DownloadDir string
	// NoProgress suppresses the console progress indicator.
	NoProgress bool
}

// Run executes one fetch cycle: resolve, download, extract, converge.
// It is the entry point behind the default CLI command.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "fetch")

	r, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	if err = ensureOnlyInstance(ctx); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Resolving release", "fork", r.fork.ID)

	rel, err := r.resolver.Resolve(ctx, r.fork, opts.Tag)
	if err != nil {
		return err
	}

	manifest := transfer.Manifest{
		Repository: r.fork.Repository,
		Tag:        rel.Tag,
		AssetName:  rel.AssetName,
		URL:        rel.URL,
		LocalPath:  r.archivePath(rel.AssetName),
	}

	logger.InfoKV(ctx, "Downloading release archive", "asset", rel.AssetName)

	archivePath, err := r.downloader.Download(ctx, manifest, r.sink)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Extracting release archive", "target", r.cfg.ExtractDir)

	if err = extract.Extract(ctx, archivePath, r.cfg.ExtractDir, r.sink); err != nil {
		return err
	}

	logger.Info(ctx, "Reconciling version links")

	if err = r.manager.Converge(ctx, links.ConvergeOptions{ManualTag: rel.Tag, Manual: rel.Manual}); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Fetch complete", "fork", r.fork.ID, "tag", rel.Tag)

	return nil
}

// ListReleases returns up to limit release tags of the fork, newest first.
func ListReleases(ctx context.Context, opts *Options, limit int) ([]string, error) {
	ctx = logger.WithName(ctx, "list-releases")

	r, err := newRunner(ctx, opts)
	if err != nil {
		return nil, err
	}

	tags, err := r.client.ListReleaseTags(ctx, r.fork.Repository, limit)
	if err != nil {
		return nil, errdefs.Network(fmt.Errorf("list releases of %s: %w", r.fork.Repository, err))
	}

	return tags, nil
}

// ListLinks reports the current state of the fork's three stable links.
func ListLinks(ctx context.Context, opts *Options) ([]links.Link, error) {
	r, err := newRunner(logger.WithName(ctx, "list-links"), opts)
	if err != nil {
		return nil, err
	}

	return r.manager.List(), nil
}

// Remove deletes an installed release and re-converges the links.
func Remove(ctx context.Context, opts *Options, tag string) error {
	ctx = logger.WithName(ctx, "remove")

	r, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	if err = ensureOnlyInstance(ctx); err != nil {
		return err
	}

	return r.manager.Remove(ctx, tag)
}
