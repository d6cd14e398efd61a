package release

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/protonfetch/protonfetch/internal/errdefs"
	"github.com/protonfetch/protonfetch/internal/fork"
	"github.com/protonfetch/protonfetch/internal/github"
	"github.com/protonfetch/protonfetch/internal/logger"
)

// MetadataAPI is the narrow release-host surface the resolver depends on.
// *github.Client satisfies it; tests supply a fake.
type MetadataAPI interface {
	LatestTag(ctx context.Context, repository string) (string, error)
	ReleaseAssets(ctx context.Context, repository, tag string) ([]github.Asset, error)
	ReleasePage(ctx context.Context, repository, tag string) (string, error)
	DownloadURL(repository, tag, assetName string) string
}

// Release is a resolved, downloadable build.
type Release struct {
	Fork      *fork.Fork
	Tag       string
	AssetName string
	URL       string
	// Manual marks releases requested by an explicit tag rather than the
	// resolved latest one.
	Manual bool
}

// Resolver turns a fork plus an optional explicit tag into a concrete asset.
type Resolver struct {
	api MetadataAPI
}

// NewResolver builds a resolver on top of the given metadata API.
func NewResolver(api MetadataAPI) *Resolver {
	return &Resolver{api: api}
}

// assetStrategy attempts to determine the asset filename for a tag.
// Strategies are tried in order; the first success wins.
type assetStrategy struct {
	name    string
	resolve func(ctx context.Context, f *fork.Fork, tag string) (string, error)
}

// Resolve determines the release tag (unless explicitly given) and resolves
// it to a downloadable asset. All failures are network failures.
func (r *Resolver) Resolve(ctx context.Context, f *fork.Fork, explicitTag string) (*Release, error) {
	tag := strings.TrimSpace(explicitTag)
	manual := tag != ""

	if !manual {
		latest, err := r.api.LatestTag(ctx, f.Repository)
		if err != nil {
			return nil, errdefs.Network(fmt.Errorf("resolve latest tag of %s: %w", f.Repository, err))
		}

		tag = latest

		logger.InfoKV(ctx, "Resolved latest release", "fork", f.ID, "tag", tag)
	} else {
		logger.InfoKV(ctx, "Using explicitly requested release", "fork", f.ID, "tag", tag)
	}

	assetName, err := r.resolveAsset(ctx, f, tag)
	if err != nil {
		return nil, err
	}

	return &Release{
		Fork:      f,
		Tag:       tag,
		AssetName: assetName,
		URL:       r.api.DownloadURL(f.Repository, tag, assetName),
		Manual:    manual,
	}, nil
}

// resolveAsset walks the strategy chain: structured metadata first, page
// scraping as the fallback.
func (r *Resolver) resolveAsset(ctx context.Context, f *fork.Fork, tag string) (string, error) {
	strategies := []assetStrategy{
		{name: "release metadata", resolve: r.assetFromMetadata},
		{name: "release page scrape", resolve: r.assetFromPage},
	}

	var failures []error

	for _, strategy := range strategies {
		assetName, err := strategy.resolve(ctx, f, tag)
		if err == nil {
			logger.DebugKV(ctx, "Asset resolved", "strategy", strategy.name, "asset", assetName)
			return assetName, nil
		}

		logger.WarnKV(ctx, "Asset resolution strategy failed",
			"strategy", strategy.name, "tag", tag, "error", err)

		failures = append(failures, fmt.Errorf("%s: %w", strategy.name, err))
	}

	return "", errdefs.Network(fmt.Errorf("no asset found for %s %s: %w", f.ID, tag, errors.Join(failures...)))
}

// assetFromMetadata queries the structured asset list and picks the first
// asset carrying the fork's archive suffix, falling back to the first asset
// listed.
func (r *Resolver) assetFromMetadata(ctx context.Context, f *fork.Fork, tag string) (string, error) {
	assets, err := r.api.ReleaseAssets(ctx, f.Repository, tag)
	if err != nil {
		return "", err
	}

	if len(assets) == 0 {
		return "", fmt.Errorf("release %s has no assets", tag)
	}

	for _, asset := range assets {
		if strings.HasSuffix(asset.Name, f.ArchiveSuffix) {
			return asset.Name, nil
		}
	}

	return assets[0].Name, nil
}

// assetFromPage fetches the human release page and tests for the literal
// presence of the deterministically constructed asset filename.
func (r *Resolver) assetFromPage(ctx context.Context, f *fork.Fork, tag string) (string, error) {
	body, err := r.api.ReleasePage(ctx, f.Repository, tag)
	if err != nil {
		return "", err
	}

	assetName := f.AssetName(tag)
	if !strings.Contains(body, assetName) {
		return "", fmt.Errorf("release page does not mention %s", assetName)
	}

	return assetName, nil
}
