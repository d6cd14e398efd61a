package selfupdate

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
	goupdate "github.com/doitdistributed/go-update"

	"github.com/protonfetch/protonfetch/internal/config"
	"github.com/protonfetch/protonfetch/internal/errdefs"
	"github.com/protonfetch/protonfetch/internal/github"
	"github.com/protonfetch/protonfetch/internal/logger"
	"github.com/protonfetch/protonfetch/internal/version"
)

// selfRepository is where protonfetch publishes its own releases.
const selfRepository = "protonfetch/protonfetch"

var errNoPlatformAsset = errors.New("release has no asset for this platform")

// Options are inputs accepted by the self-update entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
}

// Run checks the newest published protonfetch release and replaces the
// running binary when it is newer than the current build.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "self-update")

	cfg, err := config.LoadOrInit(opts.ConfigPath)
	if err != nil {
		return err
	}

	client := github.NewClient(cfg.GitHubToken, cfg.Timeout)

	tag, err := client.LatestTag(ctx, selfRepository)
	if err != nil {
		return errdefs.Network(fmt.Errorf("resolve latest protonfetch release: %w", err))
	}

	newer, err := isNewer(version.Short(), tag)
	if err != nil {
		return err
	}

	if !newer {
		logger.InfoKV(ctx, "Already up to date", "version", version.Short())
		return nil
	}

	logger.InfoKV(ctx, "Updating", "from", version.Short(), "to", tag)

	assets, err := client.ReleaseAssets(ctx, selfRepository, tag)
	if err != nil {
		return errdefs.Network(fmt.Errorf("list assets of %s: %w", tag, err))
	}

	assetName := platformAssetName()

	var downloadURL string

	for _, asset := range assets {
		if asset.Name == assetName {
			downloadURL = asset.URL
			break
		}
	}

	if downloadURL == "" {
		return fmt.Errorf("%s %s: %w", tag, assetName, errNoPlatformAsset)
	}

	body, _, err := client.Fetch(ctx, downloadURL)
	if err != nil {
		return errdefs.Network(fmt.Errorf("download %s: %w", assetName, err))
	}

	defer func() {
		_ = body.Close()
	}()

	if err = goupdate.Apply(body, goupdate.Options{TargetMode: 0o755}); err != nil {
		if rollbackErr := goupdate.RollbackError(err); rollbackErr != nil {
			return fmt.Errorf("apply update failed and rollback failed, binary may be broken: %w", rollbackErr)
		}

		return fmt.Errorf("apply update: %w", err)
	}

	logger.InfoKV(ctx, "Updated", "version", tag)

	return nil
}

// isNewer reports whether the published tag is a newer semantic version
// than the running build.
func isNewer(current, tag string) (bool, error) {
	currentVersion, err := semver.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return false, fmt.Errorf("parse build version %q: %w", current, err)
	}

	tagVersion, err := semver.NewVersion(strings.TrimPrefix(tag, "v"))
	if err != nil {
		return false, fmt.Errorf("parse release tag %q: %w", tag, err)
	}

	return tagVersion.GreaterThan(currentVersion), nil
}

// platformAssetName is the release asset naming convention for binaries.
func platformAssetName() string {
	name := fmt.Sprintf("protonfetch_%s_%s", runtime.GOOS, runtime.GOARCH)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	return name
}
