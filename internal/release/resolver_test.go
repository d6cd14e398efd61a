package release

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protonfetch/protonfetch/internal/errdefs"
	"github.com/protonfetch/protonfetch/internal/fork"
	"github.com/protonfetch/protonfetch/internal/github"
)

// fakeAPI is a scriptable MetadataAPI.
type fakeAPI struct {
	latestTag  string
	latestErr  error
	assets     []github.Asset
	assetsErr  error
	page       string
	pageErr    error
	latestHits int
}

func (f *fakeAPI) LatestTag(context.Context, string) (string, error) {
	f.latestHits++
	return f.latestTag, f.latestErr
}

func (f *fakeAPI) ReleaseAssets(context.Context, string, string) ([]github.Asset, error) {
	return f.assets, f.assetsErr
}

func (f *fakeAPI) ReleasePage(context.Context, string, string) (string, error) {
	return f.page, f.pageErr
}

func (f *fakeAPI) DownloadURL(repository, tag, assetName string) string {
	return fmt.Sprintf("https://example.test/%s/%s/%s", repository, tag, assetName)
}

func geFork(t *testing.T) *fork.Fork {
	t.Helper()

	f, err := fork.ByID("GE-Proton")
	require.NoError(t, err)

	return f
}

// TestResolveLatest resolves the tag via the redirect probe and picks the
// suffix-matching asset.
func TestResolveLatest(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		latestTag: "GE-Proton10-20",
		assets: []github.Asset{
			{Name: "GE-Proton10-20.sha512sum", Size: 100},
			{Name: "GE-Proton10-20.tar.gz", Size: 400 << 20},
		},
	}

	rel, err := NewResolver(api).Resolve(context.Background(), geFork(t), "")
	require.NoError(t, err)
	require.Equal(t, "GE-Proton10-20", rel.Tag)
	require.Equal(t, "GE-Proton10-20.tar.gz", rel.AssetName)
	require.False(t, rel.Manual)
	require.Contains(t, rel.URL, "GE-Proton10-20.tar.gz")
}

// TestResolveExplicitTagIsManual skips the latest probe entirely.
func TestResolveExplicitTagIsManual(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		assets: []github.Asset{{Name: "GE-Proton9-1.tar.gz"}},
	}

	rel, err := NewResolver(api).Resolve(context.Background(), geFork(t), "GE-Proton9-1")
	require.NoError(t, err)
	require.True(t, rel.Manual)
	require.Equal(t, "GE-Proton9-1", rel.Tag)
	require.Zero(t, api.latestHits)
}

// TestResolveFallsBackToFirstAsset covers releases with no suffix match.
func TestResolveFallsBackToFirstAsset(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		assets: []github.Asset{{Name: "weird-artifact.zip"}},
	}

	rel, err := NewResolver(api).Resolve(context.Background(), geFork(t), "GE-Proton10-20")
	require.NoError(t, err)
	require.Equal(t, "weird-artifact.zip", rel.AssetName)
}

// TestResolveScrapeFallback exercises the page-scrape strategy when the
// structured lookup fails outright.
func TestResolveScrapeFallback(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		assetsErr: errors.New("api rate limited"),
		page:      `<a href="/x/GE-Proton10-20.tar.gz">GE-Proton10-20.tar.gz</a>`,
	}

	rel, err := NewResolver(api).Resolve(context.Background(), geFork(t), "GE-Proton10-20")
	require.NoError(t, err)
	require.Equal(t, "GE-Proton10-20.tar.gz", rel.AssetName)
}

// TestResolveBothStrategiesFail surfaces a network failure.
func TestResolveBothStrategiesFail(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		assetsErr: errors.New("api down"),
		page:      "<html>nothing here</html>",
	}

	_, err := NewResolver(api).Resolve(context.Background(), geFork(t), "GE-Proton10-20")
	require.Error(t, err)
	require.True(t, errdefs.IsNetwork(err))
}

// TestResolveLatestProbeFailure surfaces a network failure from tag resolution.
func TestResolveLatestProbeFailure(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{latestErr: errors.New("no route to host")}

	_, err := NewResolver(api).Resolve(context.Background(), geFork(t), "")
	require.True(t, errdefs.IsNetwork(err))
}
