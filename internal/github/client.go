package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	gogithub "github.com/google/go-github/v59/github"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	// defaultWebBaseURL is the host serving release pages and asset
	// downloads, as opposed to the REST API.
	defaultWebBaseURL = "https://github.com"

	// maxPageBytes caps how much of a release page the scrape fallback
	// will read.
	maxPageBytes = 4 << 20

	// listPageSize is the page size used when listing releases.
	listPageSize = 100
)

var (
	errNoRedirect       = errors.New("no usable redirect location")
	errNoContentLength  = errors.New("no usable content length")
	errUnexpectedStatus = errors.New("unexpected http status")
)

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name string
	Size int64
	URL  string
}

// Client talks to GitHub's REST API and web surface.
//
// Metadata calls go through go-github on a retrying transport. The web
// surface (latest-release redirect, release pages, asset downloads) is
// reached directly because the API has no equivalent for the redirect probe
// and asset downloads should not be buffered by a retrying round tripper.
type Client struct {
	// WebBaseURL is the release page and download host. Overridable in tests.
	WebBaseURL string

	api *gogithub.Client
	// web performs small HEAD-style calls and never follows redirects:
	// redirect targets are the payload of the latest-tag probe.
	web *http.Client
	// stream performs page fetches and streamed downloads. It bounds the
	// response header wait rather than the whole transfer so large archives
	// are not cut off mid-stream.
	stream *http.Client
}

// NewClient builds a client. token may be empty; the GITHUB_TOKEN
// environment variable takes precedence either way. timeout bounds each
// network call.
func NewClient(token string, timeout time.Duration) *Client {
	if envToken := strings.TrimSpace(os.Getenv("GITHUB_TOKEN")); envToken != "" {
		token = envToken
	}

	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.HTTPClient.Timeout = timeout

	api := gogithub.NewClient(rc.StandardClient())
	if token != "" {
		api = api.WithAuthToken(token)
	}

	return &Client{
		WebBaseURL: defaultWebBaseURL,
		api:        api,
		web: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		stream: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: timeout,
			},
		},
	}
}

// splitRepository splits an owner/name coordinate.
func splitRepository(repository string) (string, string) {
	owner, name, found := strings.Cut(repository, "/")
	if !found {
		return "", ""
	}

	return owner, name
}

// LatestTag resolves the newest release tag of a repository by probing the
// canonical "latest" redirect endpoint and reading the redirect target.
func (c *Client) LatestTag(ctx context.Context, repository string) (string, error) {
	probeURL := fmt.Sprintf("%s/%s/releases/latest", c.WebBaseURL, repository)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, probeURL, http.NoBody)
	if err != nil {
		return "", err
	}

	resp, err := c.web.Do(req)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("%s: %w", probeURL, errNoRedirect)
	}

	tag := path.Base(location)
	if tag == "" || tag == "latest" || tag == "releases" {
		return "", fmt.Errorf("%s redirected to %q: %w", probeURL, location, errNoRedirect)
	}

	return tag, nil
}

// ReleaseAssets returns the assets attached to the release with the given tag.
func (c *Client) ReleaseAssets(ctx context.Context, repository, tag string) ([]Asset, error) {
	owner, name := splitRepository(repository)

	release, _, err := c.api.Repositories.GetReleaseByTag(ctx, owner, name, tag)
	if err != nil {
		return nil, err
	}

	assets := make([]Asset, 0, len(release.Assets))
	for _, a := range release.Assets {
		assets = append(assets, Asset{
			Name: a.GetName(),
			Size: int64(a.GetSize()),
			URL:  a.GetBrowserDownloadURL(),
		})
	}

	return assets, nil
}

// ListReleaseTags returns up to limit release tags, newest first.
// Draft releases are skipped.
func (c *Client) ListReleaseTags(ctx context.Context, repository string, limit int) ([]string, error) {
	owner, name := splitRepository(repository)
	tags := make([]string, 0, limit)

	opts := &gogithub.ListOptions{Page: 1, PerPage: listPageSize}
	for {
		releases, resp, err := c.api.Repositories.ListReleases(ctx, owner, name, opts)
		if err != nil {
			return nil, err
		}

		for _, release := range releases {
			if release.GetDraft() {
				continue
			}

			tags = append(tags, release.GetTagName())
			if limit > 0 && len(tags) >= limit {
				return tags, nil
			}
		}

		if resp.NextPage == 0 {
			return tags, nil
		}

		opts.Page = resp.NextPage
	}
}

// ReleasePage fetches the human-readable release page body for scraping.
func (c *Client) ReleasePage(ctx context.Context, repository, tag string) (string, error) {
	pageURL := fmt.Sprintf("%s/%s/releases/tag/%s", c.WebBaseURL, repository, tag)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return "", err
	}

	resp, err := c.stream.Do(req)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s, %s: %w", pageURL, resp.Status, errUnexpectedStatus)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// RemoteSize resolves the byte length of an asset via header inspection.
// Hosts front asset downloads with a transfer proxy, so when the first
// response carries no usable length one redirect hop is followed.
func (c *Client) RemoteSize(ctx context.Context, assetURL string) (int64, error) {
	size, location, err := c.headSize(ctx, assetURL)
	if err != nil {
		return 0, err
	}

	if size > 0 {
		return size, nil
	}

	if location == "" {
		return 0, fmt.Errorf("%s: %w", assetURL, errNoContentLength)
	}

	size, _, err = c.headSize(ctx, location)
	if err != nil {
		return 0, err
	}

	if size <= 0 {
		return 0, fmt.Errorf("%s: %w", location, errNoContentLength)
	}

	return size, nil
}

// headSize performs a single non-following HEAD request and returns the
// advertised length and redirect target, if any.
func (c *Client) headSize(ctx context.Context, rawURL string) (int64, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, http.NoBody)
	if err != nil {
		return 0, "", err
	}

	resp, err := c.web.Do(req)
	if err != nil {
		return 0, "", err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	return resp.ContentLength, resp.Header.Get("Location"), nil
}

// Fetch opens a streamed download of the given URL. The caller owns the
// returned body. The second result is the advertised length, or -1.
func (c *Client) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, 0, fmt.Errorf("%s, %s: %w", rawURL, resp.Status, errUnexpectedStatus)
	}

	return resp.Body, resp.ContentLength, nil
}

// DownloadURL builds the canonical asset download location.
func (c *Client) DownloadURL(repository, tag, assetName string) string {
	return fmt.Sprintf("%s/%s/releases/download/%s/%s", c.WebBaseURL, repository, tag, assetName)
}
