package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/protonfetch/protonfetch/internal/errdefs"
	"github.com/protonfetch/protonfetch/internal/logger"
	"github.com/protonfetch/protonfetch/internal/progress"
)

var errTruncatedDownload = errors.New("downloaded size does not match remote size")

// Manifest drives one idempotent fetch. It is derived fresh per invocation
// and never persisted.
type Manifest struct {
	Repository string
	Tag        string
	AssetName  string
	URL        string
	LocalPath  string
}

// Transport is the narrow network surface the downloader depends on.
// *github.Client satisfies it; tests supply a fake.
type Transport interface {
	RemoteSize(ctx context.Context, url string) (int64, error)
	Fetch(ctx context.Context, url string) (io.ReadCloser, int64, error)
}

// Downloader fetches release assets, skipping transfers whose result is
// already on disk.
type Downloader struct {
	transport Transport
}

// NewDownloader builds a downloader on top of the given transport.
func NewDownloader(transport Transport) *Downloader {
	return &Downloader{transport: transport}
}

// Download fetches the manifest's asset to its local path and returns that
// path. When a local file of identical size already exists the transfer is
// skipped entirely; size equality is the sole freshness signal, checksums
// are deliberately not computed. The file is committed with a rename so an
// interrupted transfer never masquerades as a finished one.
func (d *Downloader) Download(ctx context.Context, m Manifest, sink progress.Sink) (string, error) {
	remoteSize, err := d.transport.RemoteSize(ctx, m.URL)
	if err != nil {
		return "", errdefs.Network(fmt.Errorf("query size of %s: %w", m.AssetName, err))
	}

	if info, statErr := os.Stat(m.LocalPath); statErr == nil && info.Size() == remoteSize {
		logger.InfoKV(ctx, "Archive already downloaded, skipping transfer",
			"path", m.LocalPath, "size", remoteSize)

		return m.LocalPath, nil
	}

	if err = os.MkdirAll(filepath.Dir(m.LocalPath), 0o755); err != nil {
		return "", errdefs.Network(fmt.Errorf("create download directory: %w", err))
	}

	body, length, err := d.transport.Fetch(ctx, m.URL)
	if err != nil {
		return "", errdefs.Network(fmt.Errorf("fetch %s: %w", m.AssetName, err))
	}

	defer func() {
		_ = body.Close()
	}()

	if length <= 0 {
		length = remoteSize
	}

	if err = d.writeTemp(ctx, m, body, length, remoteSize, sink); err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Archive downloaded", "path", m.LocalPath, "size", remoteSize)

	return m.LocalPath, nil
}

// writeTemp streams the body into a temp file next to the target and renames
// it into place only after the byte count matches the declared remote size,
// reporting progress per chunk.
func (d *Downloader) writeTemp(ctx context.Context, m Manifest, body io.Reader, total, want int64, sink progress.Sink) error {
	dir := filepath.Dir(m.LocalPath)

	tmp, err := os.CreateTemp(dir, filepath.Base(m.LocalPath)+".part-*")
	if err != nil {
		return errdefs.Network(fmt.Errorf("create temp file: %w", err))
	}

	tmpName := tmp.Name()

	discard := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	sink.Start("Downloading "+m.AssetName, total)
	defer sink.Finish()

	written, err := io.Copy(io.MultiWriter(tmp, sinkWriter{sink}), contextReader{ctx, body})
	if err != nil {
		discard()
		return errdefs.Network(fmt.Errorf("transfer %s: %w", m.AssetName, err))
	}

	if written != want {
		discard()
		return errdefs.Network(fmt.Errorf("%s: got %d bytes, want %d: %w",
			m.AssetName, written, want, errTruncatedDownload))
	}

	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errdefs.Network(fmt.Errorf("close temp file: %w", err))
	}

	if err = os.Rename(tmpName, m.LocalPath); err != nil {
		_ = os.Remove(tmpName)
		return errdefs.Network(fmt.Errorf("commit download: %w", err))
	}

	return nil
}

// sinkWriter adapts a progress sink to io.Writer for per-chunk updates.
type sinkWriter struct {
	sink progress.Sink
}

func (w sinkWriter) Write(p []byte) (int, error) {
	w.sink.Advance(int64(len(p)))
	return len(p), nil
}

// contextReader aborts a blocking copy once the context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}

	return r.r.Read(p)
}
