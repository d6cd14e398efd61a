package extract

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/protonfetch/protonfetch/internal/errdefs"
	"github.com/protonfetch/protonfetch/internal/logger"
	"github.com/protonfetch/protonfetch/internal/progress"
)

var (
	errUnsupportedArchive = errors.New("unsupported archive format")
	errUnsafeEntry        = errors.New("archive entry escapes target directory")
)

// stagingPattern names the temporary directory extraction happens in. The
// leading dot keeps a failed extraction from ever matching a fork's version
// naming filter.
const stagingPattern = ".extract-*"

// Extract unpacks the archive into targetDir, dispatching on the container
// format by filename suffix and reporting per-entry progress.
//
// Entries are written into a hidden staging directory and moved into place
// only after the whole archive has been read, so a failed extraction never
// leaves a directory that link convergence would mistake for a valid build.
func Extract(ctx context.Context, archivePath, targetDir string, sink progress.Sink) error {
	totalEntries, totalBytes, err := survey(archivePath)
	if err != nil {
		return errdefs.Extraction(fmt.Errorf("read %s: %w", archivePath, err))
	}

	if err = os.MkdirAll(targetDir, 0o755); err != nil {
		return errdefs.Extraction(fmt.Errorf("create target directory: %w", err))
	}

	staging, err := os.MkdirTemp(targetDir, stagingPattern)
	if err != nil {
		return errdefs.Extraction(fmt.Errorf("create staging directory: %w", err))
	}

	defer func() {
		_ = os.RemoveAll(staging)
	}()

	logger.InfoKV(ctx, "Extracting archive",
		"archive", archivePath, "entries", totalEntries, "bytes", totalBytes)

	sink.Start("Extracting "+filepath.Base(archivePath), totalBytes)
	defer sink.Finish()

	if err = unpack(ctx, archivePath, staging, sink); err != nil {
		return errdefs.Extraction(fmt.Errorf("extract %s: %w", archivePath, err))
	}

	if err = commit(staging, targetDir); err != nil {
		return errdefs.Extraction(fmt.Errorf("move extracted entries: %w", err))
	}

	return nil
}

// openArchive opens the archive and wraps it in the matching decompressor.
func openArchive(archivePath string) (io.ReadCloser, *tar.Reader, error) {
	file, err := os.Open(filepath.Clean(archivePath))
	if err != nil {
		return nil, nil, err
	}

	name := strings.ToLower(archivePath)

	switch {
	case strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz"):
		zr, err := gzip.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, nil, err
		}

		return struct {
			io.Reader
			io.Closer
		}{zr, file}, tar.NewReader(zr), nil
	case strings.HasSuffix(name, ".tar.xz"):
		xr, err := xz.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, nil, err
		}

		return struct {
			io.Reader
			io.Closer
		}{xr, file}, tar.NewReader(xr), nil
	default:
		_ = file.Close()
		return nil, nil, fmt.Errorf("%s: %w", filepath.Ext(archivePath), errUnsupportedArchive)
	}
}

// survey streams the archive once to count entries and payload bytes so the
// progress sink can be given totals.
func survey(archivePath string) (int, int64, error) {
	closer, tr, err := openArchive(archivePath)
	if err != nil {
		return 0, 0, err
	}

	defer func() {
		_ = closer.Close()
	}()

	var (
		entries int
		bytes   int64
	)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return entries, bytes, nil
		}

		if err != nil {
			return 0, 0, err
		}

		entries++

		if header.Typeflag == tar.TypeReg {
			bytes += header.Size
		}
	}
}

// unpack streams the archive a second time, writing entries under staging.
func unpack(ctx context.Context, archivePath, staging string, sink progress.Sink) error {
	closer, tr, err := openArchive(archivePath)
	if err != nil {
		return err
	}

	defer func() {
		_ = closer.Close()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		if err := writeEntry(staging, header, tr); err != nil {
			return err
		}

		if header.Typeflag == tar.TypeReg {
			sink.Advance(header.Size)
		}
	}
}

// writeEntry materializes a single tar entry under staging, rejecting paths
// and link targets that would escape it.
func writeEntry(staging string, header *tar.Header, r io.Reader) error {
	dest, err := safeJoin(staging, header.Name)
	if err != nil {
		return err
	}

	switch header.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(dest, 0o755)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}

		file, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, header.FileInfo().Mode().Perm())
		if err != nil {
			return err
		}

		if _, err = io.Copy(file, r); err != nil {
			_ = file.Close()
			return err
		}

		return file.Close()
	case tar.TypeSymlink:
		// Proton builds link files/* into dist/*; relative targets are
		// expected, absolute or escaping ones are not.
		if filepath.IsAbs(header.Linkname) {
			return fmt.Errorf("%s -> %s: %w", header.Name, header.Linkname, errUnsafeEntry)
		}

		if _, err := safeJoin(staging, filepath.Join(filepath.Dir(header.Name), header.Linkname)); err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}

		// Re-extraction over leftovers.
		_ = os.Remove(dest)

		return os.Symlink(header.Linkname, dest)
	case tar.TypeLink:
		target, err := safeJoin(staging, header.Linkname)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}

		_ = os.Remove(dest)

		return os.Link(target, dest)
	default:
		// Character devices and the like have no business in a Proton
		// archive; skip them rather than fail the whole build.
		return nil
	}
}

// safeJoin joins name onto base and guarantees the result stays inside base.
func safeJoin(base, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%s: %w", name, errUnsafeEntry)
	}

	dest := filepath.Join(base, name)

	rel, err := filepath.Rel(base, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", name, errUnsafeEntry)
	}

	return dest, nil
}

// commit moves every top-level entry out of staging into targetDir,
// replacing entries left by a previous extraction of the same build.
func commit(staging, targetDir string) error {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		dest := filepath.Join(targetDir, entry.Name())

		if _, err := os.Lstat(dest); err == nil {
			if err := os.RemoveAll(dest); err != nil {
				return err
			}
		}

		if err := os.Rename(filepath.Join(staging, entry.Name()), dest); err != nil {
			return err
		}
	}

	return nil
}
