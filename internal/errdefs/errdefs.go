package errdefs

import (
	"errors"
	"fmt"
)

// The three terminal failure kinds surfaced to the operator.
// Every user-visible error produced by the pipeline wraps exactly one of them.
var (
	// ErrNetwork covers release resolution, size queries and downloads.
	ErrNetwork = errors.New("network failure")
	// ErrExtraction covers unreadable or partially extracted archives.
	ErrExtraction = errors.New("extraction failure")
	// ErrLinkManagement covers release removal and link reconciliation failures.
	ErrLinkManagement = errors.New("link management failure")
)

// Network tags err as a network failure, keeping the original chain intact.
func Network(err error) error {
	return tag(ErrNetwork, err)
}

// Networkf builds a network failure from a format string.
func Networkf(format string, args ...any) error {
	return tag(ErrNetwork, fmt.Errorf(format, args...))
}

// Extraction tags err as an extraction failure.
func Extraction(err error) error {
	return tag(ErrExtraction, err)
}

// LinkManagement tags err as a link management failure.
func LinkManagement(err error) error {
	return tag(ErrLinkManagement, err)
}

// LinkManagementf builds a link management failure from a format string.
func LinkManagementf(format string, args ...any) error {
	return tag(ErrLinkManagement, fmt.Errorf(format, args...))
}

// IsNetwork reports whether err is classified as a network failure.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsExtraction reports whether err is classified as an extraction failure.
func IsExtraction(err error) bool {
	return errors.Is(err, ErrExtraction)
}

// IsLinkManagement reports whether err is classified as a link management failure.
func IsLinkManagement(err error) bool {
	return errors.Is(err, ErrLinkManagement)
}

// tag wraps err with the given kind unless it already carries one.
func tag(kind, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrExtraction) ||
		errors.Is(err, ErrLinkManagement) {
		return err
	}

	return fmt.Errorf("%w: %w", kind, err)
}
