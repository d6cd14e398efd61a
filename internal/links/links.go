package links

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/protonfetch/protonfetch/internal/errdefs"
	"github.com/protonfetch/protonfetch/internal/fork"
	"github.com/protonfetch/protonfetch/internal/logger"
)

// maxLinks is the number of stable pointers maintained per fork.
const maxLinks = 3

// Candidate is a discovered build directory paired with its parsed version.
type Candidate struct {
	// Name is the directory name under the extraction root.
	Name string
	// Key is the parsed version used for ordering.
	Key fork.Key
}

// Link reports the state of one stable pointer.
type Link struct {
	// Name is the link name under the extraction root.
	Name string
	// Target is the directory the link points at, empty when absent.
	Target string
}

// ConvergeOptions tune a convergence pass.
type ConvergeOptions struct {
	// ManualTag is a tag that was fetched out of band and should join the
	// candidate set even though a routine scan may not surface it.
	ManualTag string
	// Manual enables the ManualTag lookup.
	Manual bool
}

// Manager reconciles the three stable links of one fork against the build
// directories present under the extraction root. All state is derived fresh
// from the filesystem on every call; the directory tree is the only durable
// store.
type Manager struct {
	root string
	fork *fork.Fork
}

// NewManager builds a manager for the given extraction root and fork.
func NewManager(root string, f *fork.Fork) *Manager {
	return &Manager{root: root, fork: f}
}

// Scan lists the release candidates currently on disk. Directory names not
// matching the fork's grammar are excluded outright, and directories parsing
// to the same version are deduplicated to a single representative.
func (m *Manager) Scan() ([]Candidate, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, errdefs.LinkManagement(fmt.Errorf("scan %s: %w", m.root, err))
	}

	byKey := make(map[fork.Key]string)

	for _, entry := range entries {
		// Symlinks (the stable pointers themselves) and stray files
		// never count as candidates.
		if !entry.IsDir() {
			continue
		}

		key, ok := m.fork.MatchDir(entry.Name())
		if !ok {
			continue
		}

		if existing, dup := byKey[key]; dup {
			byKey[key] = m.preferred(existing, entry.Name())
		} else {
			byKey[key] = entry.Name()
		}
	}

	candidates := make([]Candidate, 0, len(byKey))
	for key, name := range byKey {
		candidates = append(candidates, Candidate{Name: name, Key: key})
	}

	sortCandidates(candidates)

	return candidates, nil
}

// preferred picks the surviving representative between two directories that
// parse to the same version: an unprefixed name wins, then the shorter name,
// then the lexicographically smaller one. Deterministic across runs.
func (m *Manager) preferred(a, b string) string {
	aPrefixed, bPrefixed := m.fork.HasDirPrefix(a), m.fork.HasDirPrefix(b)

	switch {
	case aPrefixed != bPrefixed:
		if bPrefixed {
			return a
		}

		return b
	case len(a) != len(b):
		if len(a) < len(b) {
			return a
		}

		return b
	case strings.Compare(a, b) <= 0:
		return a
	default:
		return b
	}
}

// sortCandidates orders candidates by descending version.
func sortCandidates(candidates []Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Key.Compare(candidates[j].Key) > 0
	})
}

// Converge reconciles the link set so the three stable names point at the
// three newest builds. It mutates only links whose target is wrong and is
// idempotent: a second pass over unchanged state performs no filesystem
// writes. With zero candidates the pass is a logged no-op and any existing
// links are preserved.
func (m *Manager) Converge(ctx context.Context, opts ConvergeOptions) error {
	candidates, err := m.Scan()
	if err != nil {
		return err
	}

	if opts.Manual && opts.ManualTag != "" {
		candidates = m.addManualCandidate(ctx, candidates, opts.ManualTag)
	}

	if len(candidates) == 0 {
		logger.InfoKV(ctx, "No build directories found, leaving links untouched",
			"root", m.root, "fork", m.fork.ID)

		return nil
	}

	top := candidates
	if len(top) > maxLinks {
		top = top[:maxLinks]
	}

	names := m.fork.LinkNames()
	desired := make(map[string]string, len(top))

	for i, candidate := range top {
		desired[names[i]] = candidate.Name
	}

	for _, name := range names {
		m.reconcileLink(ctx, name, desired[name])
	}

	if opts.Manual {
		m.warnManualUnlinked(ctx, desired, opts.ManualTag)
	}

	return nil
}

// addManualCandidate inserts the directory of an explicitly fetched tag into
// the candidate set unless its version is already represented. The manual
// build still competes on version order: one older than the installed top
// three simply falls out of the selection.
func (m *Manager) addManualCandidate(ctx context.Context, candidates []Candidate, tag string) []Candidate {
	key := m.fork.ParseTag(tag)

	for _, candidate := range candidates {
		if candidate.Key.Compare(key) == 0 {
			return candidates
		}
	}

	for _, name := range m.fork.DirNames(tag) {
		info, err := os.Stat(filepath.Join(m.root, name))
		if err != nil || !info.IsDir() {
			continue
		}

		logger.DebugKV(ctx, "Including manually fetched build", "dir", name, "tag", tag)

		candidates = append(candidates, Candidate{Name: name, Key: key})
		sortCandidates(candidates)

		return candidates
	}

	logger.WarnKV(ctx, "Manually requested build has no directory on disk", "tag", tag)

	return candidates
}

// reconcileLink makes one link match its intended target with minimal churn.
// want is empty when the link should be absent. Creation failures are logged
// and skipped so the remaining links still converge.
func (m *Manager) reconcileLink(ctx context.Context, name, want string) {
	linkPath := filepath.Join(m.root, name)

	info, err := os.Lstat(linkPath)
	exists := err == nil

	if exists && info.Mode()&os.ModeSymlink != 0 {
		current, readErr := os.Readlink(linkPath)
		if readErr == nil && current == want {
			// Already correct; idempotent no-op.
			return
		}
	}

	if exists {
		if info.Mode()&os.ModeSymlink != 0 {
			err = os.Remove(linkPath)
		} else {
			// The link name is reserved; a real directory squatting on
			// it is removed recursively.
			logger.WarnKV(ctx, "Link name occupied by a real directory, removing it", "path", linkPath)
			err = os.RemoveAll(linkPath)
		}

		if err != nil {
			logger.WarnKV(ctx, "Unable to clear link name, skipping", "path", linkPath, "error", err)
			return
		}
	}

	if want == "" {
		return
	}

	// Relative link within the extraction root, so the root stays movable.
	if err = os.Symlink(want, linkPath); err != nil {
		logger.WarnKV(ctx, "Unable to create link, skipping", "path", linkPath, "error", err)
		return
	}

	logger.InfoKV(ctx, "Link updated", "link", name, "target", want)
}

// warnManualUnlinked flags the corner case of a manual fetch that did not
// win any of the three links.
func (m *Manager) warnManualUnlinked(ctx context.Context, desired map[string]string, tag string) {
	key := m.fork.ParseTag(tag)

	for _, target := range desired {
		if m.fork.ParseTag(target).Compare(key) == 0 {
			return
		}
	}

	logger.WarnKV(ctx, "Manually fetched build is older than the three linked versions, no link points at it",
		"tag", tag)
}

// Remove deletes the build directory of the given tag, removes links left
// dangling by the deletion, and re-converges so freed slots are backfilled
// from the remaining candidates.
func (m *Manager) Remove(ctx context.Context, tag string) error {
	var dirName string

	for _, name := range m.fork.DirNames(tag) {
		if info, err := os.Stat(filepath.Join(m.root, name)); err == nil && info.IsDir() {
			dirName = name
			break
		}
	}

	if dirName == "" {
		return errdefs.LinkManagementf("release %s is not installed under %s", tag, m.root)
	}

	// Identify links resolving to the doomed directory before deleting it.
	var dangling []string

	for _, name := range m.fork.LinkNames() {
		if target, err := os.Readlink(filepath.Join(m.root, name)); err == nil && target == dirName {
			dangling = append(dangling, name)
		}
	}

	if err := os.RemoveAll(filepath.Join(m.root, dirName)); err != nil {
		return errdefs.LinkManagement(fmt.Errorf("remove %s: %w", dirName, err))
	}

	logger.InfoKV(ctx, "Release removed", "dir", dirName, "tag", tag)

	for _, name := range dangling {
		if err := os.Remove(filepath.Join(m.root, name)); err != nil {
			logger.WarnKV(ctx, "Unable to remove dangling link", "link", name, "error", err)
		}
	}

	return m.Converge(ctx, ConvergeOptions{})
}

// List reports the current state of the three links without mutating
// anything. Absent links, and names occupied by something that is not a
// symlink, are included with an empty target.
func (m *Manager) List() []Link {
	names := m.fork.LinkNames()
	result := make([]Link, 0, len(names))

	for _, name := range names {
		target, err := os.Readlink(filepath.Join(m.root, name))
		if err != nil {
			target = ""
		}

		result = append(result, Link{Name: name, Target: target})
	}

	return result
}
