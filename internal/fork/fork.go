package fork

import (
	"fmt"
	"regexp"
	"strings"
)

// ID identifies a supported fork.
type ID string

// Supported forks.
const (
	GEProton ID = "GE-Proton"
	ProtonEM ID = "Proton-EM"
)

// grammar selects the tag parsing rule for a fork.
type grammar int

const (
	// grammarTwoPart parses Prefix<major>-<patch> tags, e.g. GE-Proton10-20.
	grammarTwoPart grammar = iota
	// grammarDotted parses Prefix-<major>.<minor>-<patch> tags, e.g. EM-10.0-30.
	grammarDotted
)

// Fork describes an independently versioned Proton product line.
// All fields are fixed at compile time; a Fork value is never mutated.
type Fork struct {
	// ID is the fork identifier as shown to the user.
	ID ID
	// Repository is the owner/name coordinate on the release host.
	Repository string
	// ArchiveSuffix is the container extension of published assets.
	ArchiveSuffix string

	grammar grammar
	// label is the prefix component of parsed version keys.
	label string
	// tagPattern matches release tags and extracted directory names.
	tagPattern *regexp.Regexp
	// dirPrefix is an optional namespacing prefix seen on extracted
	// directories ("proton-EM-10.0-30" next to "EM-10.0-30").
	dirPrefix string
	// assetPrefix is prepended to the tag when building the asset filename.
	assetPrefix string
	// linkBase is the name of the primary symlink; fallback links derive
	// from it.
	linkBase string
}

var (
	geProton = &Fork{
		ID:            GEProton,
		Repository:    "GloriousEggroll/proton-ge-custom",
		ArchiveSuffix: ".tar.gz",
		grammar:       grammarTwoPart,
		label:         "GE-Proton",
		tagPattern:    regexp.MustCompile(`^GE-Proton(\d+)-(\d+)$`),
		linkBase:      "GE-Proton",
	}

	protonEM = &Fork{
		ID:            ProtonEM,
		Repository:    "Etaash-mathamsetty/Proton",
		ArchiveSuffix: ".tar.xz",
		grammar:       grammarDotted,
		label:         "EM",
		tagPattern:    regexp.MustCompile(`^(proton-)?EM-(\d+)\.(\d+)-(\d+)$`),
		dirPrefix:     "proton-",
		assetPrefix:   "proton-",
		linkBase:      "Proton-EM",
	}

	forks = []*Fork{geProton, protonEM}
)

// All returns the supported forks in declaration order.
func All() []*Fork {
	return forks
}

// ByID resolves a fork by its identifier (case-insensitive).
func ByID(id string) (*Fork, error) {
	for _, f := range forks {
		if strings.EqualFold(string(f.ID), id) {
			return f, nil
		}
	}

	return nil, fmt.Errorf("unknown fork %q (supported: %s)", id, strings.Join(IDs(), ", "))
}

// IDs returns the identifiers of all supported forks.
func IDs() []string {
	ids := make([]string, 0, len(forks))
	for _, f := range forks {
		ids = append(ids, string(f.ID))
	}

	return ids
}

// AssetName returns the deterministic archive filename published for tag.
func (f *Fork) AssetName(tag string) string {
	return f.assetPrefix + strings.TrimPrefix(tag, f.assetPrefix) + f.ArchiveSuffix
}

// DirNames returns the directory names a release with the given tag may
// extract to, preferred variant first.
func (f *Fork) DirNames(tag string) []string {
	tag = strings.TrimPrefix(tag, f.dirPrefix)
	if f.dirPrefix == "" {
		return []string{tag}
	}

	return []string{tag, f.dirPrefix + tag}
}

// HasDirPrefix reports whether name carries the fork's namespacing prefix.
func (f *Fork) HasDirPrefix(name string) bool {
	return f.dirPrefix != "" && strings.HasPrefix(name, f.dirPrefix)
}

// LinkNames returns the three stable link names, best version first.
func (f *Fork) LinkNames() [3]string {
	return [3]string{
		f.linkBase,
		f.linkBase + "-Fallback",
		f.linkBase + "-Fallback2",
	}
}
