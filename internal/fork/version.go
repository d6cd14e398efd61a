package fork

import (
	"fmt"
	"strconv"
	"strings"
)

// Key is the parsed, totally ordered representation of a version tag.
//
// Real versions carry the fork's label and numeric components. Tags that do
// not match the fork's grammar degrade to a sentinel key whose Label is the
// raw tag itself: it never equals a real version and orders purely by string
// comparison, so unparseable input stays sortable without ever winning.
type Key struct {
	Label string
	Major int
	Minor int
	Patch int

	// sentinel marks keys built from unparseable tags.
	sentinel bool
}

// IsSentinel reports whether the key was built from an unparseable tag.
func (k Key) IsSentinel() bool {
	return k.sentinel
}

// ParseTag parses a release tag (or an extracted directory name) into a Key
// according to the fork's grammar.
func (f *Fork) ParseTag(tag string) Key {
	groups := f.tagPattern.FindStringSubmatch(tag)

	switch f.grammar {
	case grammarTwoPart:
		if groups == nil {
			break
		}

		return Key{
			Label: f.label,
			Major: mustAtoi(groups[1]),
			Patch: mustAtoi(groups[2]),
		}
	case grammarDotted:
		if groups == nil {
			break
		}

		return Key{
			Label: f.label,
			Major: mustAtoi(groups[2]),
			Minor: mustAtoi(groups[3]),
			Patch: mustAtoi(groups[4]),
		}
	}

	return Key{Label: tag, sentinel: true}
}

// MatchDir parses a directory name, reporting whether it names a release of
// this fork. Non-matching names are excluded from candidate scans entirely.
func (f *Fork) MatchDir(name string) (Key, bool) {
	if !f.tagPattern.MatchString(name) {
		return Key{}, false
	}

	return f.ParseTag(name), true
}

// Compare orders keys lexicographically over (Label, Major, Minor, Patch).
// It returns -1, 0 or 1 and is a strict total order. Sentinel keys always
// order below real versions and among themselves by their raw tag.
func (k Key) Compare(other Key) int {
	if k.sentinel != other.sentinel {
		if k.sentinel {
			return -1
		}

		return 1
	}

	if c := strings.Compare(k.Label, other.Label); c != 0 {
		return c
	}

	for _, pair := range [3][2]int{
		{k.Major, other.Major},
		{k.Minor, other.Minor},
		{k.Patch, other.Patch},
	} {
		if pair[0] != pair[1] {
			if pair[0] < pair[1] {
				return -1
			}

			return 1
		}
	}

	return 0
}

// String renders the key for logging and map keys.
func (k Key) String() string {
	return fmt.Sprintf("%s/%d.%d.%d", k.Label, k.Major, k.Minor, k.Patch)
}

// mustAtoi converts digits already validated by the tag pattern.
func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic(fmt.Sprintf("tag pattern matched non-numeric component %q", s))
	}

	return n
}
