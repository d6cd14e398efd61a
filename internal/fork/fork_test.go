package fork

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestByID resolves forks case-insensitively and rejects unknown ones.
func TestByID(t *testing.T) {
	t.Parallel()

	f, err := ByID("ge-proton")
	require.NoError(t, err)
	require.Equal(t, GEProton, f.ID)

	f, err = ByID("Proton-EM")
	require.NoError(t, err)
	require.Equal(t, ProtonEM, f.ID)

	_, err = ByID("Wine-Stable")
	require.Error(t, err)
}

// TestParseTagTwoPart covers the GE-Proton grammar.
func TestParseTagTwoPart(t *testing.T) {
	t.Parallel()

	f, _ := ByID("GE-Proton")

	key := f.ParseTag("GE-Proton10-20")
	require.Equal(t, Key{Label: "GE-Proton", Major: 10, Patch: 20}, key)
	require.False(t, key.IsSentinel())

	// The minor slot stays zero for the two-part scheme.
	require.Zero(t, key.Minor)
}

// TestParseTagDotted covers the Proton-EM grammar including the directory
// prefix variant.
func TestParseTagDotted(t *testing.T) {
	t.Parallel()

	f, _ := ByID("Proton-EM")

	key := f.ParseTag("EM-10.0-30")
	require.Equal(t, Key{Label: "EM", Major: 10, Minor: 0, Patch: 30}, key)

	// The prefixed directory name parses to the identical key.
	require.Equal(t, key, f.ParseTag("proton-EM-10.0-30"))
}

// TestParseTagSentinel verifies degradation of unparseable tags.
func TestParseTagSentinel(t *testing.T) {
	t.Parallel()

	f, _ := ByID("GE-Proton")

	bogus := f.ParseTag("LegacyRuntime")
	require.True(t, bogus.IsSentinel())

	// Never equal to a real version, always ordered below one.
	real := f.ParseTag("GE-Proton1-1")
	require.NotEqual(t, 0, bogus.Compare(real))
	require.Equal(t, -1, bogus.Compare(real))

	// Two distinct sentinels stay distinct and ordered.
	other := f.ParseTag("AnotherThing")
	require.Equal(t, 0, bogus.Compare(f.ParseTag("LegacyRuntime")))
	require.NotEqual(t, 0, bogus.Compare(other))
}

// TestCompareTotalOrder spot-checks reflexivity, antisymmetry and
// transitivity over a mixed set of keys.
func TestCompareTotalOrder(t *testing.T) {
	t.Parallel()

	ge, _ := ByID("GE-Proton")
	em, _ := ByID("Proton-EM")

	keys := []Key{
		ge.ParseTag("GE-Proton9-1"),
		ge.ParseTag("GE-Proton10-5"),
		ge.ParseTag("GE-Proton10-20"),
		em.ParseTag("EM-10.0-30"),
		em.ParseTag("EM-9.5-1"),
		ge.ParseTag("garbage"),
	}

	for _, a := range keys {
		require.Equal(t, 0, a.Compare(a))

		for _, b := range keys {
			require.Equal(t, -b.Compare(a), a.Compare(b))

			for _, c := range keys {
				if a.Compare(b) <= 0 && b.Compare(c) <= 0 {
					require.LessOrEqual(t, a.Compare(c), 0)
				}
			}
		}
	}
}

// TestCompareOrdersVersions verifies numeric rather than lexicographic
// ordering of components.
func TestCompareOrdersVersions(t *testing.T) {
	t.Parallel()

	ge, _ := ByID("GE-Proton")

	require.Equal(t, 1, ge.ParseTag("GE-Proton10-5").Compare(ge.ParseTag("GE-Proton9-1")))
	require.Equal(t, 1, ge.ParseTag("GE-Proton10-20").Compare(ge.ParseTag("GE-Proton10-5")))
	require.Equal(t, -1, ge.ParseTag("GE-Proton9-1").Compare(ge.ParseTag("GE-Proton10-20")))
}

// TestAssetName verifies the deterministic filename rules of both forks.
func TestAssetName(t *testing.T) {
	t.Parallel()

	ge, _ := ByID("GE-Proton")
	require.Equal(t, "GE-Proton10-20.tar.gz", ge.AssetName("GE-Proton10-20"))

	em, _ := ByID("Proton-EM")
	require.Equal(t, "proton-EM-10.0-30.tar.xz", em.AssetName("EM-10.0-30"))

	// Already-prefixed input does not double the prefix.
	require.Equal(t, "proton-EM-10.0-30.tar.xz", em.AssetName("proton-EM-10.0-30"))
}

// TestDirNames verifies variant ordering, preferred name first.
func TestDirNames(t *testing.T) {
	t.Parallel()

	ge, _ := ByID("GE-Proton")
	require.Equal(t, []string{"GE-Proton10-20"}, ge.DirNames("GE-Proton10-20"))

	em, _ := ByID("Proton-EM")
	require.Equal(t, []string{"EM-10.0-30", "proton-EM-10.0-30"}, em.DirNames("EM-10.0-30"))
	require.Equal(t, []string{"EM-10.0-30", "proton-EM-10.0-30"}, em.DirNames("proton-EM-10.0-30"))
}

// TestMatchDir verifies the hard naming filter.
func TestMatchDir(t *testing.T) {
	t.Parallel()

	ge, _ := ByID("GE-Proton")
	em, _ := ByID("Proton-EM")

	_, ok := ge.MatchDir("GE-Proton10-20")
	require.True(t, ok)

	_, ok = ge.MatchDir("LegacyRuntime")
	require.False(t, ok)

	_, ok = em.MatchDir("LegacyRuntime")
	require.False(t, ok)

	_, ok = em.MatchDir("proton-EM-10.0-30")
	require.True(t, ok)

	// Forks do not match each other's directories.
	_, ok = em.MatchDir("GE-Proton10-20")
	require.False(t, ok)
}

// TestLinkNames verifies the stable link triple derivation.
func TestLinkNames(t *testing.T) {
	t.Parallel()

	ge, _ := ByID("GE-Proton")
	require.Equal(t,
		[3]string{"GE-Proton", "GE-Proton-Fallback", "GE-Proton-Fallback2"},
		ge.LinkNames())

	em, _ := ByID("Proton-EM")
	require.Equal(t,
		[3]string{"Proton-EM", "Proton-EM-Fallback", "Proton-EM-Fallback2"},
		em.LinkNames())
}
