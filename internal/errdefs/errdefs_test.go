package errdefs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protonfetch/protonfetch/internal/errdefs"
)

func TestTaggingPreservesChain(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := errdefs.Network(cause)

	require.True(t, errdefs.IsNetwork(err))
	require.ErrorIs(t, err, cause)
	require.False(t, errdefs.IsExtraction(err))
	require.False(t, errdefs.IsLinkManagement(err))
}

func TestTaggingIsIdempotent(t *testing.T) {
	t.Parallel()

	err := errdefs.Extraction(errors.New("short read"))
	again := errdefs.LinkManagement(err)

	// An already classified error keeps its original kind.
	require.Same(t, err, again)
	require.True(t, errdefs.IsExtraction(again))
	require.False(t, errdefs.IsLinkManagement(again))
}

func TestTaggingNil(t *testing.T) {
	t.Parallel()

	require.NoError(t, errdefs.Network(nil))
	require.NoError(t, errdefs.Extraction(nil))
	require.NoError(t, errdefs.LinkManagement(nil))
}

func TestFormattedConstructors(t *testing.T) {
	t.Parallel()

	err := errdefs.LinkManagementf("release %s is not installed", "GE-Proton10-20")

	require.True(t, errdefs.IsLinkManagement(err))
	require.Contains(t, err.Error(), "GE-Proton10-20")

	require.True(t, errdefs.IsNetwork(errdefs.Networkf("no asset named %q", "x.tar.gz")))
}
