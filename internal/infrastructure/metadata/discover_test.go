package metadata_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/runmanager/internal/infrastructure/metadata"
	"github.com/zjrosen/runmanager/internal/testutil"
)

func TestDiscover(t *testing.T) {
	root := testutil.NewCollectionBuilder(t).
		WithDataset("c").
		WithDataset("a").
		WithDataset("noinfo", testutil.WithoutInfo()).
		WithDataset("b").
		Build()
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.yaml"), []byte("x: 1\n"), 0600))

	names, err := metadata.Discover(root, "")

	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, names)
}

func TestDiscover_EmptyRoot(t *testing.T) {
	names, err := metadata.Discover(t.TempDir(), metadata.DefaultInfoFile)

	require.NoError(t, err)
	require.Empty(t, names)
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := metadata.Discover(filepath.Join(t.TempDir(), "nope"), "")

	require.ErrorIs(t, err, os.ErrNotExist)
}
