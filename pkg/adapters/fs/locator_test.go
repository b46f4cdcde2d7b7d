package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/galaxies/pkg/adapters/fs"
)

// touch creates an empty file, with parents, under root.
func touch(t *testing.T, root string, rel ...string) string {
	t.Helper()
	path := filepath.Join(append([]string{root}, rel...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, nil, 0644))
	return path
}

func TestFlatLocator(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "a")
	second := filepath.Join(root, "b")
	touch(t, second, "galrand_42.png")
	touch(t, first, "galrand_7.png")
	touch(t, second, "galrand_7.png")
	require.NoError(t, os.MkdirAll(filepath.Join(first, "galrand_9.png"), 0755))

	loc := fs.FlatLocator{Dirs: []string{first, second}, Pattern: "galrand_%s.png"}

	path, ok := loc.Locate("42")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(second, "galrand_42.png"), path)

	path, ok = loc.Locate("7")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(first, "galrand_7.png"), path, "earlier directories win")

	_, ok = loc.Locate("9")
	assert.False(t, ok, "directories are not files")

	path, ok = loc.Locate("404")
	assert.False(t, ok)
	assert.Empty(t, path)
}

func TestFlatLocatorWithListing(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "100.jpg")

	listing := fs.NewListing()
	loc := fs.FlatLocator{Dirs: []string{root, filepath.Join(root, "missing")}, Pattern: "%s.jpg", Listing: listing}

	_, ok := loc.Locate("100")
	assert.True(t, ok)
	_, ok = loc.Locate("200")
	assert.False(t, ok)
	assert.Equal(t, 1, listing.Loads(), "a directory is read once per mtime")
	assert.Equal(t, 1, listing.Len())

	listing.Prune(map[string]bool{})
	assert.Equal(t, 0, listing.Len())
}

func TestShardedLocator(t *testing.T) {
	root := t.TempDir()
	parts := []string{filepath.Join(root, "part1"), filepath.Join(root, "part2")}
	touch(t, parts[1], "J123", "J123456.png")

	loc := fs.ShardedLocator{Dirs: parts, PrefixLen: 4, Ext: ".png"}

	path, ok := loc.Locate("J123456")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(root, "part2", "J123", "J123456.png"), path)

	path, ok = loc.Locate("J123999")
	assert.False(t, ok)
	assert.Empty(t, path)

	_, ok = loc.Locate("J12")
	assert.False(t, ok, "identifiers shorter than the prefix never resolve")
}

func TestExists(t *testing.T) {
	root := t.TempDir()
	assert.True(t, fs.Exists(touch(t, root, "x")))
	assert.False(t, fs.Exists(filepath.Join(root, "y")))
}
