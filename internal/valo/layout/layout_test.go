package layout

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderNameFor(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "007_20240101120000", FolderNameFor(7, now))
	assert.Equal(t, "042_20240101120000", FolderNameFor(42, now))

	// Wider ids keep all their digits.
	assert.Equal(t, "1234_20240101120000", FolderNameFor(1234, now))
}

func TestFolderNameForDistinctTimes(t *testing.T) {
	first := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(time.Second)

	assert.NotEqual(t, FolderNameFor(7, first), FolderNameFor(7, second))
}

func TestPaths(t *testing.T) {
	root := filepath.Join("base", "Data")

	assert.Equal(t, filepath.Join(root, "_unselected"), SentinelPath(root))
	assert.Equal(t, filepath.Join(root, "007_20240101120000"), AccountPath(root, "007_20240101120000"))
}

func TestEnsureMarkedDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := filepath.Join("root", "accounts", "007_20240101120000")

	require.NoError(t, EnsureMarkedDir(fs, dir))

	ok, err := afero.DirExists(fs, dir)
	require.NoError(t, err)
	assert.True(t, ok)

	marker := filepath.Join(dir, "007_20240101120000")
	info, err := fs.Stat(marker)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestEnsureMarkedDirIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := filepath.Join("root", "_unselected")

	require.NoError(t, EnsureMarkedDir(fs, dir))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "settings.dat"), []byte("data"), 0o644))

	require.NoError(t, EnsureMarkedDir(fs, dir))

	// Existing content survives a repeated call.
	content, err := afero.ReadFile(fs, filepath.Join(dir, "settings.dat"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	_, err = fs.Stat(filepath.Join(dir, "_unselected"))
	assert.NoError(t, err)
}
