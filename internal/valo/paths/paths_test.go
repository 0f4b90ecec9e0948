package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDatabasePathEnvOverride(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "custom.db")
	t.Setenv("VALO_ACCOUNTS_DB", custom)

	got, err := DefaultDatabasePath()
	require.NoError(t, err)
	assert.Equal(t, custom, got)
}

func TestDefaultDatabasePathNextToExecutable(t *testing.T) {
	t.Setenv("VALO_ACCOUNTS_DB", "")

	got, err := DefaultDatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "valo-accounts.db", filepath.Base(got))
	assert.True(t, filepath.IsAbs(got))
}

func TestDefaultAccountDataRoot(t *testing.T) {
	t.Setenv("VALO_ACCOUNTS_DB", "")

	got, err := DefaultAccountDataRoot()
	require.NoError(t, err)
	assert.Equal(t, "Data", filepath.Base(got))

	// Database and data root live side by side next to the executable.
	db, err := DefaultDatabasePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(db), filepath.Dir(got))
}
