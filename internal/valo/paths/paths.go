// Package paths computes platform default locations for the database, the
// account data root and the Riot Client installation. Stored settings always
// win; these are only the fallbacks applied when a setting is unset.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	dataRootDirName  = "Data"
	databaseFileName = "valo-accounts.db"
)

// DefaultDatabasePath returns the executable-relative database location. The
// VALO_ACCOUNTS_DB environment variable overrides it.
func DefaultDatabasePath() (string, error) {
	if custom := os.Getenv("VALO_ACCOUNTS_DB"); custom != "" {
		return custom, nil
	}
	dir, err := executableDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, databaseFileName), nil
}

// DefaultAccountDataRoot returns the executable-relative "Data" directory
// under which account folders are created.
func DefaultAccountDataRoot() (string, error) {
	dir, err := executableDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dataRootDirName), nil
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	return filepath.Dir(exe), nil
}
