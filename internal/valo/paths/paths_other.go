//go:build !windows

package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultClientDataPath returns a home-relative stand-in for the Riot
// Client's data directory. The client itself only exists on Windows; this
// keeps the tool usable for development and testing elsewhere.
func DefaultClientDataPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "Riot Games", "Riot Client", "Data"), nil
}

// DefaultClientServicePath returns the standard client executable path.
// There is none off Windows.
func DefaultClientServicePath() string {
	return ""
}

// ClientServiceCandidates lists install locations probed when launching the
// client. Empty off Windows.
func ClientServiceCandidates() []string {
	return nil
}
