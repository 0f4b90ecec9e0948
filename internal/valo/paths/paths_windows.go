//go:build windows

package paths

import (
	"errors"
	"os"
	"path/filepath"
)

// DefaultClientDataPath returns the Riot Client's fixed data directory, the
// live path this tool redirects.
func DefaultClientDataPath() (string, error) {
	localAppData := os.Getenv("LOCALAPPDATA")
	if localAppData == "" {
		return "", errors.New("LOCALAPPDATA environment variable not set")
	}
	return filepath.Join(localAppData, "Riot Games", "Riot Client", "Data"), nil
}

// DefaultClientServicePath returns the standard Riot Client executable path.
func DefaultClientServicePath() string {
	return `C:\Riot Games\Riot Client\RiotClientServices.exe`
}

// ClientServiceCandidates lists the install locations probed when launching
// the client and no configured path matches.
func ClientServiceCandidates() []string {
	return []string{
		`C:\Riot Games\Riot Client\RiotClientServices.exe`,
		`C:\Program Files\Riot Games\Riot Client\RiotClientServices.exe`,
		`C:\Program Files (x86)\Riot Games\Riot Client\RiotClientServices.exe`,
	}
}
