// Package validate checks user-supplied account fields before they reach the
// store or appear in folder-adjacent contexts.
package validate

import (
	"regexp"
	"strings"
)

var (
	taglinePattern      = regexp.MustCompile(`^[A-Za-z0-9]{3,5}$`)
	invalidCharsPattern = regexp.MustCompile(`[<>:"/\\|?*]`)
)

// RiotID validates the display name half of a Riot ID.
//
// The function checks for:
//   - Empty or whitespace-only values
//   - Null bytes and non-printable characters
//   - Characters unsafe for filenames and logs (<>:"/\|?*)
//
// Returns the trimmed value on success.
func RiotID(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrRiotIDEmpty
	}
	if strings.ContainsRune(trimmed, 0) {
		return "", ErrRiotIDNullByte
	}
	for _, r := range trimmed {
		if r < 0x20 || r == 0x7f {
			return "", ErrRiotIDNonPrintable
		}
	}
	if invalidCharsPattern.MatchString(trimmed) {
		return "", ErrRiotIDInvalidChars
	}
	return trimmed, nil
}

// Tagline validates the tagline half of a Riot ID: 3 to 5 alphanumerics.
func Tagline(tag string) (string, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(tag, "#"))
	if !taglinePattern.MatchString(trimmed) {
		return "", ErrTaglineInvalid
	}
	return trimmed, nil
}
