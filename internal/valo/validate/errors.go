package validate

import "errors"

// Exported error variables allow callers to use errors.Is() for error checking.
var (
	ErrRiotIDEmpty        = errors.New("riot id cannot be empty")
	ErrRiotIDNullByte     = errors.New("riot id contains null byte")
	ErrRiotIDNonPrintable = errors.New("riot id contains non-printable characters")
	ErrRiotIDInvalidChars = errors.New(`riot id contains invalid characters (<>:"/\|?*)`)
	ErrTaglineInvalid     = errors.New("tagline must be 3-5 letters or digits")
)
