package junction

import (
	"errors"
	"fmt"
)

// Exported error variables allow callers to use errors.Is() for error checking.
var (
	ErrTargetMissing      = errors.New("redirect target does not exist")
	ErrTargetNotDirectory = errors.New("redirect target is not a directory")
	ErrParentMissing      = errors.New("link parent directory does not exist")
	ErrLinkAlreadyExists  = errors.New("link path already exists")
	ErrNotARedirect       = errors.New("path is not a directory alias")
)

// PlatformError reports an alias operation that failed at the OS level. These
// are rare and not meaningfully recoverable by retry; the detail is surfaced
// to the user as-is.
type PlatformError struct {
	Op   string
	Path string
	Err  error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}
