package transfer

import (
	"errors"
	"fmt"
)

var (
	ErrSourceMissing      = errors.New("source directory does not exist")
	ErrSourceNotDirectory = errors.New("source is not a directory")
)

// CopyError reports a failed copy of a single entry. The source tree is
// untouched when this is returned.
type CopyError struct {
	Path string
	Err  error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy %s: %v", e.Path, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// VerifyError reports a copied entry that failed verification. The source
// tree is untouched when this is returned.
type VerifyError struct {
	Path   string
	Reason string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("verification failed for %s: %s", e.Path, e.Reason)
}

// DeleteError reports a source deletion that failed after every copy was
// verified. The moved data already exists at the destination, so callers that
// only care about data safety should log this instead of failing.
type DeleteError struct {
	Path string
	Err  error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete verified source %s: %v", e.Path, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}
