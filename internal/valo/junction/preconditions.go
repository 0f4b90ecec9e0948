package junction

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// checkCreatePreconditions validates target and link before an alias is
// installed. It runs before any mutation so a failure here is always safe to
// retry once the caller fixes the precondition.
func checkCreatePreconditions(link, target string) error {
	info, err := os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrTargetMissing, target)
	}
	if err != nil {
		return &PlatformError{Op: "stat target", Path: target, Err: err}
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrTargetNotDirectory, target)
	}

	parent := filepath.Dir(link)
	if _, err := os.Stat(parent); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrParentMissing, parent)
	} else if err != nil {
		return &PlatformError{Op: "stat parent", Path: parent, Err: err}
	}

	// Lstat so an existing broken alias still counts as existing.
	if _, err := os.Lstat(link); err == nil {
		return fmt.Errorf("%w: %s", ErrLinkAlreadyExists, link)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return &PlatformError{Op: "stat link", Path: link, Err: err}
	}

	return nil
}
