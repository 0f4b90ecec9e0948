package layout

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// EnsureMarkedDir creates dir (and any missing ancestors) and drops a
// zero-byte marker file inside it named after the directory's final path
// component. Looking at the live path then shows, by marker filename, which
// physical folder is currently mounted there. Idempotent.
func EnsureMarkedDir(fsys afero.Fs, dir string) error {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	name := filepath.Base(dir)
	if name == "." || name == string(filepath.Separator) {
		return nil
	}

	marker := filepath.Join(dir, name)
	if err := afero.WriteFile(fsys, marker, nil, 0o644); err != nil {
		return fmt.Errorf("create marker file %s: %w", marker, err)
	}
	return nil
}
