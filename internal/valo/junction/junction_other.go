//go:build !windows

package junction

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// manager substitutes directory symlinks for junctions on platforms without a
// native mount-point primitive. Detection, resolution and removal keep the
// same semantics: the alias entry is what gets removed, never the target.
type manager struct {
	logger zerolog.Logger
}

func newManager(logger zerolog.Logger) *manager {
	return &manager{logger: logger}
}

func (m *manager) IsRedirect(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

func (m *manager) CreateRedirect(link, target string) error {
	m.logger.Debug().Str("link", link).Str("target", target).Msg("creating symlink redirect")

	if err := checkCreatePreconditions(link, target); err != nil {
		return err
	}

	if err := os.Symlink(target, link); err != nil {
		return &PlatformError{Op: "symlink", Path: link, Err: err}
	}

	m.logger.Info().Str("link", link).Str("target", target).Msg("redirect created")
	return nil
}

func (m *manager) RemoveRedirect(link string) error {
	if _, err := os.Lstat(link); errors.Is(err, fs.ErrNotExist) {
		m.logger.Debug().Str("link", link).Msg("redirect absent, nothing to remove")
		return nil
	}
	if !m.IsRedirect(link) {
		return errors.Join(ErrNotARedirect, errors.New(link))
	}
	if err := os.Remove(link); err != nil {
		return &PlatformError{Op: "remove symlink", Path: link, Err: err}
	}
	m.logger.Info().Str("link", link).Msg("redirect removed")
	return nil
}

func (m *manager) ResolveRedirect(link string) (string, error) {
	if !m.IsRedirect(link) {
		return "", errors.Join(ErrNotARedirect, errors.New(link))
	}
	target, err := os.Readlink(link)
	if err != nil {
		return "", &PlatformError{Op: "readlink", Path: link, Err: err}
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(link), target)
	}
	return filepath.Clean(target), nil
}

// ForceCleanup removes whatever single entry remains at path, which covers
// dangling symlinks that plain existence checks miss.
func (m *manager) ForceCleanup(path string) {
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			m.logger.Debug().Err(err).Str("path", path).Msg("forced cleanup had nothing to remove")
		}
		return
	}
	m.logger.Info().Str("path", path).Msg("forced cleanup removed residual entry")
}
