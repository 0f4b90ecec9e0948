// Package transfer relocates directory contents with a copy-verify-delete
// sequence: nothing is deleted from the source until every copied entry has
// been verified at the destination.
package transfer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Mover moves directory trees between two roots on the same filesystem.
type Mover struct {
	fs     afero.Fs
	logger zerolog.Logger
}

// New creates a Mover operating on the provided filesystem.
func New(fsys afero.Fs, logger zerolog.Logger) *Mover {
	return &Mover{fs: fsys, logger: logger}
}

type copiedEntry struct {
	src   string
	dst   string
	isDir bool
	size  int64
}

// MoveTree moves all entries of src into dest, creating dest if absent.
//
// The sequence is: copy everything, verify every copied path (existence, and
// byte size for files), and only then delete the originals. A failure during
// copy or verification aborts before any deletion, leaving src authoritative
// and untouched. A deletion failure after full verification is returned as a
// *DeleteError; the data already exists safely at dest, so callers should
// log it rather than treat the move as failed.
//
// The caller owns removal of the now-empty src directory itself.
func (m *Mover) MoveTree(src, dest string) error {
	m.logger.Info().Str("src", src).Str("dest", dest).Msg("moving directory contents")

	info, err := m.fs.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSourceMissing, src)
	}
	if err != nil {
		return fmt.Errorf("stat source %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrSourceNotDirectory, src)
	}

	if err := m.fs.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create destination %s: %w", dest, err)
	}

	tops, err := afero.ReadDir(m.fs, src)
	if err != nil {
		return fmt.Errorf("read source %s: %w", src, err)
	}

	var copied []copiedEntry
	for _, entry := range tops {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dest, entry.Name())
		if entry.IsDir() {
			sub, err := m.copyDir(srcPath, dstPath)
			if err != nil {
				return err
			}
			copied = append(copied, copiedEntry{src: srcPath, dst: dstPath, isDir: true})
			copied = append(copied, sub...)
		} else {
			size, err := m.copyFile(srcPath, dstPath)
			if err != nil {
				return err
			}
			copied = append(copied, copiedEntry{src: srcPath, dst: dstPath, size: size})
		}
	}

	if err := m.verify(copied); err != nil {
		return err
	}

	m.logger.Debug().Int("entries", len(copied)).Msg("verification passed, deleting source entries")

	// Top-level entries only: recursive removal covers their children.
	for _, entry := range tops {
		srcPath := filepath.Join(src, entry.Name())
		var err error
		if entry.IsDir() {
			err = m.fs.RemoveAll(srcPath)
		} else {
			err = m.fs.Remove(srcPath)
		}
		if err != nil {
			return &DeleteError{Path: srcPath, Err: err}
		}
	}

	m.logger.Info().Str("src", src).Str("dest", dest).Msg("directory contents moved")
	return nil
}

func (m *Mover) copyDir(src, dest string) ([]copiedEntry, error) {
	if err := m.fs.MkdirAll(dest, 0o755); err != nil {
		return nil, &CopyError{Path: dest, Err: err}
	}

	entries, err := afero.ReadDir(m.fs, src)
	if err != nil {
		return nil, &CopyError{Path: src, Err: err}
	}

	var copied []copiedEntry
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dest, entry.Name())
		if entry.IsDir() {
			sub, err := m.copyDir(srcPath, dstPath)
			if err != nil {
				return nil, err
			}
			copied = append(copied, copiedEntry{src: srcPath, dst: dstPath, isDir: true})
			copied = append(copied, sub...)
		} else {
			size, err := m.copyFile(srcPath, dstPath)
			if err != nil {
				return nil, err
			}
			copied = append(copied, copiedEntry{src: srcPath, dst: dstPath, size: size})
		}
	}
	return copied, nil
}

func (m *Mover) copyFile(src, dest string) (int64, error) {
	source, err := m.fs.Open(src)
	if err != nil {
		return 0, &CopyError{Path: src, Err: err}
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return 0, &CopyError{Path: src, Err: err}
	}

	dst, err := m.fs.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, &CopyError{Path: dest, Err: err}
	}

	_, copyErr := io.Copy(dst, source)
	closeErr := dst.Close()
	if copyErr != nil {
		return 0, &CopyError{Path: dest, Err: copyErr}
	}
	if closeErr != nil {
		return 0, &CopyError{Path: dest, Err: closeErr}
	}

	return info.Size(), nil
}

func (m *Mover) verify(copied []copiedEntry) error {
	for _, entry := range copied {
		info, err := m.fs.Stat(entry.dst)
		if errors.Is(err, fs.ErrNotExist) {
			return &VerifyError{Path: entry.dst, Reason: "destination missing after copy"}
		}
		if err != nil {
			return &VerifyError{Path: entry.dst, Reason: err.Error()}
		}
		if entry.isDir {
			if !info.IsDir() {
				return &VerifyError{Path: entry.dst, Reason: "destination is not a directory"}
			}
			continue
		}
		if info.Size() != entry.size {
			return &VerifyError{
				Path:   entry.dst,
				Reason: fmt.Sprintf("size mismatch: copied %d bytes, source has %d", info.Size(), entry.size),
			}
		}
	}
	return nil
}
