//go:build windows

package junction

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"unsafe"

	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"
)

// manager manipulates NTFS junction points (mount-point reparse points).
// Creation shells out to mklink /J, which handles the reparse buffer layout
// and privilege quirks that a hand-rolled FSCTL_SET_REPARSE_POINT does not.
type manager struct {
	logger zerolog.Logger
}

func newManager(logger zerolog.Logger) *manager {
	return &manager{logger: logger}
}

func (m *manager) IsRedirect(path string) bool {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil || attrs == windows.INVALID_FILE_ATTRIBUTES {
		return false
	}
	return attrs&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0
}

func (m *manager) CreateRedirect(link, target string) error {
	m.logger.Debug().Str("link", link).Str("target", target).Msg("creating junction")

	if err := checkCreatePreconditions(link, target); err != nil {
		return err
	}

	cmd := exec.Command("cmd", "/C", "mklink", "/J", link, target)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = err.Error()
		}
		return &PlatformError{Op: "mklink /J", Path: link, Err: errors.New(detail)}
	}

	m.logger.Info().Str("link", link).Str("target", target).Msg("junction created")
	return nil
}

func (m *manager) RemoveRedirect(link string) error {
	if _, err := os.Lstat(link); errors.Is(err, fs.ErrNotExist) {
		m.logger.Debug().Str("link", link).Msg("junction absent, nothing to remove")
		return nil
	}
	if !m.IsRedirect(link) {
		return errors.Join(ErrNotARedirect, errors.New(link))
	}
	// A junction is an empty directory entry; Remove deletes only the alias.
	if err := os.Remove(link); err != nil {
		return &PlatformError{Op: "remove junction", Path: link, Err: err}
	}
	m.logger.Info().Str("link", link).Msg("junction removed")
	return nil
}

func (m *manager) ResolveRedirect(link string) (string, error) {
	if !m.IsRedirect(link) {
		return "", errors.Join(ErrNotARedirect, errors.New(link))
	}

	p, err := windows.UTF16PtrFromString(link)
	if err != nil {
		return "", &PlatformError{Op: "encode path", Path: link, Err: err}
	}

	h, err := windows.CreateFile(
		p,
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS|windows.FILE_FLAG_OPEN_REPARSE_POINT,
		0,
	)
	if err != nil {
		return "", &PlatformError{Op: "open junction", Path: link, Err: err}
	}
	defer windows.CloseHandle(h)

	buf := make([]byte, windows.MAXIMUM_REPARSE_DATA_BUFFER_SIZE)
	var returned uint32
	err = windows.DeviceIoControl(
		h,
		windows.FSCTL_GET_REPARSE_POINT,
		nil, 0,
		&buf[0], uint32(len(buf)),
		&returned, nil,
	)
	if err != nil {
		return "", &PlatformError{Op: "read reparse data", Path: link, Err: err}
	}

	rdb := (*windows.REPARSE_DATA_BUFFER)(unsafe.Pointer(&buf[0]))
	if rdb.ReparseTag != windows.IO_REPARSE_TAG_MOUNT_POINT {
		return "", errors.Join(ErrNotARedirect, errors.New("reparse point is not a mount point"))
	}

	mount := (*windows.MountPointReparseBuffer)(unsafe.Pointer(&rdb.DUMMYUNIONNAME))
	return stripVerbatimPrefix(mount.Path()), nil
}

// ForceCleanup shells out to rmdir, which removes dangling junctions whose
// reparse metadata can no longer be read. Callers run this only after any
// real data has already been rescued.
func (m *manager) ForceCleanup(path string) {
	cmd := exec.Command("cmd", "/C", "rmdir", path)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
	if err := cmd.Run(); err != nil {
		m.logger.Debug().Err(err).Str("path", path).Msg("forced cleanup had nothing to remove")
		return
	}
	m.logger.Info().Str("path", path).Msg("forced cleanup removed residual entry")
}

// stripVerbatimPrefix normalizes away the NT namespace prefixes that reparse
// substitute names carry.
func stripVerbatimPrefix(path string) string {
	for _, prefix := range []string{`\??\`, `\\?\`} {
		if strings.HasPrefix(path, prefix) {
			return strings.TrimPrefix(path, prefix)
		}
	}
	return path
}
