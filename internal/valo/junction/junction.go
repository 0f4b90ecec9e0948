// Package junction is the platform primitive for directory aliases: filesystem
// entries that transparently redirect all reads and writes to another
// directory. On Windows these are NTFS junction points; elsewhere a directory
// symlink stands in with the same detect/resolve/remove semantics.
package junction

import "github.com/rs/zerolog"

// Manager creates, detects, resolves and removes directory aliases. The four
// operations are deliberately independent so that callers can apply their own
// reconciliation policy per observed state.
type Manager interface {
	// IsRedirect reports whether path exists and is a directory alias.
	// A non-existent path reports false, not an error.
	IsRedirect(path string) bool

	// CreateRedirect installs an alias at link pointing to target. The
	// target must be an existing directory, link's parent must exist, and
	// link itself must not exist yet; the adapter never overwrites.
	CreateRedirect(link, target string) error

	// RemoveRedirect removes the alias entry at link. The aliased data is
	// untouched since it lives at the target, not at the link. Removing a
	// non-existent link is a no-op; removing an entry that is not an alias
	// fails with ErrNotARedirect.
	RemoveRedirect(link string) error

	// ResolveRedirect returns the absolute path the alias at link points
	// to, with any platform verbatim-path prefix stripped.
	ResolveRedirect(link string) (string, error)

	// ForceCleanup removes whatever entry remains at path by the most
	// forceful means available, handling broken aliases whose metadata the
	// normal removal path cannot read. Best effort: failures are logged
	// and swallowed.
	ForceCleanup(path string)
}

// New returns the Manager for the current platform.
func New(logger zerolog.Logger) Manager {
	return newManager(logger)
}
