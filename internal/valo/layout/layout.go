// Package layout defines the naming scheme for per-account data folders under
// the account data root. Folder identity is permanent: a name is generated
// once at account creation, stored on the account record, and never renamed
// or recomputed afterwards.
package layout

import (
	"fmt"
	"path/filepath"
	"time"
)

// SentinelFolderName is the reserved folder representing "no account
// selected". Exactly one exists per account data root; it is recreated on
// demand if missing.
const SentinelFolderName = "_unselected"

const folderTimestampFormat = "20060102150405"

// FolderNameFor returns the permanent data-folder name for an account:
// zero-padded account id, underscore, creation timestamp to the second.
// The timestamp makes names unique across re-created accounts while keeping
// them sortable.
func FolderNameFor(accountID int64, now time.Time) string {
	return fmt.Sprintf("%03d_%s", accountID, now.Format(folderTimestampFormat))
}

// SentinelPath returns the sentinel folder path under root.
func SentinelPath(root string) string {
	return filepath.Join(root, SentinelFolderName)
}

// AccountPath returns the path of a stored account folder under root.
func AccountPath(root, folderName string) string {
	return filepath.Join(root, folderName)
}
