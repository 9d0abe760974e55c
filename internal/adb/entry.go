package adb

import "github.com/Melal1/adb-tui/internal/pathutil"

// EntryKind is the fixed classification of a directory listing row.
// Classification happens once, at listing time; no use-site ever infers
// kind from the name.
type EntryKind int

const (
	// KindFile - a regular file, selectable for transfer.
	KindFile EntryKind = iota

	// KindDirectory - navigable, not selectable under current scope.
	KindDirectory

	// KindUnknown - the lister could not classify the row (symlink,
	// socket, fifo). Selectable only after a stat confirms it is a file.
	KindUnknown
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Entry is one directory listing row. Entries are created fresh on every
// listing request and are not cached beyond the current view.
type Entry struct {
	Name       string    // path segment, no separators
	Kind       EntryKind
	ParentPath string // absolute remote path of the containing directory
}

// FullPath joins the parent path and name. It is the key that ties
// navigation rows to selection membership.
func (e Entry) FullPath() string {
	return pathutil.RemoteJoin(e.ParentPath, e.Name)
}

// Device is one row of `adb devices -l` output.
type Device struct {
	Serial string
	State  string // "device", "offline", "unauthorized"
	Model  string
}
