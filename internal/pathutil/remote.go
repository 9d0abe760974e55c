// Package pathutil provides path helpers for adb-tui.
// Remote device paths are always forward-slash separated regardless of the
// host platform, so they must never go through path/filepath.
package pathutil

import (
	"path"
	"strings"
)

// RemoteJoin joins a remote directory and a child name with a single slash.
// The result keeps the absolute form of dir.
func RemoteJoin(dir, name string) string {
	if dir == "" {
		dir = "/"
	}
	return path.Join(dir, name)
}

// RemoteParent returns the parent directory of a remote path.
// The parent of "/" is "/".
func RemoteParent(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	return path.Dir(p)
}

// RemoteBase returns the last path segment of a remote path,
// with any trailing slash removed. RemoteBase("/") is "/".
func RemoteBase(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	return path.Base(p)
}

// CleanRemote normalizes a remote path to an absolute, slash-cleaned form.
// Relative input is treated as relative to "/".
func CleanRemote(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
