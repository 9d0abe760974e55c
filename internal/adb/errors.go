package adb

import (
	"errors"
	"fmt"
	"strings"
)

// Listing failure classification. These are recoverable-by-the-user
// conditions: navigation state is left untouched when one is returned.
var (
	// ErrNotFound - the remote path does not exist.
	ErrNotFound = errors.New("no such file or directory")

	// ErrPermissionDenied - the shell user cannot read the remote path.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDeviceUnavailable - no device, device offline, or unauthorized.
	ErrDeviceUnavailable = errors.New("device unavailable")
)

// ListingError wraps a classified listing failure with the path that
// triggered it.
type ListingError struct {
	Path string
	Err  error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("listing %s: %v", e.Path, e.Err)
}

func (e *ListingError) Unwrap() error { return e.Err }

// classifyShellError maps adb/toybox stderr output onto the sentinel
// errors above. Classification happens once, here; callers switch on the
// sentinels and never inspect strings.
func classifyShellError(stderr string) error {
	out := strings.ToLower(stderr)

	switch {
	case strings.Contains(out, "no devices/emulators found"),
		strings.Contains(out, "device offline"),
		strings.Contains(out, "device unauthorized"),
		strings.Contains(out, "device still authorizing"),
		strings.Contains(out, "cannot connect to daemon"):
		return ErrDeviceUnavailable
	case strings.Contains(out, "permission denied"):
		return ErrPermissionDenied
	case strings.Contains(out, "no such file or directory"),
		strings.Contains(out, "not a directory"):
		return ErrNotFound
	default:
		return nil
	}
}
