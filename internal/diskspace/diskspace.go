// Package diskspace checks available disk space before a pull batch
// starts, so a transfer that cannot fit fails up front instead of
// half-way through.
package diskspace

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

// InsufficientSpaceError indicates the destination filesystem cannot
// hold the requested bytes.
type InsufficientSpaceError struct {
	Path           string
	RequiredBytes  int64
	AvailableBytes int64
}

func (e *InsufficientSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space for %s: need %s, have %s available",
		e.Path,
		humanize.Bytes(uint64(e.RequiredBytes)),
		humanize.Bytes(uint64(e.AvailableBytes)))
}

// Check verifies the filesystem containing dir has room for
// requiredBytes plus a safety margin. An unreadable filesystem (network
// mounts, odd virtual filesystems) passes the check; the pull then
// fails naturally if space really runs out.
func Check(dir string, requiredBytes int64, safetyMargin float64) error {
	available := Available(dir)
	if available == 0 {
		return nil
	}

	requiredWithMargin := int64(float64(requiredBytes) * safetyMargin)
	if available < requiredWithMargin {
		return &InsufficientSpaceError{
			Path:           dir,
			RequiredBytes:  requiredWithMargin,
			AvailableBytes: available,
		}
	}
	return nil
}

// IsInsufficientSpaceError reports whether err is an
// InsufficientSpaceError anywhere in its chain.
func IsInsufficientSpaceError(err error) bool {
	var ise *InsufficientSpaceError
	return errors.As(err, &ise)
}
