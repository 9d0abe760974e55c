//go:build windows

package diskspace

import "golang.org/x/sys/windows"

// Available returns the space in bytes available to the current user on
// the volume containing dir. Returns 0 if it cannot be determined.
func Available(dir string) int64 {
	pathPtr, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return 0
	}

	var freeBytesAvailable, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(pathPtr, &freeBytesAvailable, &totalBytes, &totalFreeBytes); err != nil {
		return 0
	}
	return int64(freeBytesAvailable)
}
