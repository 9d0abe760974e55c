//go:build !windows

package diskspace

import "golang.org/x/sys/unix"

// Available returns the space in bytes available to the current user on
// the filesystem containing dir. Returns 0 if it cannot be determined.
func Available(dir string) int64 {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0
	}
	return int64(stat.Bavail) * int64(stat.Bsize)
}
