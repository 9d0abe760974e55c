// Package version provides build version information. Separate package
// so cli and tui can both report it without import cycles.
package version

import "fmt"

// Version is the build version string, set by ldflags during release
// builds. Format: vX.Y.Z or vX.Y.Z-dev for development builds.
var Version = "v0.3.0-dev"

// BuildTime is the build timestamp, set by ldflags.
var BuildTime = "unknown"

// String returns the full version line.
func String() string {
	return fmt.Sprintf("adb-tui %s (built %s)", Version, BuildTime)
}
