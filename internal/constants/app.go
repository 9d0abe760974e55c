// Package constants centralizes tunables shared across the CLI and TUI.
package constants

import "time"

// Device bridge defaults
const (
	// DefaultADBBinary - adb executable looked up on PATH when no explicit
	// path is configured
	DefaultADBBinary = "adb"

	// DefaultRemoteRoot - starting remote directory for a browse session
	DefaultRemoteRoot = "/sdcard/"

	// ListingTimeout - upper bound for a single directory listing round trip.
	// A hung adb server should surface as DeviceUnavailable, not a frozen UI.
	ListingTimeout = 15 * time.Second

	// StatTimeout - upper bound for a single-entry stat round trip
	StatTimeout = 5 * time.Second
)

// Event System
const (
	// EventBusDefaultBuffer - default buffer size for event channels
	EventBusDefaultBuffer = 256

	// EventBusMaxBuffer - maximum buffer size for high-throughput scenarios
	EventBusMaxBuffer = 4096
)

// UI Updates
const (
	// ProgressUpdateInterval - interval for progress readout updates.
	// Balances responsiveness with render cost.
	ProgressUpdateInterval = 250 * time.Millisecond

	// TransferLogMaxLines - maximum transfer log lines retained for the
	// scrollable viewer
	TransferLogMaxLines = 10000
)
