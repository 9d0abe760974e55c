// Package notify provides desktop notifications for selection summaries
// and transfer outcomes. It uses github.com/gen2brain/beeep for
// cross-platform notification support.
package notify

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/Melal1/adb-tui/internal/logging"
	"github.com/Melal1/adb-tui/internal/pathutil"
)

const appTitle = "adb-tui"

// Notifier handles desktop notifications.
type Notifier struct {
	logger  *logging.Logger
	enabled bool
	mu      sync.RWMutex
}

// NewNotifier creates a notifier. When disabled every method is a no-op,
// so callers never need to guard their calls.
func NewNotifier(enabled bool, logger *logging.Logger) *Notifier {
	return &Notifier{
		logger:  logger,
		enabled: enabled,
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// SelectionSummary shows the current selection as a notification. Bound
// to a key in the TUI so the set is visible without leaving the browser.
func (n *Notifier) SelectionSummary(paths []string) {
	if !n.IsEnabled() {
		return
	}

	if len(paths) == 0 {
		n.send(appTitle, "Nothing selected.")
		return
	}

	const maxShown = 5
	message := fmt.Sprintf("%d file(s) selected:\n", len(paths))
	for i, p := range paths {
		if i == maxShown {
			message += fmt.Sprintf("... and %d more", len(paths)-maxShown)
			break
		}
		message += truncate(pathutil.RemoteBase(p), 48) + "\n"
	}

	n.send(appTitle, message)
}

// TransferComplete announces a finished batch.
func (n *Notifier) TransferComplete(count int, destDir string) {
	if !n.IsEnabled() {
		return
	}

	message := fmt.Sprintf("Pulled %d file(s) to:\n%s", count, shortenPath(destDir))
	n.send("Transfer Complete", message)
}

// TransferFailed announces a batch that did not fully complete.
func (n *Notifier) TransferFailed(failed, total int) {
	if !n.IsEnabled() {
		return
	}

	message := fmt.Sprintf("%d of %d transfer(s) failed.", failed, total)
	if err := beeep.Alert("Transfer Failed", message, ""); err != nil {
		n.send("Transfer Failed", message)
	}
}

func (n *Notifier) send(title, message string) {
	// beeep.Notify is cross-platform:
	// - Windows: toast notifications
	// - macOS: NSUserNotificationCenter
	// - Linux: D-Bus notifications
	if err := beeep.Notify(title, message, ""); err != nil && n.logger != nil {
		n.logger.Warn().Err(err).Msg("Failed to send notification")
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// shortenPath abbreviates a long local path for display in notifications.
func shortenPath(path string) string {
	const maxLen = 60

	if len(path) <= maxLen {
		return path
	}

	_, file := filepath.Split(path)
	parentDir := filepath.Base(filepath.Dir(path))
	short := filepath.Join("...", parentDir, file)

	vol := filepath.VolumeName(path)
	if vol != "" && len(vol)+len(short)+1 <= maxLen {
		short = vol + string(filepath.Separator) + short
	}

	if len(short) > maxLen {
		return "..." + path[len(path)-(maxLen-3):]
	}

	return short
}
