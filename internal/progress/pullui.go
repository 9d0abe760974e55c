// Package progress renders pull progress bars for the plain CLI path.
// The TUI has its own rendering; this package is only wired up when a
// pull runs without the full-screen interface.
package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// PullUI manages progress bars for a batch of adb pulls using mpb.
type PullUI struct {
	progress   *mpb.Progress
	bars       sync.Map // taskID -> *PullBar
	isTerminal bool
	totalFiles int
}

// PullBar is the progress bar for a single pull.
type PullBar struct {
	bar        *mpb.Bar
	ui         *PullUI
	index      int
	remotePath string
	size       int64
	startTime  time.Time
	lastUpdate time.Time
	lastBytes  int64
}

// NewPullUI creates a pull progress UI for the given number of files.
// On a non-TTY the bars are disabled and plain text lines are printed
// instead.
func NewPullUI(totalFiles int) *PullUI {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))

	var p *mpb.Progress
	if isTerminal {
		enableWindowsANSI(os.Stderr)

		p = mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(300*time.Millisecond),
			mpb.WithWidth(100),
		)
	} else {
		p = mpb.New(mpb.WithOutput(io.Discard))
	}

	return &PullUI{
		progress:   p,
		isTerminal: isTerminal,
		totalFiles: totalFiles,
	}
}

// AddBar creates a progress bar for one pull, keyed by taskID. Size may
// be zero when the remote stat failed; the bar then renders percent only.
func (u *PullUI) AddBar(taskID string, index int, remotePath string, size int64) *PullBar {
	pb := &PullBar{
		ui:         u,
		index:      index,
		remotePath: remotePath,
		size:       size,
		startTime:  time.Now(),
		lastUpdate: time.Now(),
	}

	if u.isTerminal {
		pb.bar = u.progress.New(size,
			mpb.BarStyle().
				Lbound("[").
				Filler("█").
				Tip("█").
				Padding("░").
				Rbound("]"),
			mpb.PrependDecorators(
				decor.Any(func(s decor.Statistics) string {
					return fmt.Sprintf("[%d/%d] %s",
						pb.index, u.totalFiles, truncatePath(pb.remotePath, 2))
				}, decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
				decor.Name("  "),
				decor.Percentage(decor.WCSyncSpace),
				decor.Name("  "),
				decor.EwmaSpeed(decor.SizeB1024(0), "% .1f", 60, decor.WCSyncSpace),
			),
			mpb.BarRemoveOnComplete(),
		)
	} else {
		fmt.Printf("Pulling [%d/%d]: %s (%.1f MiB)\n",
			index, u.totalFiles,
			remotePath,
			float64(size)/(1024*1024))
	}

	u.bars.Store(taskID, pb)
	return pb
}

// Bar returns the bar for a task, if one was added.
func (u *PullUI) Bar(taskID string) (*PullBar, bool) {
	v, ok := u.bars.Load(taskID)
	if !ok {
		return nil, false
	}
	return v.(*PullBar), true
}

// UpdateProgress advances the bar to the given fraction (0.0 to 1.0).
// Updates are throttled; EwmaIncrBy is fed the elapsed time even when
// no bytes moved so the speed readout stays honest.
func (p *PullBar) UpdateProgress(fraction float64) {
	if p.bar == nil {
		return
	}

	now := time.Now()
	elapsed := now.Sub(p.lastUpdate)

	currentBytes := int64(fraction * float64(p.size))
	bytesDelta := currentBytes - p.lastBytes

	const updateInterval = 300 * time.Millisecond
	if elapsed >= updateInterval {
		p.bar.EwmaIncrBy(int(bytesDelta), elapsed)
		p.lastBytes = currentBytes
		p.lastUpdate = now
	}
}

// Complete finishes the bar and prints a one-line summary above the
// remaining bars.
func (p *PullBar) Complete(err error) {
	elapsed := time.Since(p.startTime)

	if err == nil {
		if p.bar != nil {
			p.bar.SetCurrent(p.size)
			p.bar.SetTotal(p.size, true)
		}

		speed := float64(p.size) / elapsed.Seconds() / (1024 * 1024)
		msg := fmt.Sprintf("✓ %s (%.1f MiB, %s, %.1f MiB/s)\n",
			truncatePath(p.remotePath, 2),
			float64(p.size)/(1024*1024),
			elapsed.Round(time.Second),
			speed)
		p.ui.write(msg)
		return
	}

	if p.bar != nil {
		p.bar.Abort(false)
	}
	p.ui.write(fmt.Sprintf("✗ %s: %v\n", truncatePath(p.remotePath, 2), err))
}

// Wait blocks until all bars have completed or aborted.
func (u *PullUI) Wait() {
	if u.progress != nil {
		u.progress.Wait()
	}
}

// LogWriter returns a writer that prints above the active bars without
// corrupting them.
func (u *PullUI) LogWriter() io.Writer {
	if u.progress != nil && u.isTerminal {
		return u.progress
	}
	return os.Stderr
}

// IsTerminal reports whether bars are actually being rendered.
func (u *PullUI) IsTerminal() bool {
	return u.isTerminal
}

func (u *PullUI) write(msg string) {
	if u.isTerminal && u.progress != nil {
		u.progress.Write([]byte(msg))
		return
	}
	fmt.Print(msg)
}

// truncatePath keeps only the last N path components.
// Example: truncatePath("/a/b/c/d/file.txt", 2) → "…/d/file.txt"
func truncatePath(path string, maxComponents int) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= maxComponents {
		return filepath.Base(path)
	}
	relevant := parts[len(parts)-maxComponents:]
	return "…/" + strings.Join(relevant, "/")
}
