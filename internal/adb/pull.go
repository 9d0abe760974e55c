package adb

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// pullProgressRe matches adb's percentage readout, e.g. "[ 42%] /sdcard/x.bin".
var pullProgressRe = regexp.MustCompile(`^\[\s*(\d+)%\]\s*(.*)$`)

// PullProgress is one tick of a transfer's progress stream.
type PullProgress struct {
	Fraction    float64 // 0.0 to 1.0
	CurrentFile string  // remote path as reported by adb, may be empty
}

// Pull copies one remote path into destDir via `adb pull -p`, delivering
// progress ticks as adb reports them. Cancelling the context kills the
// adb process; the partially written local file is left as-is.
func (c *Client) Pull(ctx context.Context, remotePath, destDir string, onProgress func(PullProgress)) error {
	args := c.args("pull", "-p", remotePath, destDir)

	c.log.Info().Str("remote", remotePath).Str("dest", destDir).Msg("pull started")

	stderr, err := c.r.stream(ctx, func(line string) {
		if p, ok := parsePullProgress(line); ok && onProgress != nil {
			onProgress(p)
		}
	}, args...)

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		if cls := classifyShellError(stderr); cls != nil {
			return fmt.Errorf("pull %s: %w", remotePath, cls)
		}
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("pull %s: %s", remotePath, firstLine(msg))
	}

	c.log.Info().Str("remote", remotePath).Msg("pull finished")
	return nil
}

// parsePullProgress extracts a progress tick from one adb output line.
func parsePullProgress(line string) (PullProgress, bool) {
	m := pullProgressRe.FindStringSubmatch(line)
	if m == nil {
		return PullProgress{}, false
	}
	pct, err := strconv.Atoi(m[1])
	if err != nil || pct < 0 || pct > 100 {
		return PullProgress{}, false
	}
	return PullProgress{
		Fraction:    float64(pct) / 100,
		CurrentFile: strings.TrimSpace(m[2]),
	}, true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
