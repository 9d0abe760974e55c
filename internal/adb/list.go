package adb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Melal1/adb-tui/internal/pathutil"
)

// List returns the entries of a remote directory. The order is whatever
// the device shell produced; callers impose their own display order.
//
// Classification uses `ls -F` markers: a trailing slash is a directory,
// a bare name (or executable star) is a file, and anything the shell
// tags as a symlink, socket, or fifo comes back as Unknown.
func (c *Client) List(ctx context.Context, path string) ([]Entry, error) {
	path = pathutil.CleanRemote(path)

	stdout, stderr, err := c.r.run(ctx, c.args("shell", "ls", "-F", shellQuote(path))...)
	if err != nil || strings.TrimSpace(stderr) != "" {
		if cls := classifyShellError(stderr); cls != nil {
			c.log.Debug().Str("path", path).Err(cls).Msg("listing refused")
			return nil, &ListingError{Path: path, Err: cls}
		}
		if err != nil {
			return nil, &ListingError{Path: path, Err: fmt.Errorf("adb shell ls: %w", err)}
		}
	}

	// Some toybox builds report the failure on stdout instead.
	if trimmed := strings.TrimSpace(stdout); strings.HasPrefix(trimmed, "ls:") {
		if cls := classifyShellError(trimmed); cls != nil {
			return nil, &ListingError{Path: path, Err: cls}
		}
	}

	entries := parseListOutput(path, stdout)

	// ls on a non-directory exits 0 and echoes the operand. A listing
	// never yields a name carrying separators, so that single echoed row
	// means the path is not a directory.
	if len(entries) == 1 && entries[0].Name == path {
		return nil, &ListingError{Path: path, Err: ErrNotFound}
	}

	c.log.Debug().Str("path", path).Int("entries", len(entries)).Msg("listed directory")
	return entries, nil
}

// parseListOutput converts `ls -F` lines into classified entries.
func parseListOutput(parent, out string) []Entry {
	lines := strings.Split(out, "\n")
	entries := make([]Entry, 0, len(lines))

	for _, line := range lines {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}

		kind := KindFile
		switch {
		case strings.HasSuffix(name, "/"):
			kind = KindDirectory
			name = strings.TrimSuffix(name, "/")
		case strings.HasSuffix(name, "@"),
			strings.HasSuffix(name, "="),
			strings.HasSuffix(name, "|"):
			kind = KindUnknown
			name = name[:len(name)-1]
		case strings.HasSuffix(name, "*"):
			// Executable bit; still a regular file.
			name = strings.TrimSuffix(name, "*")
		}

		if name == "" || name == "." || name == ".." {
			continue
		}

		entries = append(entries, Entry{
			Name:       name,
			Kind:       kind,
			ParentPath: parent,
		})
	}
	return entries
}

// Stat reclassifies a single remote path. Used to confirm the kind of an
// Unknown entry before it becomes selectable.
func (c *Client) Stat(ctx context.Context, path string) (Entry, error) {
	path = pathutil.CleanRemote(path)

	// %F prints the file type of the symlink target, which is exactly
	// the confirmation an Unknown entry needs.
	stdout, stderr, err := c.r.run(ctx, c.args("shell", "stat", "-L", "-c", "%F", shellQuote(path))...)
	if err != nil || strings.TrimSpace(stderr) != "" {
		if cls := classifyShellError(stderr); cls != nil {
			return Entry{}, &ListingError{Path: path, Err: cls}
		}
		if err != nil {
			return Entry{}, &ListingError{Path: path, Err: fmt.Errorf("adb shell stat: %w", err)}
		}
	}

	entry := Entry{
		Name:       pathutil.RemoteBase(path),
		ParentPath: pathutil.RemoteParent(path),
		Kind:       kindFromStatType(stdout),
	}
	return entry, nil
}

// kindFromStatType maps `stat -c %F` output to an entry kind.
func kindFromStatType(out string) EntryKind {
	switch strings.TrimSpace(out) {
	case "regular file", "regular empty file":
		return KindFile
	case "directory":
		return KindDirectory
	default:
		return KindUnknown
	}
}

// Size returns the byte size of a remote file. Transfer progress needs a
// total; adb pull only reports percentages.
func (c *Client) Size(ctx context.Context, path string) (int64, error) {
	path = pathutil.CleanRemote(path)

	stdout, stderr, err := c.r.run(ctx, c.args("shell", "stat", "-L", "-c", "%s", shellQuote(path))...)
	if err != nil {
		if cls := classifyShellError(stderr); cls != nil {
			return 0, cls
		}
		return 0, fmt.Errorf("adb shell stat: %w", err)
	}

	size, err := strconv.ParseInt(strings.TrimSpace(stdout), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected stat output %q: %w", strings.TrimSpace(stdout), err)
	}
	return size, nil
}
