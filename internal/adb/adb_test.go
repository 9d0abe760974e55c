package adb

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner replays canned adb output keyed on the joined argument list.
type fakeRunner struct {
	stdout map[string]string
	stderr map[string]string
	errs   map[string]error
	calls  []string
}

func (f *fakeRunner) run(_ context.Context, args ...string) (string, string, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	return f.stdout[key], f.stderr[key], f.errs[key]
}

func (f *fakeRunner) stream(_ context.Context, onLine func(string), args ...string) (string, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	for _, line := range strings.Split(f.stdout[key], "\n") {
		if line != "" {
			onLine(line)
		}
	}
	return f.stderr[key], f.errs[key]
}

func newTestClient(r runner) *Client {
	c := NewClient("adb", "", nil)
	c.r = r
	return c
}

func TestListClassifiesEntries(t *testing.T) {
	fake := &fakeRunner{stdout: map[string]string{
		"shell ls -F '/sdcard'": "DCIM/\nDownload/\nnotes.txt\nbackup.sh*\ncurrent@\npipe|\nsock=\n",
	}}
	c := newTestClient(fake)

	entries, err := c.List(context.Background(), "/sdcard/")
	require.NoError(t, err)
	require.Len(t, entries, 7)

	byName := map[string]Entry{}
	for _, e := range entries {
		byName[e.Name] = e
	}

	assert.Equal(t, KindDirectory, byName["DCIM"].Kind)
	assert.Equal(t, KindDirectory, byName["Download"].Kind)
	assert.Equal(t, KindFile, byName["notes.txt"].Kind)
	assert.Equal(t, KindFile, byName["backup.sh"].Kind, "executable marker is still a regular file")
	assert.Equal(t, KindUnknown, byName["current"].Kind)
	assert.Equal(t, KindUnknown, byName["pipe"].Kind)
	assert.Equal(t, KindUnknown, byName["sock"].Kind)

	assert.Equal(t, "/sdcard/DCIM", byName["DCIM"].FullPath())
	assert.Equal(t, "/sdcard", byName["DCIM"].ParentPath)
}

func TestListPermissionDenied(t *testing.T) {
	fake := &fakeRunner{
		stderr: map[string]string{
			"shell ls -F '/data'": "ls: /data: Permission denied",
		},
		errs: map[string]error{
			"shell ls -F '/data'": errors.New("exit status 1"),
		},
	}
	c := newTestClient(fake)

	_, err := c.List(context.Background(), "/data")

	var lerr *ListingError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "/data", lerr.Path)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestListNotFound(t *testing.T) {
	fake := &fakeRunner{
		stderr: map[string]string{
			"shell ls -F '/sdcard/gone'": "ls: /sdcard/gone: No such file or directory",
		},
		errs: map[string]error{
			"shell ls -F '/sdcard/gone'": errors.New("exit status 1"),
		},
	}
	c := newTestClient(fake)

	_, err := c.List(context.Background(), "/sdcard/gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDeviceUnavailable(t *testing.T) {
	fake := &fakeRunner{
		stderr: map[string]string{
			"shell ls -F '/sdcard'": "adb: no devices/emulators found",
		},
		errs: map[string]error{
			"shell ls -F '/sdcard'": errors.New("exit status 1"),
		},
	}
	c := newTestClient(fake)

	_, err := c.List(context.Background(), "/sdcard")
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestListOnFilePathIsNotADirectory(t *testing.T) {
	// ls on a non-directory exits 0 and echoes the operand; adb reports
	// nothing on stderr. The echo must not pass as a one-entry listing.
	fake := &fakeRunner{stdout: map[string]string{
		"shell ls -F '/sdcard/link'":  "/sdcard/link@\n",
		"shell ls -F '/sdcard/a.txt'": "/sdcard/a.txt\n",
	}}
	c := newTestClient(fake)

	_, err := c.List(context.Background(), "/sdcard/link")
	var lerr *ListingError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "/sdcard/link", lerr.Path)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.List(context.Background(), "/sdcard/a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsesSerialFlag(t *testing.T) {
	fake := &fakeRunner{stdout: map[string]string{
		"-s emulator-5554 shell ls -F '/sdcard'": "a.txt\n",
	}}
	c := NewClient("adb", "emulator-5554", nil)
	c.r = fake

	entries, err := c.List(context.Background(), "/sdcard")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].Name)
}

func TestStatConfirmsKind(t *testing.T) {
	fake := &fakeRunner{stdout: map[string]string{
		"shell stat -L -c %F '/sdcard/current'": "regular file\n",
	}}
	c := newTestClient(fake)

	entry, err := c.Stat(context.Background(), "/sdcard/current")
	require.NoError(t, err)
	assert.Equal(t, KindFile, entry.Kind)
	assert.Equal(t, "current", entry.Name)
	assert.Equal(t, "/sdcard", entry.ParentPath)
}

func TestStatDirectoryAndOther(t *testing.T) {
	assert.Equal(t, KindDirectory, kindFromStatType("directory\n"))
	assert.Equal(t, KindFile, kindFromStatType("regular empty file"))
	assert.Equal(t, KindUnknown, kindFromStatType("character special file"))
}

func TestSize(t *testing.T) {
	fake := &fakeRunner{stdout: map[string]string{
		"shell stat -L -c %s '/sdcard/a.bin'": "1048576\n",
	}}
	c := newTestClient(fake)

	size, err := c.Size(context.Background(), "/sdcard/a.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(1048576), size)
}

func TestParseDevices(t *testing.T) {
	out := `List of devices attached
emulator-5554          device product:sdk_gphone64 model:sdk_gphone64_x86_64 device:emu64x
RF8M33XYZ              unauthorized usb:1-4
`
	devices := parseDevices(out)
	require.Len(t, devices, 2)

	assert.Equal(t, "emulator-5554", devices[0].Serial)
	assert.Equal(t, "device", devices[0].State)
	assert.Equal(t, "sdk gphone64 x86 64", devices[0].Model)

	assert.Equal(t, "RF8M33XYZ", devices[1].Serial)
	assert.Equal(t, "unauthorized", devices[1].State)
}

func TestParsePullProgress(t *testing.T) {
	p, ok := parsePullProgress("[ 42%] /sdcard/DCIM/IMG_0001.jpg")
	require.True(t, ok)
	assert.InDelta(t, 0.42, p.Fraction, 1e-9)
	assert.Equal(t, "/sdcard/DCIM/IMG_0001.jpg", p.CurrentFile)

	p, ok = parsePullProgress("[100%] /sdcard/x")
	require.True(t, ok)
	assert.InDelta(t, 1.0, p.Fraction, 1e-9)

	_, ok = parsePullProgress("1 file pulled, 0 skipped. 23.4 MB/s (1048576 bytes in 0.043s)")
	assert.False(t, ok)
}

func TestPullReportsProgressAndErrors(t *testing.T) {
	fake := &fakeRunner{stdout: map[string]string{
		"pull -p /sdcard/a.bin /tmp/dest": "[ 10%] /sdcard/a.bin\n[ 55%] /sdcard/a.bin\n[100%] /sdcard/a.bin\n1 file pulled, 0 skipped.",
	}}
	c := newTestClient(fake)

	var fractions []float64
	err := c.Pull(context.Background(), "/sdcard/a.bin", "/tmp/dest", func(p PullProgress) {
		fractions = append(fractions, p.Fraction)
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.10, 0.55, 1.0}, fractions)

	fake = &fakeRunner{
		stderr: map[string]string{
			"pull -p /sdcard/gone /tmp/dest": "adb: error: remote object '/sdcard/gone' does not exist",
		},
		errs: map[string]error{
			"pull -p /sdcard/gone /tmp/dest": errors.New("exit status 1"),
		},
	}
	c = newTestClient(fake)
	err = c.Pull(context.Background(), "/sdcard/gone", "/tmp/dest", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "'/sdcard/My Photos'", shellQuote("/sdcard/My Photos"))
	assert.Equal(t, `'/sdcard/it'\''s'`, shellQuote("/sdcard/it's"))
}
