package browser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Melal1/adb-tui/internal/adb"
)

// fakeLister serves canned directory trees without a device.
type fakeLister struct {
	dirs  map[string][]adb.Entry // path -> entries
	fail  map[string]error      // path -> listing error
	stats map[string]adb.Entry  // path -> stat result
	calls int
}

func (f *fakeLister) List(_ context.Context, path string) ([]adb.Entry, error) {
	f.calls++
	if err, ok := f.fail[path]; ok {
		return nil, &adb.ListingError{Path: path, Err: err}
	}
	entries, ok := f.dirs[path]
	if !ok {
		return nil, &adb.ListingError{Path: path, Err: adb.ErrNotFound}
	}
	out := make([]adb.Entry, len(entries))
	copy(out, entries)
	return out, nil
}

func (f *fakeLister) Stat(_ context.Context, path string) (adb.Entry, error) {
	e, ok := f.stats[path]
	if !ok {
		return adb.Entry{}, &adb.ListingError{Path: path, Err: adb.ErrNotFound}
	}
	return e, nil
}

func entry(parent, name string, kind adb.EntryKind) adb.Entry {
	return adb.Entry{Name: name, Kind: kind, ParentPath: parent}
}

// newTestLister builds the tree used across tests:
//
//	/            docs/  a.txt  b.txt
//	/docs        deep/  readme.md
//	/docs/deep   (empty)
func newTestLister() *fakeLister {
	return &fakeLister{
		dirs: map[string][]adb.Entry{
			"/": {
				entry("/", "docs", adb.KindDirectory),
				entry("/", "a.txt", adb.KindFile),
				entry("/", "b.txt", adb.KindFile),
			},
			"/docs": {
				entry("/docs", "deep", adb.KindDirectory),
				entry("/docs", "readme.md", adb.KindFile),
			},
			"/docs/deep": {},
		},
		fail:  map[string]error{},
		stats: map[string]adb.Entry{},
	}
}

func newTestSession(t *testing.T, lister Lister) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), lister, Config{Root: "/", ClearAfterTransfer: true}, nil)
	require.NoError(t, err)
	return s
}

func TestNewSessionFailsWhenRootUnlistable(t *testing.T) {
	lister := newTestLister()
	lister.fail["/"] = adb.ErrDeviceUnavailable

	_, err := NewSession(context.Background(), lister, Config{Root: "/"}, nil)
	assert.ErrorIs(t, err, adb.ErrDeviceUnavailable)
}

func TestEntriesAreSortedDirectoriesFirst(t *testing.T) {
	lister := &fakeLister{dirs: map[string][]adb.Entry{
		"/": {
			entry("/", "zebra.txt", adb.KindFile),
			entry("/", "Apps", adb.KindDirectory),
			entry("/", "alpha.txt", adb.KindFile),
			entry("/", "movies", adb.KindDirectory),
		},
	}}
	s := newTestSession(t, lister)

	var names []string
	for _, e := range s.Snapshot().Entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Apps", "movies", "alpha.txt", "zebra.txt"}, names)
}

func TestMoveCursorStaysInBounds(t *testing.T) {
	s := newTestSession(t, newTestLister())

	// Hammer the cursor well past both ends.
	for i := 0; i < 10; i++ {
		s.MoveCursor(+1)
	}
	assert.Equal(t, 2, s.Snapshot().Cursor)

	for i := 0; i < 10; i++ {
		s.MoveCursor(-1)
	}
	assert.Equal(t, 0, s.Snapshot().Cursor)

	s.MoveCursor(+100)
	assert.Equal(t, 2, s.Snapshot().Cursor)
	s.MoveCursor(-100)
	assert.Equal(t, 0, s.Snapshot().Cursor)
}

func TestMoveCursorOnEmptyDirectoryIsNoop(t *testing.T) {
	s := newTestSession(t, newTestLister())

	require.NoError(t, s.EnterDirectory(context.Background())) // /docs (cursor 0 = docs)
	require.NoError(t, s.EnterDirectory(context.Background())) // /docs/deep, empty

	s.MoveCursor(+1)
	s.MoveCursor(-1)
	assert.Equal(t, 0, s.Snapshot().Cursor)
	assert.Empty(t, s.Snapshot().Entries)
}

func TestEnterDirectoryOnFileIsNoop(t *testing.T) {
	s := newTestSession(t, newTestLister())
	s.MoveCursor(+1) // a.txt

	require.NoError(t, s.EnterDirectory(context.Background()))
	snap := s.Snapshot()
	assert.Equal(t, "/", snap.CurrentPath)
	assert.Equal(t, 1, snap.Cursor)
}

func TestEnterThenParentRoundTrip(t *testing.T) {
	s := newTestSession(t, newTestLister())

	require.NoError(t, s.EnterDirectory(context.Background()))
	assert.Equal(t, "/docs", s.Snapshot().CurrentPath)
	assert.Equal(t, 0, s.Snapshot().Cursor)

	require.NoError(t, s.GoToParent(context.Background()))
	snap := s.Snapshot()
	assert.Equal(t, "/", snap.CurrentPath)
	// Cursor restored onto the directory just exited.
	assert.Equal(t, "docs", snap.Entries[snap.Cursor].Name)
}

func TestEnterUnknownEntryThatIsAFileStaysPut(t *testing.T) {
	lister := &fakeLister{
		dirs: map[string][]adb.Entry{
			"/": {entry("/", "link", adb.KindUnknown)},
			// A listing of the symlinked file would "succeed" on a real
			// device; navigation must never get that far.
			"/link": {entry("/", "/link", adb.KindUnknown)},
		},
		stats: map[string]adb.Entry{
			"/link": entry("/", "link", adb.KindFile),
		},
	}
	s := newTestSession(t, lister)

	require.NoError(t, s.EnterDirectory(context.Background()))
	snap := s.Snapshot()
	assert.Equal(t, "/", snap.CurrentPath)
	// The stat result sticks, so the entry is now selectable.
	assert.Equal(t, adb.KindFile, snap.Entries[0].Kind)
	require.NoError(t, s.ToggleSelection())
	assert.Equal(t, []string{"/link"}, s.Snapshot().SelectedPaths())
}

func TestEnterUnknownEntryThatIsADirectoryNavigates(t *testing.T) {
	lister := &fakeLister{
		dirs: map[string][]adb.Entry{
			"/":     {entry("/", "link", adb.KindUnknown)},
			"/link": {entry("/link", "inner.txt", adb.KindFile)},
		},
		stats: map[string]adb.Entry{
			"/link": entry("/", "link", adb.KindDirectory),
		},
	}
	s := newTestSession(t, lister)

	require.NoError(t, s.EnterDirectory(context.Background()))
	snap := s.Snapshot()
	assert.Equal(t, "/link", snap.CurrentPath)
	assert.Equal(t, "inner.txt", snap.Entries[0].Name)
}

func TestEnterUnknownEntryStatFailureLeavesStateUnchanged(t *testing.T) {
	lister := &fakeLister{
		dirs: map[string][]adb.Entry{
			"/": {entry("/", "link", adb.KindUnknown)},
		},
		stats: map[string]adb.Entry{},
	}
	s := newTestSession(t, lister)

	err := s.EnterDirectory(context.Background())
	require.Error(t, err)
	snap := s.Snapshot()
	assert.Equal(t, "/", snap.CurrentPath)
	assert.Equal(t, adb.KindUnknown, snap.Entries[0].Kind)
}

func TestGoToParentFallsBackToZeroWhenExitedEntryGone(t *testing.T) {
	lister := newTestLister()
	s := newTestSession(t, lister)

	require.NoError(t, s.EnterDirectory(context.Background())) // /docs

	// The directory vanishes while we are inside it.
	lister.dirs["/"] = []adb.Entry{
		entry("/", "a.txt", adb.KindFile),
		entry("/", "b.txt", adb.KindFile),
	}

	require.NoError(t, s.GoToParent(context.Background()))
	assert.Equal(t, 0, s.Snapshot().Cursor)
}

func TestGoToParentAtRootIsNoop(t *testing.T) {
	lister := newTestLister()
	s := newTestSession(t, lister)

	before := lister.calls
	require.NoError(t, s.GoToParent(context.Background()))
	assert.Equal(t, before, lister.calls, "no listing issued at root")
	assert.Equal(t, "/", s.Snapshot().CurrentPath)
}

func TestGoToParentStopsAtConfiguredRoot(t *testing.T) {
	lister := &fakeLister{dirs: map[string][]adb.Entry{
		"/sdcard": {entry("/sdcard", "DCIM", adb.KindDirectory)},
		"/sdcard/DCIM": {},
	}}
	s, err := NewSession(context.Background(), lister, Config{Root: "/sdcard/"}, nil)
	require.NoError(t, err)

	require.NoError(t, s.EnterDirectory(context.Background()))
	require.NoError(t, s.GoToParent(context.Background()))
	assert.Equal(t, "/sdcard", s.Snapshot().CurrentPath)

	// At the root ceiling now; parent is a no-op even though /sdcard has
	// a real parent on the device.
	require.NoError(t, s.GoToParent(context.Background()))
	assert.Equal(t, "/sdcard", s.Snapshot().CurrentPath)
}

func TestFailedListingLeavesStateUnchanged(t *testing.T) {
	lister := newTestLister()
	lister.fail["/docs"] = adb.ErrPermissionDenied
	s := newTestSession(t, lister)

	before := s.Snapshot()
	err := s.EnterDirectory(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, adb.ErrPermissionDenied)

	after := s.Snapshot()
	assert.Equal(t, before.CurrentPath, after.CurrentPath)
	assert.Equal(t, before.Cursor, after.Cursor)
	assert.Equal(t, len(before.Entries), len(after.Entries))
}

func TestToggleSelectionOnFiles(t *testing.T) {
	s := newTestSession(t, newTestLister())

	s.MoveCursor(+1) // a.txt
	require.NoError(t, s.ToggleSelection())
	assert.Equal(t, []string{"/a.txt"}, s.Snapshot().SelectedPaths())

	s.MoveCursor(+1) // b.txt
	require.NoError(t, s.ToggleSelection())
	assert.Equal(t, []string{"/a.txt", "/b.txt"}, s.Snapshot().SelectedPaths())
}

func TestToggleSelectionIsAPureToggle(t *testing.T) {
	s := newTestSession(t, newTestLister())
	s.MoveCursor(+1) // a.txt

	require.NoError(t, s.ToggleSelection())
	require.NoError(t, s.ToggleSelection())
	assert.Empty(t, s.Snapshot().SelectedPaths())
}

func TestToggleSelectionOnDirectorySignalsNotSupported(t *testing.T) {
	s := newTestSession(t, newTestLister())
	// cursor 0 = docs (directory)

	err := s.ToggleSelection()
	assert.ErrorIs(t, err, ErrSelectionNotSupported)
	assert.Empty(t, s.Snapshot().SelectedPaths())
}

func TestToggleSelectionOnUnknownSignalsAmbiguous(t *testing.T) {
	lister := &fakeLister{
		dirs: map[string][]adb.Entry{
			"/": {entry("/", "current", adb.KindUnknown)},
		},
		stats: map[string]adb.Entry{
			"/current": entry("/", "current", adb.KindFile),
		},
	}
	s := newTestSession(t, lister)

	err := s.ToggleSelection()
	assert.ErrorIs(t, err, ErrAmbiguousEntry)

	// Confirm the kind, then the toggle goes through.
	require.NoError(t, s.ConfirmEntry(context.Background()))
	require.NoError(t, s.ToggleSelection())
	assert.Equal(t, []string{"/current"}, s.Snapshot().SelectedPaths())
}

func TestSelectionSurvivesNavigation(t *testing.T) {
	s := newTestSession(t, newTestLister())

	s.MoveCursor(+1) // a.txt
	require.NoError(t, s.ToggleSelection())

	// Wander off and come back.
	s.MoveCursor(-1)
	require.NoError(t, s.EnterDirectory(context.Background())) // /docs
	require.NoError(t, s.GoToParent(context.Background()))

	assert.Equal(t, []string{"/a.txt"}, s.Snapshot().SelectedPaths())
}

func TestSelectionSurvivesReload(t *testing.T) {
	s := newTestSession(t, newTestLister())

	s.MoveCursor(+1)
	require.NoError(t, s.ToggleSelection())
	require.NoError(t, s.Reload(context.Background()))

	assert.Equal(t, []string{"/a.txt"}, s.Snapshot().SelectedPaths())
}

func TestReloadClampsCursor(t *testing.T) {
	lister := newTestLister()
	s := newTestSession(t, lister)

	s.MoveCursor(+2) // b.txt, index 2
	lister.dirs["/"] = []adb.Entry{entry("/", "a.txt", adb.KindFile)}

	require.NoError(t, s.Reload(context.Background()))
	assert.Equal(t, 0, s.Snapshot().Cursor)
}

func TestClearSelection(t *testing.T) {
	s := newTestSession(t, newTestLister())
	s.MoveCursor(+1)
	require.NoError(t, s.ToggleSelection())

	s.ClearSelection()
	assert.Empty(t, s.Snapshot().SelectedPaths())
}

func TestRequestTransferEmptySignalsNothingSelected(t *testing.T) {
	s := newTestSession(t, newTestLister())

	_, err := s.RequestTransfer()
	assert.ErrorIs(t, err, ErrNothingSelected)
	assert.Equal(t, ModeBrowsing, s.Mode())
}

func TestRequestTransferScenario(t *testing.T) {
	// Root listing [docs(Dir), a.txt, b.txt], cursor 0.
	s := newTestSession(t, newTestLister())

	s.MoveCursor(+1)
	require.NoError(t, s.ToggleSelection()) // a.txt
	s.MoveCursor(+1)
	require.NoError(t, s.ToggleSelection()) // b.txt

	paths, err := s.RequestTransfer()
	require.NoError(t, err)
	assert.Equal(t, []string{"/a.txt", "/b.txt"}, paths)
	assert.Equal(t, ModeTransferRequested, s.Mode())
}

func TestTransferSnapshotIsImmuneToLaterMutation(t *testing.T) {
	s := newTestSession(t, newTestLister())
	s.MoveCursor(+1)
	require.NoError(t, s.ToggleSelection())

	paths, err := s.RequestTransfer()
	require.NoError(t, err)

	// Every mutating intent is refused while the transfer is out.
	assert.ErrorIs(t, s.ToggleSelection(), ErrTransferInFlight)
	assert.ErrorIs(t, s.EnterDirectory(context.Background()), ErrTransferInFlight)
	assert.ErrorIs(t, s.GoToParent(context.Background()), ErrTransferInFlight)
	assert.ErrorIs(t, s.Reload(context.Background()), ErrTransferInFlight)
	_, err = s.RequestTransfer()
	assert.ErrorIs(t, err, ErrTransferInFlight)

	assert.Equal(t, []string{"/a.txt"}, paths)
}

func TestCompleteTransferSuccessClearsPerPolicy(t *testing.T) {
	s := newTestSession(t, newTestLister()) // ClearAfterTransfer: true
	s.MoveCursor(+1)
	require.NoError(t, s.ToggleSelection())

	_, err := s.RequestTransfer()
	require.NoError(t, err)

	s.CompleteTransfer(nil)
	assert.Equal(t, ModeBrowsing, s.Mode())
	assert.Empty(t, s.Snapshot().SelectedPaths())
}

func TestCompleteTransferSuccessKeepsSelectionWhenPolicyOff(t *testing.T) {
	s, err := NewSession(context.Background(), newTestLister(),
		Config{Root: "/", ClearAfterTransfer: false}, nil)
	require.NoError(t, err)

	s.MoveCursor(+1)
	require.NoError(t, s.ToggleSelection())
	_, err = s.RequestTransfer()
	require.NoError(t, err)

	s.CompleteTransfer(nil)
	assert.Equal(t, []string{"/a.txt"}, s.Snapshot().SelectedPaths())
}

func TestCompleteTransferFailureKeepsSelection(t *testing.T) {
	s := newTestSession(t, newTestLister())
	s.MoveCursor(+1)
	require.NoError(t, s.ToggleSelection())

	_, err := s.RequestTransfer()
	require.NoError(t, err)

	s.CompleteTransfer(context.Canceled)
	assert.Equal(t, ModeBrowsing, s.Mode())
	// Retry without re-selecting.
	assert.Equal(t, []string{"/a.txt"}, s.Snapshot().SelectedPaths())
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestSession(t, newTestLister())

	snap := s.Snapshot()
	snap.Entries[0].Name = "mutated"
	snap.Selected["/bogus"] = true

	fresh := s.Snapshot()
	assert.Equal(t, "docs", fresh.Entries[0].Name)
	assert.Empty(t, fresh.SelectedPaths())
}
