// Package browser holds the navigation and selection state machine that
// decides which remote paths get handed to the transfer queue.
//
// A Session has a single owner: the interactive input loop. All mutation
// happens on that one goroutine, so the type carries no locking. Transfers
// run elsewhere and report back through CompleteTransfer.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Melal1/adb-tui/internal/adb"
	"github.com/Melal1/adb-tui/internal/events"
	"github.com/Melal1/adb-tui/internal/pathutil"
)

// Mode is the session's display mode.
type Mode int

const (
	// ModeBrowsing - default; all intents accepted.
	ModeBrowsing Mode = iota

	// ModeTransferRequested - a selection snapshot has been handed to the
	// transfer queue; entries are display-only until the transfer reports
	// a terminal outcome.
	ModeTransferRequested
)

// User-recoverable signals. Each leaves the session in its last-known
// consistent configuration.
var (
	// ErrSelectionNotSupported - toggle on a directory; directory copy is
	// out of scope, and the restriction is deliberate and observable.
	ErrSelectionNotSupported = errors.New("directories cannot be selected")

	// ErrAmbiguousEntry - toggle on an entry whose kind is not confirmed.
	// Confirm it first rather than guessing.
	ErrAmbiguousEntry = errors.New("entry kind not confirmed, press again to check it")

	// ErrNothingSelected - transfer requested with an empty selection.
	ErrNothingSelected = errors.New("nothing selected")

	// ErrTransferInFlight - a mutating intent arrived while a transfer
	// snapshot is outstanding.
	ErrTransferInFlight = errors.New("transfer in progress")
)

// Lister resolves remote directory contents. Satisfied by *adb.Client and
// by fakes in tests.
type Lister interface {
	List(ctx context.Context, path string) ([]adb.Entry, error)
	Stat(ctx context.Context, path string) (adb.Entry, error)
}

// Config is the subset of configuration the session reads at start.
type Config struct {
	// Root is the starting directory and the navigation ceiling.
	Root string

	// ClearAfterTransfer empties the selection after a successful
	// transfer. Failures and cancellations always keep it.
	ClearAfterTransfer bool
}

// Session is the (currentPath, cursor, entries, selection) tuple plus the
// display mode. currentPath always names a directory whose listing
// succeeded; a refused listing never moves navigation.
type Session struct {
	lister Lister
	cfg    Config
	bus    *events.Bus // optional

	currentPath string
	entries     []adb.Entry
	cursor      int
	selected    map[string]adb.Entry // keyed by full remote path
	mode        Mode
}

// NewSession creates a session rooted at cfg.Root and lists it. A root
// that cannot be listed fails session start outright.
func NewSession(ctx context.Context, lister Lister, cfg Config, bus *events.Bus) (*Session, error) {
	cfg.Root = pathutil.CleanRemote(cfg.Root)

	s := &Session{
		lister:   lister,
		cfg:      cfg,
		bus:      bus,
		selected: make(map[string]adb.Entry),
	}

	entries, err := lister.List(ctx, cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("cannot list root %s: %w", cfg.Root, err)
	}

	s.currentPath = cfg.Root
	s.entries = sortEntries(entries)
	s.publishDirectoryChanged()
	return s, nil
}

// Root returns the configured navigation ceiling.
func (s *Session) Root() string { return s.cfg.Root }

// Mode returns the current display mode.
func (s *Session) Mode() Mode { return s.mode }

// MoveCursor moves the cursor by delta and clamps it to the entry list.
// A no-op on an empty list and while a transfer is outstanding.
func (s *Session) MoveCursor(delta int) {
	if s.mode != ModeBrowsing || len(s.entries) == 0 {
		return
	}
	s.cursor += delta
	if s.cursor < 0 {
		s.cursor = 0
	}
	if s.cursor > len(s.entries)-1 {
		s.cursor = len(s.entries) - 1
	}
}

// EnterDirectory descends into the entry under the cursor. Directory
// entries navigate; File entries are a silent no-op. An Unknown entry is
// stat-confirmed first: currentPath must always name a directory, and
// listing a symlinked file would not fail on its own. On a refused
// listing the session is left exactly as it was and the error is
// returned.
func (s *Session) EnterDirectory(ctx context.Context) error {
	if s.mode != ModeBrowsing {
		return ErrTransferInFlight
	}
	entry, ok := s.entryUnderCursor()
	if !ok || entry.Kind == adb.KindFile {
		return nil
	}

	if entry.Kind == adb.KindUnknown {
		confirmed, err := s.lister.Stat(ctx, entry.FullPath())
		if err != nil {
			return err
		}
		s.entries[s.cursor].Kind = confirmed.Kind
		if confirmed.Kind != adb.KindDirectory {
			return nil
		}
		entry = s.entries[s.cursor]
	}

	target := entry.FullPath()
	entries, err := s.lister.List(ctx, target)
	if err != nil {
		s.publishListingFailed(target, err)
		return err
	}

	s.currentPath = target
	s.entries = sortEntries(entries)
	s.cursor = 0
	s.publishDirectoryChanged()
	return nil
}

// GoToParent climbs one level, positioning the cursor on the directory
// just exited so parent/enter cycles are stable. A no-op at the root.
func (s *Session) GoToParent(ctx context.Context) error {
	if s.mode != ModeBrowsing {
		return ErrTransferInFlight
	}
	if s.currentPath == s.cfg.Root || s.currentPath == "/" {
		return nil
	}

	parent := pathutil.RemoteParent(s.currentPath)
	exited := pathutil.RemoteBase(s.currentPath)

	entries, err := s.lister.List(ctx, parent)
	if err != nil {
		s.publishListingFailed(parent, err)
		return err
	}

	s.currentPath = parent
	s.entries = sortEntries(entries)
	s.cursor = 0
	for i, e := range s.entries {
		if e.Name == exited && e.Kind != adb.KindFile {
			s.cursor = i
			break
		}
	}
	s.publishDirectoryChanged()
	return nil
}

// GoHome jumps back to the configured root.
func (s *Session) GoHome(ctx context.Context) error {
	if s.mode != ModeBrowsing {
		return ErrTransferInFlight
	}

	entries, err := s.lister.List(ctx, s.cfg.Root)
	if err != nil {
		s.publishListingFailed(s.cfg.Root, err)
		return err
	}

	s.currentPath = s.cfg.Root
	s.entries = sortEntries(entries)
	s.cursor = 0
	s.publishDirectoryChanged()
	return nil
}

// Reload re-lists the current directory, keeping the cursor clamped and
// the selection intact. This is the user-initiated retry: a failed
// listing is never retried automatically.
func (s *Session) Reload(ctx context.Context) error {
	if s.mode != ModeBrowsing {
		return ErrTransferInFlight
	}

	entries, err := s.lister.List(ctx, s.currentPath)
	if err != nil {
		s.publishListingFailed(s.currentPath, err)
		return err
	}

	s.entries = sortEntries(entries)
	if s.cursor > len(s.entries)-1 {
		s.cursor = len(s.entries) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	s.publishDirectoryChanged()
	return nil
}

// ToggleSelection flips selection membership of the file under the
// cursor. Directories signal ErrSelectionNotSupported; unconfirmed
// entries signal ErrAmbiguousEntry.
func (s *Session) ToggleSelection() error {
	if s.mode != ModeBrowsing {
		return ErrTransferInFlight
	}
	entry, ok := s.entryUnderCursor()
	if !ok {
		return nil
	}

	switch entry.Kind {
	case adb.KindDirectory:
		return ErrSelectionNotSupported
	case adb.KindUnknown:
		return ErrAmbiguousEntry
	}

	key := entry.FullPath()
	if _, selected := s.selected[key]; selected {
		delete(s.selected, key)
	} else {
		s.selected[key] = entry
	}
	s.publishSelectionChanged()
	return nil
}

// ConfirmEntry reclassifies the Unknown entry under the cursor via a stat
// round trip, updating the entry in place. Returns ErrAmbiguousEntry if
// the kind still cannot be confirmed.
func (s *Session) ConfirmEntry(ctx context.Context) error {
	if s.mode != ModeBrowsing {
		return ErrTransferInFlight
	}
	entry, ok := s.entryUnderCursor()
	if !ok || entry.Kind != adb.KindUnknown {
		return nil
	}

	confirmed, err := s.lister.Stat(ctx, entry.FullPath())
	if err != nil {
		return err
	}
	if confirmed.Kind == adb.KindUnknown {
		return ErrAmbiguousEntry
	}

	s.entries[s.cursor].Kind = confirmed.Kind
	return nil
}

// ClearSelection empties the selection set unconditionally.
func (s *Session) ClearSelection() {
	if s.mode != ModeBrowsing {
		return
	}
	if len(s.selected) == 0 {
		return
	}
	s.selected = make(map[string]adb.Entry)
	s.publishSelectionChanged()
}

// RequestTransfer hands out a snapshot of the selection, sorted for
// deterministic handoff, and freezes the session until CompleteTransfer.
// Later selection mutation cannot alter an in-flight transfer.
func (s *Session) RequestTransfer() ([]string, error) {
	if s.mode != ModeBrowsing {
		return nil, ErrTransferInFlight
	}
	if len(s.selected) == 0 {
		return nil, ErrNothingSelected
	}

	paths := make([]string, 0, len(s.selected))
	for p := range s.selected {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	s.mode = ModeTransferRequested
	return paths, nil
}

// CompleteTransfer returns the session to Browsing. On success the
// selection is cleared when the configured policy says so; failures and
// cancellations always preserve it so the user can retry without
// re-selecting.
func (s *Session) CompleteTransfer(err error) {
	if s.mode != ModeTransferRequested {
		return
	}
	s.mode = ModeBrowsing
	if err == nil && s.cfg.ClearAfterTransfer {
		s.ClearSelection()
	}
}

// Snapshot is the read-only view handed to the renderer after every
// mutating operation.
type Snapshot struct {
	CurrentPath string
	Entries     []adb.Entry
	Cursor      int
	Selected    map[string]bool
	Mode        Mode
}

// SelectedPaths returns the selected paths in sorted order.
func (s Snapshot) SelectedPaths() []string {
	paths := make([]string, 0, len(s.Selected))
	for p := range s.Selected {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Snapshot returns a copy of the current state for rendering.
func (s *Session) Snapshot() Snapshot {
	entries := make([]adb.Entry, len(s.entries))
	copy(entries, s.entries)

	selected := make(map[string]bool, len(s.selected))
	for p := range s.selected {
		selected[p] = true
	}

	return Snapshot{
		CurrentPath: s.currentPath,
		Entries:     entries,
		Cursor:      s.cursor,
		Selected:    selected,
		Mode:        s.mode,
	}
}

// entryUnderCursor returns the entry at the cursor, if any.
func (s *Session) entryUnderCursor() (adb.Entry, bool) {
	if len(s.entries) == 0 || s.cursor < 0 || s.cursor >= len(s.entries) {
		return adb.Entry{}, false
	}
	return s.entries[s.cursor], true
}

// sortEntries imposes the deterministic display order: directories first,
// then case-insensitive lexical by name. The device shell's order is not
// relied on.
func sortEntries(entries []adb.Entry) []adb.Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		aDir := a.Kind == adb.KindDirectory
		bDir := b.Kind == adb.KindDirectory
		if aDir != bDir {
			return aDir
		}
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			return an < bn
		}
		return a.Name < b.Name
	})
	return entries
}

func (s *Session) publishDirectoryChanged() {
	if s.bus == nil {
		return
	}
	s.bus.Publish(&events.DirectoryChangedEvent{
		BaseEvent:  events.BaseEvent{EventType: events.EventDirectoryChanged, Time: time.Now()},
		Path:       s.currentPath,
		EntryCount: len(s.entries),
	})
}

func (s *Session) publishSelectionChanged() {
	if s.bus == nil {
		return
	}
	s.bus.Publish(&events.SelectionChangedEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventSelectionChanged, Time: time.Now()},
		Selected:  s.Snapshot().SelectedPaths(),
	})
}

func (s *Session) publishListingFailed(path string, err error) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(&events.ListingFailedEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventListingFailed, Time: time.Now()},
		Path:      path,
		Err:       err,
	})
}
