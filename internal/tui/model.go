// Package tui is the display and input boundary over the browser core.
// It renders snapshots, translates keys into session intents, and never
// owns navigation or selection state itself.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/Melal1/adb-tui/internal/adb"
	"github.com/Melal1/adb-tui/internal/browser"
	"github.com/Melal1/adb-tui/internal/constants"
	"github.com/Melal1/adb-tui/internal/events"
	"github.com/Melal1/adb-tui/internal/history"
	"github.com/Melal1/adb-tui/internal/notify"
	"github.com/Melal1/adb-tui/internal/pathutil"
	"github.com/Melal1/adb-tui/internal/transfer"
)

// Runner executes a batch of pulls. Satisfied by *transfer.Invoker and
// by fakes in tests.
type Runner interface {
	Run(ctx context.Context, remotePaths []string, destDir string) (transfer.Result, error)
}

type view int

const (
	viewBrowse view = iota
	viewConfirm
	viewTransfer
)

// Options carries the collaborators the model needs besides the session.
type Options struct {
	DestDir  string
	Notifier *notify.Notifier
	History  *history.Store
}

// Model is the bubbletea model for the interactive browser.
type Model struct {
	session *browser.Session
	runner  Runner
	bus     *events.Bus
	busCh   <-chan events.Event
	opts    Options

	snap   browser.Snapshot
	keys   KeyMap
	styles Styles
	help   help.Model

	view         view
	pendingPaths []string // selection snapshot awaiting confirmation

	transferring   bool
	transferCancel context.CancelFunc
	transferDone   bool
	activeFile     string
	activeProgress float64
	activeSpeed    float64
	logLines       []string
	logView        viewport.Model

	status   string
	errText  string
	showHelp bool

	width  int
	height int

	// Double-press confirmation for entries of unconfirmed kind.
	lastAmbiguous string
}

// Messages

type busEventMsg struct {
	ev events.Event
}

type transferDoneMsg struct {
	result transfer.Result
	err    error
}

// NewModel creates the browser model. The bus is optional; without it
// the transfer log only shows terminal outcomes.
func NewModel(session *browser.Session, runner Runner, bus *events.Bus, opts Options) *Model {
	m := &Model{
		session: session,
		runner:  runner,
		bus:     bus,
		opts:    opts,
		snap:    session.Snapshot(),
		keys:    DefaultKeyMap(),
		styles:  DefaultStyles(),
		help:    help.New(),
		logView: viewport.New(80, 20),
		width:   80,
		height:  24,
	}
	if bus != nil {
		m.busCh = bus.SubscribeAll()
	}
	return m
}

// Run starts the interactive session and blocks until it exits.
func Run(session *browser.Session, runner Runner, bus *events.Bus, opts Options) error {
	m := NewModel(session, runner, bus, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m *Model) waitForEvent() tea.Cmd {
	if m.busCh == nil {
		return nil
	}
	ch := m.busCh
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return busEventMsg{ev: ev}
	}
}

// listingCtx bounds every session operation that talks to the device.
func listingCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), constants.ListingTimeout)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.logView.Width = msg.Width - 2
		m.logView.Height = msg.Height - 5
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case viewConfirm:
			return m.updateConfirm(msg)
		case viewTransfer:
			return m.updateTransfer(msg)
		default:
			return m.updateBrowse(msg)
		}

	case busEventMsg:
		m.handleEvent(msg.ev)
		return m, m.waitForEvent()

	case transferDoneMsg:
		return m.handleTransferDone(msg)
	}

	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errText = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.opts.History != nil {
			m.opts.History.SaveLastDir(m.snap.CurrentPath)
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.session.MoveCursor(-1)
		m.lastAmbiguous = ""

	case key.Matches(msg, m.keys.Down):
		m.session.MoveCursor(1)
		m.lastAmbiguous = ""

	case key.Matches(msg, m.keys.Parent):
		m.withListing(func(ctx context.Context) error {
			return m.session.GoToParent(ctx)
		})

	case key.Matches(msg, m.keys.Enter):
		m.withListing(func(ctx context.Context) error {
			return m.session.EnterDirectory(ctx)
		})

	case key.Matches(msg, m.keys.Home):
		m.withListing(func(ctx context.Context) error {
			return m.session.GoHome(ctx)
		})

	case key.Matches(msg, m.keys.Reload):
		m.withListing(func(ctx context.Context) error {
			return m.session.Reload(ctx)
		})

	case key.Matches(msg, m.keys.Toggle):
		m.toggleSelection()

	case key.Matches(msg, m.keys.Clear):
		m.session.ClearSelection()
		m.status = "selection cleared"

	case key.Matches(msg, m.keys.Notify):
		if m.opts.Notifier != nil {
			m.opts.Notifier.SelectionSummary(m.snap.SelectedPaths())
		}
		m.status = fmt.Sprintf("%d selected", len(m.snap.Selected))

	case key.Matches(msg, m.keys.Copy):
		paths, err := m.session.RequestTransfer()
		if err != nil {
			m.errText = err.Error()
			break
		}
		m.pendingPaths = paths
		m.view = viewConfirm

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}

	m.snap = m.session.Snapshot()
	return m, nil
}

// withListing runs a session operation that needs the device, surfacing
// refusals in the error line. A refused listing leaves navigation where
// it was, so there is nothing to roll back here.
func (m *Model) withListing(op func(ctx context.Context) error) {
	ctx, cancel := listingCtx()
	defer cancel()

	m.lastAmbiguous = ""
	if err := op(ctx); err != nil {
		m.errText = err.Error()
	}
}

// toggleSelection toggles the entry under the cursor. An entry of
// unconfirmed kind needs a second press: the first reports the
// ambiguity, the second stats the entry and retries.
func (m *Model) toggleSelection() {
	err := m.session.ToggleSelection()
	if err == nil {
		m.lastAmbiguous = ""
		return
	}

	if !errors.Is(err, browser.ErrAmbiguousEntry) {
		m.errText = err.Error()
		return
	}

	cursorPath := m.cursorPath()
	if m.lastAmbiguous != cursorPath {
		m.lastAmbiguous = cursorPath
		m.errText = err.Error()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.StatTimeout)
	defer cancel()

	m.lastAmbiguous = ""
	if confirmErr := m.session.ConfirmEntry(ctx); confirmErr != nil {
		m.errText = confirmErr.Error()
		return
	}
	if retryErr := m.session.ToggleSelection(); retryErr != nil {
		m.errText = retryErr.Error()
	}
}

func (m *Model) cursorPath() string {
	if len(m.snap.Entries) == 0 || m.snap.Cursor >= len(m.snap.Entries) {
		return ""
	}
	e := m.snap.Entries[m.snap.Cursor]
	return e.FullPath()
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		return m.startTransfer()

	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		// Declined before anything moved; the selection survives.
		m.session.CompleteTransfer(context.Canceled)
		m.pendingPaths = nil
		m.view = viewBrowse
		m.status = "transfer cancelled"
		m.snap = m.session.Snapshot()
	}
	return m, nil
}

func (m *Model) startTransfer() (tea.Model, tea.Cmd) {
	paths := m.pendingPaths
	destDir := m.opts.DestDir

	ctx, cancel := context.WithCancel(context.Background())
	m.transferCancel = cancel
	m.transferring = true
	m.transferDone = false
	m.view = viewTransfer
	m.logLines = nil
	m.activeFile = ""
	m.activeProgress = 0
	m.activeSpeed = 0
	m.appendLog(fmt.Sprintf("pulling %d file(s) to %s", len(paths), destDir))

	runner := m.runner
	return m, func() tea.Msg {
		result, err := runner.Run(ctx, paths, destDir)
		return transferDoneMsg{result: result, err: err}
	}
}

func (m *Model) updateTransfer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Cancel):
		if m.transferring {
			if m.transferCancel != nil {
				m.transferCancel()
			}
			m.appendLog("cancelling...")
			return m, nil
		}
		// Transfer finished; leave the log view.
		m.view = viewBrowse
		m.pendingPaths = nil
		m.snap = m.session.Snapshot()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.logView.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logView.GotoBottom()
		return m, nil
	}

	// j/k/d/u and the page keys are handled by the viewport's own keymap.
	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

func (m *Model) handleTransferDone(msg transferDoneMsg) (tea.Model, tea.Cmd) {
	m.transferring = false
	m.transferDone = true
	m.transferCancel = nil
	m.activeFile = ""

	m.session.CompleteTransfer(msg.err)
	m.snap = m.session.Snapshot()

	r := msg.result
	summary := fmt.Sprintf("done: %d completed, %d failed, %d cancelled in %s",
		r.Completed, r.Failed, r.Cancelled, r.Duration.Round(time.Second))
	if r.Bytes > 0 {
		summary += fmt.Sprintf(" (%s)", humanize.Bytes(uint64(r.Bytes)))
	}
	m.appendLog(summary)
	m.appendLog("press q to return")

	if m.opts.Notifier != nil {
		total := r.Completed + r.Failed + r.Cancelled
		if r.Failed == 0 && r.Cancelled == 0 {
			m.opts.Notifier.TransferComplete(r.Completed, m.opts.DestDir)
		} else {
			m.opts.Notifier.TransferFailed(r.Failed+r.Cancelled, total)
		}
	}
	return m, nil
}

// handleEvent folds a bus event into the transfer log.
func (m *Model) handleEvent(ev events.Event) {
	switch e := ev.(type) {
	case *events.TransferEvent:
		switch e.Type() {
		case events.EventTransferStarted:
			m.activeFile = e.RemotePath
			m.activeProgress = 0
			m.appendLog("pull " + e.RemotePath)
		case events.EventTransferProgress:
			m.activeFile = e.RemotePath
			m.activeProgress = e.Progress
			m.activeSpeed = e.Speed
		case events.EventTransferCompleted:
			m.appendLog(fmt.Sprintf("✓ %s (%s)", e.RemotePath, humanize.Bytes(uint64(e.Size))))
		case events.EventTransferFailed:
			m.appendLog(fmt.Sprintf("✗ %s: %v", e.RemotePath, e.Error))
		case events.EventTransferCancelled:
			m.appendLog("cancelled " + e.RemotePath)
		}

	case *events.LogEvent:
		line := e.Message
		if e.Error != nil {
			line += ": " + e.Error.Error()
		}
		m.appendLog(fmt.Sprintf("[%s] %s", e.Level, line))
	}
}

func (m *Model) appendLog(line string) {
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > constants.TransferLogMaxLines {
		m.logLines = m.logLines[len(m.logLines)-constants.TransferLogMaxLines:]
	}
	atBottom := m.logView.AtBottom()
	m.logView.SetContent(strings.Join(m.logLines, "\n"))
	if atBottom || m.transferring {
		m.logView.GotoBottom()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.view {
	case viewConfirm:
		return m.viewConfirmDialog()
	case viewTransfer:
		return m.viewTransferLog()
	default:
		return m.viewBrowser()
	}
}

func (m *Model) viewBrowser() string {
	var b strings.Builder

	b.WriteString(m.styles.Header.Render(m.snap.CurrentPath))
	b.WriteString("\n\n")

	listHeight := m.height - 5
	if listHeight < 1 {
		listHeight = 1
	}

	if len(m.snap.Entries) == 0 {
		b.WriteString(m.styles.Status.Render("(empty directory)"))
		b.WriteString("\n")
	} else {
		top := m.snap.Cursor - listHeight/2
		if top > len(m.snap.Entries)-listHeight {
			top = len(m.snap.Entries) - listHeight
		}
		if top < 0 {
			top = 0
		}

		for i := top; i < len(m.snap.Entries) && i < top+listHeight; i++ {
			b.WriteString(m.renderEntry(i))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderEntry(i int) string {
	e := m.snap.Entries[i]

	label := e.Name
	switch e.Kind {
	case adb.KindDirectory:
		label += "/"
	case adb.KindUnknown:
		label += "?"
	}

	isCursor := i == m.snap.Cursor
	isSelected := m.snap.Selected[e.FullPath()]

	switch {
	case isCursor && isSelected:
		return m.styles.CursorSelected.Render(label)
	case isCursor:
		return m.styles.Cursor.Render(label)
	case isSelected:
		return m.styles.Selected.Render(label)
	case e.Kind == adb.KindDirectory:
		return m.styles.Directory.Render(label)
	case e.Kind == adb.KindUnknown:
		return m.styles.Unknown.Render(label)
	default:
		return m.styles.File.Render(label)
	}
}

func (m *Model) renderFooter() string {
	var parts []string

	if m.errText != "" {
		parts = append(parts, m.styles.Error.Render(m.errText))
	} else if m.status != "" {
		parts = append(parts, m.styles.Status.Render(m.status))
	}

	if n := len(m.snap.Selected); n > 0 {
		parts = append(parts, m.styles.Status.Render(fmt.Sprintf("%d selected", n)))
	}

	if m.showHelp {
		parts = append(parts, m.help.View(m.keys))
	} else {
		parts = append(parts, m.styles.Footer.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	}

	return strings.Join(parts, "  ")
}

func (m *Model) viewConfirmDialog() string {
	var b strings.Builder

	b.WriteString(m.styles.DialogTitle.Render(fmt.Sprintf("Copy %d file(s) to %s?", len(m.pendingPaths), m.opts.DestDir)))
	b.WriteString("\n\n")

	const maxShown = 10
	for i, p := range m.pendingPaths {
		if i == maxShown {
			b.WriteString(fmt.Sprintf("... and %d more\n", len(m.pendingPaths)-maxShown))
			break
		}
		b.WriteString("  " + pathutil.RemoteBase(p) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Footer.Render("y: copy  n: cancel"))

	return m.styles.Dialog.Render(b.String())
}

func (m *Model) viewTransferLog() string {
	var b strings.Builder

	title := "Transfer log"
	if m.transferring {
		title = "Transferring..."
	}
	b.WriteString(m.styles.LogTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.logView.View())
	b.WriteString("\n")

	if m.transferring && m.activeFile != "" {
		b.WriteString(m.styles.Status.Render(fmt.Sprintf("%s  %3.0f%%  %s/s",
			m.activeFile, m.activeProgress*100, humanize.Bytes(uint64(m.activeSpeed)))))
	} else if m.transferring {
		b.WriteString(m.styles.Status.Render("starting..."))
	} else {
		b.WriteString(m.styles.Footer.Render("j/k scroll  d/u half page  g/G top/bottom  q back"))
	}

	return b.String()
}
