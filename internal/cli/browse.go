package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Melal1/adb-tui/internal/browser"
	"github.com/Melal1/adb-tui/internal/config"
	"github.com/Melal1/adb-tui/internal/events"
	"github.com/Melal1/adb-tui/internal/history"
	"github.com/Melal1/adb-tui/internal/logging"
	"github.com/Melal1/adb-tui/internal/notify"
	"github.com/Melal1/adb-tui/internal/transfer"
	"github.com/Melal1/adb-tui/internal/tui"
)

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Start the interactive browser (default)",
		Long: `Browse the device filesystem interactively. Navigate with j/k/h/l,
select files with TAB, and pull the selection with o.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd)
		},
	}
}

func runBrowse(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The terminal belongs to the renderer from here on; log lines go to
	// a file or nowhere.
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = filepath.Join(config.LogDirectory(), "adb-tui.log")
	}
	log := logging.New(logging.Options{
		Mode:    "tui",
		File:    logFile,
		Verbose: verbose || debug,
	})

	bus := events.NewBus(0)
	defer bus.Close()

	client := newADBClient(cfg, log)

	session, err := browser.NewSession(GetContext(), client, browser.Config{
		Root:               cfg.Remote.Root,
		ClearAfterTransfer: cfg.Transfer.ClearSelection,
	}, bus)
	if err != nil {
		return fmt.Errorf("cannot start session: %w", err)
	}

	hist := history.NewStore(config.ConfigDirectory(), log)
	queue := transfer.NewQueue(bus)
	invoker := transfer.NewInvoker(client, queue, hist, log)
	notifier := notify.NewNotifier(cfg.Notify.Enabled, log)

	return tui.Run(session, invoker, bus, tui.Options{
		DestDir:  cfg.Local.Dest,
		Notifier: notifier,
		History:  hist,
	})
}
