package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Melal1/adb-tui/internal/config"
	"github.com/Melal1/adb-tui/internal/events"
	"github.com/Melal1/adb-tui/internal/history"
	"github.com/Melal1/adb-tui/internal/progress"
	"github.com/Melal1/adb-tui/internal/transfer"
)

func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <remote-path>...",
		Short: "Pull files from the device",
		Long: `Pull one or more files into the destination directory with progress
bars. Directories are not pulled; select individual files.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			log := GetLogger()
			client := newADBClient(cfg, log)

			bus := events.NewBus(0)
			queue := transfer.NewQueue(bus)
			hist := history.NewStore(config.ConfigDirectory(), log)
			invoker := transfer.NewInvoker(client, queue, hist, log)

			ui := progress.NewPullUI(len(args))

			// Route queue events to the bars. The bus is the only channel
			// between the invoker and the display, same as in the TUI.
			var wg sync.WaitGroup
			wg.Add(1)
			ch := bus.SubscribeAll()
			go func() {
				defer wg.Done()
				index := 0
				for ev := range ch {
					te, ok := ev.(*events.TransferEvent)
					if !ok {
						continue
					}
					switch te.Type() {
					case events.EventTransferQueued:
						index++
						ui.AddBar(te.TaskID, index, te.RemotePath, te.Size)
					case events.EventTransferProgress:
						if bar, ok := ui.Bar(te.TaskID); ok {
							bar.UpdateProgress(te.Progress)
						}
					case events.EventTransferCompleted:
						if bar, ok := ui.Bar(te.TaskID); ok {
							bar.Complete(nil)
						}
					case events.EventTransferFailed, events.EventTransferCancelled:
						if bar, ok := ui.Bar(te.TaskID); ok {
							err := te.Error
							if err == nil {
								err = fmt.Errorf("cancelled")
							}
							bar.Complete(err)
						}
					}
				}
			}()

			result, runErr := invoker.Run(GetContext(), args, cfg.Local.Dest)

			bus.Close()
			wg.Wait()
			ui.Wait()

			fmt.Fprintf(cmd.OutOrStdout(), "%d completed, %d failed, %d cancelled in %s (%s)\n",
				result.Completed, result.Failed, result.Cancelled,
				result.Duration.Round(time.Second),
				humanize.Bytes(uint64(result.Bytes)))

			return runErr
		},
	}
}
