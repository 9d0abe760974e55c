package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Melal1/adb-tui/internal/adb"
	"github.com/Melal1/adb-tui/internal/diskspace"
	"github.com/Melal1/adb-tui/internal/logging"
)

// Puller runs a single adb pull and reports progress. *adb.Client
// satisfies it; tests substitute a fake.
type Puller interface {
	Pull(ctx context.Context, remotePath, destDir string, onProgress func(adb.PullProgress)) error
	Size(ctx context.Context, path string) (int64, error)
}

// Recorder receives the outcome of each finished pull. The history
// package implements it; a nil recorder disables recording.
type Recorder interface {
	Record(remotePath, dest string, bytes int64, outcome string, err error)
}

// Invoker executes pulls sequentially against a single device. adb
// serializes transfers on the device side anyway, so running one pull
// at a time keeps progress readable without losing throughput.
type Invoker struct {
	puller     Puller
	queue      *Queue
	recorder   Recorder
	log        *logging.Logger
	spaceCheck func(dir string, requiredBytes int64) error
}

// NewInvoker creates an invoker that executes pulls through the given
// puller and tracks them on the queue.
func NewInvoker(puller Puller, queue *Queue, recorder Recorder, log *logging.Logger) *Invoker {
	return &Invoker{
		puller:   puller,
		queue:    queue,
		recorder: recorder,
		log:      log,
		spaceCheck: func(dir string, requiredBytes int64) error {
			return diskspace.Check(dir, requiredBytes, 1.05)
		},
	}
}

// Result summarizes one finished batch.
type Result struct {
	Completed int
	Failed    int
	Cancelled int
	Bytes     int64
	Duration  time.Duration
}

// Err returns a combined error when any pull in the batch did not
// complete, nil otherwise.
func (r Result) Err() error {
	if r.Failed == 0 && r.Cancelled == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d transfers did not complete",
		r.Failed+r.Cancelled, r.Completed+r.Failed+r.Cancelled)
}

// Run pulls every remote path into destDir, one at a time, in the
// given order. A failed pull does not stop the batch; cancelling the
// context stops it after the current pull returns. The returned error
// joins the individual pull errors.
func (inv *Invoker) Run(ctx context.Context, remotePaths []string, destDir string) (Result, error) {
	start := time.Now()
	result := Result{}
	var errs []error

	sizes := make([]int64, len(remotePaths))
	var totalBytes int64
	for i, remotePath := range remotePaths {
		// Size is advisory: it feeds the speed readout. An unsized task
		// still transfers fine.
		size, err := inv.puller.Size(ctx, remotePath)
		if err != nil {
			inv.log.Debug().Str("path", remotePath).Err(err).Msg("size probe failed")
			size = 0
		}
		sizes[i] = size
		totalBytes += size
	}

	// Fail the whole batch up front when the destination cannot hold it.
	if err := inv.spaceCheck(destDir, totalBytes); err != nil {
		return result, err
	}

	tasks := make([]*Task, 0, len(remotePaths))
	for i, remotePath := range remotePaths {
		tasks = append(tasks, inv.queue.Track(remotePath, destDir, sizes[i]))
	}

	for _, task := range tasks {
		if ctx.Err() != nil {
			inv.queue.Cancel(task.ID)
			result.Cancelled++
			inv.record(task, "cancelled", ctx.Err())
			continue
		}

		pullCtx, cancel := context.WithCancel(ctx)
		inv.queue.SetCancel(task.ID, cancel)
		inv.queue.Start(task.ID)

		inv.log.Info().
			Str("path", task.RemotePath).
			Str("dest", task.Dest).
			Int64("size", task.Size).
			Msg("pulling")

		err := inv.puller.Pull(pullCtx, task.RemotePath, task.Dest, func(p adb.PullProgress) {
			inv.queue.UpdateProgress(task.ID, p.Fraction)
		})
		cancel()

		switch {
		case err == nil:
			inv.queue.Complete(task.ID)
			result.Completed++
			result.Bytes += task.Size
			inv.record(task, "completed", nil)
		case errors.Is(err, context.Canceled):
			inv.queue.Cancel(task.ID)
			result.Cancelled++
			inv.record(task, "cancelled", err)
			errs = append(errs, fmt.Errorf("%s: cancelled", task.RemotePath))
		default:
			inv.queue.Fail(task.ID, err)
			result.Failed++
			inv.record(task, "failed", err)
			inv.log.Error().Str("path", task.RemotePath).Err(err).Msg("pull failed")
			errs = append(errs, fmt.Errorf("%s: %w", task.RemotePath, err))
		}
	}

	result.Duration = time.Since(start)
	return result, errors.Join(errs...)
}

func (inv *Invoker) record(task *Task, outcome string, err error) {
	if inv.recorder == nil {
		return
	}
	inv.recorder.Record(task.RemotePath, task.Dest, task.Size, outcome, err)
}
