package transfer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Melal1/adb-tui/internal/constants"
	"github.com/Melal1/adb-tui/internal/events"
)

// QueueStats holds statistics about the transfer queue.
type QueueStats struct {
	Queued    int
	Active    int
	Completed int
	Failed    int
	Cancelled int
}

// Total returns total number of tasks in queue.
func (s QueueStats) Total() int {
	return s.Queued + s.Active + s.Completed + s.Failed + s.Cancelled
}

// Queue is a passive transfer tracker that publishes events for display.
// It does not execute pulls; the Invoker registers tasks, feeds progress,
// and marks terminal outcomes. The queue stores cancel functions and
// calls them on Cancel.
type Queue struct {
	tasks     []*Task          // creation order
	tasksByID map[string]*Task
	mu        sync.RWMutex

	cancelFuncs map[string]context.CancelFunc

	bus *events.Bus
}

// NewQueue creates a transfer queue publishing to the given bus.
func NewQueue(bus *events.Bus) *Queue {
	return &Queue{
		tasks:       make([]*Task, 0),
		tasksByID:   make(map[string]*Task),
		cancelFuncs: make(map[string]context.CancelFunc),
		bus:         bus,
	}
}

// Track registers a new pull that will be executed elsewhere. The task
// starts queued; call Start when bytes begin moving.
func (q *Queue) Track(remotePath, dest string, size int64) *Task {
	task := NewTask(remotePath, dest, size)

	q.mu.Lock()
	q.tasks = append(q.tasks, task)
	q.tasksByID[task.ID] = task
	q.mu.Unlock()

	q.publish(events.EventTransferQueued, task)
	return task
}

// SetCancel stores the cancel function for a task.
func (q *Queue) SetCancel(taskID string, cancelFn context.CancelFunc) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cancelFuncs[taskID] = cancelFn
}

// Start marks a queued task as actively transferring.
func (q *Queue) Start(taskID string) {
	q.mu.RLock()
	task := q.tasksByID[taskID]
	q.mu.RUnlock()
	if task == nil {
		return
	}

	task.mu.Lock()
	if task.State == TaskQueued {
		task.State = TaskActive
		task.StartedAt = time.Now()
	}
	task.mu.Unlock()

	q.publish(events.EventTransferStarted, task)
}

// UpdateProgress updates a task's progress fraction (0.0 to 1.0) and
// recomputes the smoothed speed. The task lock covers every field update
// so concurrent readers never see a torn task.
func (q *Queue) UpdateProgress(taskID string, progress float64) {
	q.mu.RLock()
	task := q.tasksByID[taskID]
	q.mu.RUnlock()
	if task == nil {
		return
	}

	task.mu.Lock()
	now := time.Now()
	elapsed := now.Sub(task.lastUpdateTime).Seconds()

	// Speed needs a meaningful sample: enough wall time, forward motion,
	// and a delta above the percentage-readout noise floor.
	progressDelta := progress - task.lastProgress
	if task.Size > 0 && elapsed >= constants.ProgressUpdateInterval.Seconds() && progressDelta > 0.001 {
		instantSpeed := progressDelta * float64(task.Size) / elapsed
		if task.Speed == 0 {
			task.Speed = instantSpeed
		} else {
			// EMA with alpha=0.25 keeps the readout smooth but responsive.
			task.Speed = 0.25*instantSpeed + 0.75*task.Speed
		}
		task.lastProgress = progress
		task.lastUpdateTime = now
	}
	if task.lastUpdateTime.IsZero() {
		task.lastProgress = progress
		task.lastUpdateTime = now
	}

	task.Progress = progress
	task.mu.Unlock()

	// Publish outside the lock to keep event dispatch off the hot path.
	q.publish(events.EventTransferProgress, task)
}

// Complete marks a task as successfully completed.
func (q *Queue) Complete(taskID string) {
	q.mu.Lock()
	task := q.tasksByID[taskID]
	delete(q.cancelFuncs, taskID)
	q.mu.Unlock()
	if task == nil {
		return
	}

	task.mu.Lock()
	task.State = TaskCompleted
	task.Progress = 1.0
	task.CompletedAt = time.Now()
	task.mu.Unlock()

	q.publish(events.EventTransferCompleted, task)
}

// Fail marks a task as failed with an error.
func (q *Queue) Fail(taskID string, err error) {
	q.mu.Lock()
	task := q.tasksByID[taskID]
	delete(q.cancelFuncs, taskID)
	q.mu.Unlock()
	if task == nil {
		return
	}

	task.mu.Lock()
	task.State = TaskFailed
	task.Error = err
	task.CompletedAt = time.Now()
	task.mu.Unlock()

	q.publish(events.EventTransferFailed, task)
}

// Cancel cancels a queued or active task by calling its stored cancel
// function.
func (q *Queue) Cancel(taskID string) error {
	q.mu.Lock()
	task, exists := q.tasksByID[taskID]
	cancelFn := q.cancelFuncs[taskID]
	q.mu.Unlock()

	if !exists || task == nil {
		return errors.New("task not found")
	}

	state := task.GetState()
	if state != TaskActive && state != TaskQueued {
		return errors.New("task is not active or queued")
	}

	if cancelFn != nil {
		cancelFn()
	}

	q.mu.Lock()
	task.mu.Lock()
	task.State = TaskCancelled
	task.CompletedAt = time.Now()
	task.mu.Unlock()
	delete(q.cancelFuncs, taskID)
	q.mu.Unlock()

	q.publish(events.EventTransferCancelled, task)
	return nil
}

// CancelAll cancels every queued and active task.
func (q *Queue) CancelAll() {
	q.mu.Lock()
	var toCancel []*Task
	var cancelFns []context.CancelFunc

	for _, task := range q.tasks {
		if task.GetState() == TaskActive || task.GetState() == TaskQueued {
			toCancel = append(toCancel, task)
			if fn := q.cancelFuncs[task.ID]; fn != nil {
				cancelFns = append(cancelFns, fn)
			}
		}
	}
	q.mu.Unlock()

	for _, fn := range cancelFns {
		fn()
	}

	q.mu.Lock()
	for _, task := range toCancel {
		task.mu.Lock()
		task.State = TaskCancelled
		task.CompletedAt = time.Now()
		task.mu.Unlock()
		delete(q.cancelFuncs, task.ID)
	}
	q.mu.Unlock()

	for _, task := range toCancel {
		q.publish(events.EventTransferCancelled, task)
	}
}

// ClearCompleted removes all terminal tasks from the queue.
func (q *Queue) ClearCompleted() {
	q.mu.Lock()
	defer q.mu.Unlock()

	filtered := make([]*Task, 0, len(q.tasks))
	for _, task := range q.tasks {
		if !task.IsTerminal() {
			filtered = append(filtered, task)
		} else {
			delete(q.tasksByID, task.ID)
		}
	}
	q.tasks = filtered
}

// GetStats returns current queue statistics.
func (q *Queue) GetStats() QueueStats {
	q.mu.RLock()
	defer q.mu.RUnlock()

	stats := QueueStats{}
	for _, task := range q.tasks {
		switch task.GetState() {
		case TaskQueued:
			stats.Queued++
		case TaskActive:
			stats.Active++
		case TaskCompleted:
			stats.Completed++
		case TaskFailed:
			stats.Failed++
		case TaskCancelled:
			stats.Cancelled++
		}
	}
	return stats
}

// GetTasks returns a copy of all tasks for display.
func (q *Queue) GetTasks() []Task {
	q.mu.RLock()
	defer q.mu.RUnlock()

	result := make([]Task, len(q.tasks))
	for i, task := range q.tasks {
		result[i] = task.Clone()
	}
	return result
}

// GetTask returns a copy of a specific task by ID.
func (q *Queue) GetTask(taskID string) (Task, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	task, exists := q.tasksByID[taskID]
	if !exists || task == nil {
		return Task{}, false
	}
	return task.Clone(), true
}

// publish sends a transfer event to the bus.
func (q *Queue) publish(eventType events.EventType, task *Task) {
	if q.bus == nil {
		return
	}

	q.bus.Publish(&events.TransferEvent{
		BaseEvent:  events.BaseEvent{EventType: eventType, Time: time.Now()},
		TaskID:     task.ID,
		RemotePath: task.RemotePath,
		Dest:       task.Dest,
		Size:       task.Size,
		Progress:   task.GetProgress(),
		Speed:      task.GetSpeed(),
		Error:      task.GetError(),
	})
}
