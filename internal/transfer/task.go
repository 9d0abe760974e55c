// Package transfer tracks adb pull tasks and publishes queue events.
// The queue observes transfers; execution belongs to the Invoker.
package transfer

import (
	"fmt"
	"sync"
	"time"
)

// TaskState represents the current state of a pull task.
type TaskState string

const (
	TaskQueued    TaskState = "queued"    // Waiting its turn
	TaskActive    TaskState = "active"    // Bytes moving
	TaskCompleted TaskState = "completed" // Successfully completed
	TaskFailed    TaskState = "failed"    // Failed with error
	TaskCancelled TaskState = "cancelled" // Cancelled by user
)

// Task represents a single pull in the queue.
// Thread-safe: use the provided methods to read state.
type Task struct {
	ID         string
	RemotePath string // Source path on the device
	Dest       string // Local destination directory
	Size       int64  // File size in bytes, 0 when unknown

	State    TaskState
	Progress float64 // 0.0 to 1.0
	Speed    float64 // bytes/sec, EMA smoothed
	Error    error

	// Speed calculation internals
	lastProgress   float64
	lastUpdateTime time.Time

	CreatedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time

	mu sync.RWMutex
}

// NewTask creates a queued pull task.
func NewTask(remotePath, dest string, size int64) *Task {
	return &Task{
		ID:         generateTaskID(),
		RemotePath: remotePath,
		Dest:       dest,
		Size:       size,
		State:      TaskQueued,
		CreatedAt:  time.Now(),
	}
}

// GetState returns the current state (thread-safe).
func (t *Task) GetState() TaskState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.State
}

// GetProgress returns current progress (thread-safe).
func (t *Task) GetProgress() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Progress
}

// GetSpeed returns the smoothed transfer speed in bytes/sec (thread-safe).
func (t *Task) GetSpeed() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Speed
}

// GetError returns the error if any (thread-safe).
func (t *Task) GetError() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Error
}

// Clone returns a copy of the task for safe external use.
func (t *Task) Clone() Task {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Task{
		ID:          t.ID,
		RemotePath:  t.RemotePath,
		Dest:        t.Dest,
		Size:        t.Size,
		State:       t.State,
		Progress:    t.Progress,
		Speed:       t.Speed,
		Error:       t.Error,
		CreatedAt:   t.CreatedAt,
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
	}
}

// IsTerminal returns true if the task completed, failed, or was cancelled.
func (t *Task) IsTerminal() bool {
	state := t.GetState()
	return state == TaskCompleted || state == TaskFailed || state == TaskCancelled
}

// ID generation
var (
	taskCounter uint64
	taskMu      sync.Mutex
)

func generateTaskID() string {
	taskMu.Lock()
	defer taskMu.Unlock()
	taskCounter++
	return fmt.Sprintf("pull-%d-%d", time.Now().UnixNano(), taskCounter)
}
