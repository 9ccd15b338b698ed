package taskqueue

import "github.com/google/uuid"

// Task is a unit of work executed by a Queue.
//
// The queue calls SetCompletion and then Start on a goroutine of its own.
// A dispatched task must report exactly one terminal event through the
// Completion it was given, either from Start itself or later from any
// goroutine.
type Task interface {
	// Start begins the work. It may block until the work is done.
	Start()

	// Cancel asks the task to stop. A started task must still report
	// through its Completion, usually with Completion.Cancel.
	Cancel()

	// SetCompletion hands the task its completion right before Start.
	SetCompletion(c Completion)
}

// Completion is the callback surface a running task reports to.
// Each dispatched task gets its own Completion; only the first call on it
// has an effect and every later call is a no-op.
type Completion interface {
	// Finish reports that the task's work is done.
	Finish()

	// Cancel reports that the task was cancelled.
	Cancel()

	// TaskID returns the identifier the queue assigned to the task.
	TaskID() uuid.UUID
}

// Discarder is implemented by tasks that want to know they were removed
// from a queue before ever being started.
type Discarder interface {
	Discarded()
}

// State is a task lifecycle state as observed by the queue.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateFinished  State = "finished"
	StateCancelled State = "cancelled"
)

// Terminal reports whether no further transitions can happen from s.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateCancelled
}

// Tier names the pending list a task was submitted to.
type Tier string

const (
	TierNormal Tier = "normal"
	TierLater  Tier = "later"
)

type entry struct {
	id   uuid.UUID
	task Task
	tier Tier
}
