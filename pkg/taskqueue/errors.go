package taskqueue

import "errors"

var (
	// ErrNegativeInterval is returned when an interval holds a negative duration
	ErrNegativeInterval = errors.New("taskqueue: interval must not be negative")

	// ErrEmptyRange is returned when a random interval's upper bound is not above its lower bound
	ErrEmptyRange = errors.New("taskqueue: random interval range is empty")

	// ErrTaskCancelled is returned by FuncTask.Await when the task was cancelled or discarded
	ErrTaskCancelled = errors.New("taskqueue: task cancelled")

	// ErrTaskPanicked wraps a panic raised by a FuncTask function
	ErrTaskPanicked = errors.New("taskqueue: task panicked")

	// ErrAwaitTimeout is returned by FuncTask.AwaitWithTimeout when the task did not end in time
	ErrAwaitTimeout = errors.New("taskqueue: timed out waiting for task")
)
