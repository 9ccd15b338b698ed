// Package taskqueue provides a serial task queue: a single-consumer scheduler
// that runs submitted units of work one at a time, with an optional delay
// between tasks and a secondary "later" list for deferred, low-priority work.
//
// The package is organised around three pieces:
//
//   - Task: caller-implemented work with Start and Cancel
//   - Completion: the per-task handle a running task reports to
//   - Queue: holds the normal and later lists and runs one task at a time
//
// # Scheduling
//
//  1. Submit appends to the normal list, SubmitLater to the later list. Both
//     lists are FIFO.
//  2. Each time the queue picks a task it takes the head of the normal list,
//     falling back to the later list only when the normal list is empty. A
//     running task is never preempted.
//  3. Task.Start is called on its own goroutine, never while the queue's lock
//     is held, so a task may report completion synchronously from Start.
//  4. When a task reports Finish or Cancel the queue waits for the Interval
//     of the list the next task comes from, counted from the moment the
//     previous task ended, and dispatches again. A normal task submitted
//     while the queue waits out the later interval is therefore not held
//     back by it. A zero interval still hands off to a fresh goroutine.
//
// Intervals are either Fixed or RandomRange; random ranges are sampled anew
// every time a delay is needed.
//
// # Usage
//
//	q, err := taskqueue.NewQueue(
//	    taskqueue.WithInterval(taskqueue.Fixed(500*time.Millisecond)),
//	    taskqueue.WithLaterInterval(taskqueue.RandomRange(time.Second, 3*time.Second)),
//	)
//	if err != nil {
//	    return err
//	}
//	defer q.Close()
//
//	q.SubmitLater(syncContacts)
//	task, _ := q.SubmitFunc(func(ctx context.Context) error {
//	    return upload(ctx, photo)
//	})
//	if err := task.Await(ctx); err != nil {
//	    return err
//	}
//
// With WithAutoStart(false) nothing runs until Start is called. Stop pauses
// dispatching without interrupting the running task; Start resumes it.
//
// # Cancellation
//
// Queue.Cancel removes a pending task synchronously, so it never starts. For
// a running task the request is forwarded to Task.Cancel and the queue moves
// on once the task reports back through its Completion. Cancellation is
// cooperative: the queue never abandons a task on its own.
//
// # Error Handling
//
// The queue tracks whether a task ended, not whether it succeeded. Stale or
// duplicate completion calls and cancels of unknown IDs are silent no-ops.
// Only construction returns errors (ErrNegativeInterval, ErrEmptyRange);
// FuncTask surfaces the wrapped function's error to its own caller.
//
// # Observability
//
// Subscribe delivers an Event for every lifecycle transition (pending,
// running, finished, cancelled). Logging goes through log/slog.
package taskqueue
