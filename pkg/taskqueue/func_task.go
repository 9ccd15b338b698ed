package taskqueue

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// FuncTask adapts a plain function to the Task interface and exposes its
// outcome like a future.
type FuncTask struct {
	fn     func(ctx context.Context) error
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	completion Completion
	started    bool
	cancelled  bool

	once sync.Once
	done chan struct{}
	err  error
}

// NewFuncTask wraps fn. The context passed to fn is cancelled by Cancel.
func NewFuncTask(fn func(ctx context.Context) error) *FuncTask {
	return NewFuncTaskContext(context.Background(), fn)
}

// NewFuncTaskContext wraps fn with a context derived from parent.
func NewFuncTaskContext(parent context.Context, fn func(ctx context.Context) error) *FuncTask {
	ctx, cancel := context.WithCancel(parent)
	return &FuncTask{
		fn:     fn,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// SetCompletion stores the completion Start reports the outcome to.
func (t *FuncTask) SetCompletion(c Completion) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completion = c
}

// Start runs the function on the calling goroutine and reports the result.
// A task cancelled before Start reports cancellation without running.
func (t *FuncTask) Start() {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	cancelled := t.cancelled
	c := t.completion
	t.mu.Unlock()

	if cancelled {
		t.resolve(ErrTaskCancelled)
		report(c, true)
		return
	}

	err := t.call()

	t.mu.Lock()
	cancelled = t.cancelled
	t.mu.Unlock()
	t.cancel()

	if cancelled {
		t.resolve(ErrTaskCancelled)
	} else {
		t.resolve(err)
	}
	report(c, cancelled)
}

// Cancel cancels the function's context. A task that has not started yet
// resolves immediately with ErrTaskCancelled.
func (t *FuncTask) Cancel() {
	t.mu.Lock()
	t.cancelled = true
	started := t.started
	t.mu.Unlock()

	t.cancel()
	if !started {
		t.resolve(ErrTaskCancelled)
	}
}

// Discarded resolves the task with ErrTaskCancelled.
func (t *FuncTask) Discarded() {
	t.mu.Lock()
	t.cancelled = true
	t.mu.Unlock()

	t.cancel()
	t.resolve(ErrTaskCancelled)
}

// Done returns a channel closed once the task's outcome is known.
func (t *FuncTask) Done() <-chan struct{} {
	return t.done
}

// IsComplete reports whether the outcome is known, without blocking.
func (t *FuncTask) IsComplete() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Await blocks until the task ends or ctx is done. It returns the error of
// the function, ErrTaskCancelled, or the context error.
func (t *FuncTask) Await(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AwaitWithTimeout is Await bounded by timeout; it returns ErrAwaitTimeout
// when the task has not ended in time.
func (t *FuncTask) AwaitWithTimeout(timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-t.done:
		return t.err
	case <-timer.C:
		return ErrAwaitTimeout
	}
}

func (t *FuncTask) call() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return t.fn(t.ctx)
}

func (t *FuncTask) resolve(err error) {
	t.once.Do(func() {
		t.err = err
		close(t.done)
	})
}

func report(c Completion, cancelled bool) {
	if c == nil {
		return
	}
	if cancelled {
		c.Cancel()
		return
	}
	c.Finish()
}
