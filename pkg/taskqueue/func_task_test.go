package taskqueue_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskqueue/pkg/taskqueue"
)

func TestFuncTask_Result(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		q := newQueue(t)
		task, _ := q.SubmitFunc(func(ctx context.Context) error { return nil })

		require.NoError(t, task.Await(context.Background()))
		assert.True(t, task.IsComplete())
	})

	t.Run("error is surfaced to the caller, not the queue", func(t *testing.T) {
		t.Parallel()

		q := newQueue(t)
		boom := errors.New("boom")
		failing, _ := q.SubmitFunc(func(ctx context.Context) error { return boom })
		next, _ := q.SubmitFunc(func(ctx context.Context) error { return nil })

		assert.ErrorIs(t, failing.Await(context.Background()), boom)
		assert.NoError(t, next.Await(context.Background()))
	})

	t.Run("panic becomes an error", func(t *testing.T) {
		t.Parallel()

		q := newQueue(t)
		task, _ := q.SubmitFunc(func(ctx context.Context) error { panic("kaboom") })

		err := task.AwaitWithTimeout(time.Second)
		assert.ErrorIs(t, err, taskqueue.ErrTaskPanicked)
		assert.Contains(t, err.Error(), "kaboom")
		waitIdle(t, q)
	})

	t.Run("await respects context", func(t *testing.T) {
		t.Parallel()

		task := taskqueue.NewFuncTask(func(ctx context.Context) error { return nil })
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		assert.ErrorIs(t, task.Await(ctx), context.DeadlineExceeded)
		assert.False(t, task.IsComplete())
	})

	t.Run("await with timeout", func(t *testing.T) {
		t.Parallel()

		task := taskqueue.NewFuncTask(func(ctx context.Context) error { return nil })
		assert.ErrorIs(t, task.AwaitWithTimeout(10*time.Millisecond), taskqueue.ErrAwaitTimeout)
	})

	t.Run("later func runs after normal work", func(t *testing.T) {
		t.Parallel()

		q := newQueue(t, taskqueue.WithAutoStart(false))

		var order []string
		later, _ := q.SubmitLaterFunc(func(ctx context.Context) error {
			order = append(order, "later")
			return nil
		})
		normal, _ := q.SubmitFunc(func(ctx context.Context) error {
			order = append(order, "normal")
			return nil
		})
		q.Start()

		require.NoError(t, normal.AwaitWithTimeout(time.Second))
		require.NoError(t, later.AwaitWithTimeout(time.Second))
		assert.Equal(t, []string{"normal", "later"}, order)
	})
}

func TestFuncTask_Cancel(t *testing.T) {
	t.Parallel()

	t.Run("running task is cancelled through the queue", func(t *testing.T) {
		t.Parallel()

		q := newQueue(t)
		started := make(chan struct{})
		running, id := q.SubmitFunc(func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})
		next, _ := q.SubmitFunc(func(ctx context.Context) error { return nil })

		<-started
		assert.True(t, q.Cancel(id))

		assert.ErrorIs(t, running.AwaitWithTimeout(time.Second), taskqueue.ErrTaskCancelled)
		assert.NoError(t, next.AwaitWithTimeout(time.Second))
	})

	t.Run("cancelled before dispatch never runs", func(t *testing.T) {
		t.Parallel()

		q := newQueue(t, taskqueue.WithAutoStart(false))
		var calls atomic.Int32
		task, _ := q.SubmitFunc(func(ctx context.Context) error {
			calls.Add(1)
			return nil
		})

		task.Cancel()
		assert.ErrorIs(t, task.AwaitWithTimeout(time.Second), taskqueue.ErrTaskCancelled)

		q.Start()
		waitIdle(t, q)
		assert.Zero(t, calls.Load())
	})

	t.Run("parent context is passed through", func(t *testing.T) {
		t.Parallel()

		type key struct{}
		parent := context.WithValue(context.Background(), key{}, "v")

		q := newQueue(t)
		var got any
		task := taskqueue.NewFuncTaskContext(parent, func(ctx context.Context) error {
			got = ctx.Value(key{})
			return nil
		})
		q.Submit(task)

		require.NoError(t, task.AwaitWithTimeout(time.Second))
		assert.Equal(t, "v", got)
	})
}
