package taskqueue_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskqueue/pkg/logger"
	"github.com/dmitrymomot/taskqueue/pkg/taskqueue"
)

// recorder tracks start order and concurrency across test tasks.
type recorder struct {
	mu      sync.Mutex
	order   []string
	running atomic.Int32
	peak    atomic.Int32
}

func (r *recorder) enter(name string) {
	n := r.running.Add(1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}
	r.mu.Lock()
	r.order = append(r.order, name)
	r.mu.Unlock()
}

func (r *recorder) leave() {
	r.running.Add(-1)
}

func (r *recorder) started() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// testTask finishes right away unless hold is set, in which case it waits
// for release or Cancel.
type testTask struct {
	name string
	rec  *recorder
	hold bool

	mu         sync.Mutex
	completion taskqueue.Completion
	startedAt  time.Time
	finishedAt time.Time

	startedCh  chan struct{}
	releaseCh  chan struct{}
	cancelCh   chan struct{}
	cancelOnce sync.Once
	relOnce    sync.Once
	starts     atomic.Int32
}

func newTask(name string, rec *recorder) *testTask {
	return &testTask{
		name:      name,
		rec:       rec,
		startedCh: make(chan struct{}),
		releaseCh: make(chan struct{}),
		cancelCh:  make(chan struct{}),
	}
}

func newHeldTask(name string, rec *recorder) *testTask {
	t := newTask(name, rec)
	t.hold = true
	return t
}

func (t *testTask) SetCompletion(c taskqueue.Completion) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completion = c
}

func (t *testTask) Start() {
	t.mu.Lock()
	t.startedAt = time.Now()
	c := t.completion
	t.mu.Unlock()

	t.starts.Add(1)
	if t.rec != nil {
		t.rec.enter(t.name)
	}
	close(t.startedCh)

	cancelled := false
	if t.hold {
		select {
		case <-t.releaseCh:
		case <-t.cancelCh:
			cancelled = true
		}
	}

	if t.rec != nil {
		t.rec.leave()
	}
	t.mu.Lock()
	t.finishedAt = time.Now()
	t.mu.Unlock()

	if cancelled {
		c.Cancel()
		return
	}
	c.Finish()
}

func (t *testTask) Cancel() {
	t.cancelOnce.Do(func() { close(t.cancelCh) })
}

func (t *testTask) release() {
	t.relOnce.Do(func() { close(t.releaseCh) })
}

func (t *testTask) wasStarted() bool {
	return t.starts.Load() > 0
}

func (t *testTask) times() (started, finished time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startedAt, t.finishedAt
}

func (t *testTask) waitStarted(tb testing.TB) {
	tb.Helper()
	select {
	case <-t.startedCh:
	case <-time.After(2 * time.Second):
		tb.Fatalf("task %s did not start", t.name)
	}
}

// mockTask is a testify mock of taskqueue.Task.
type mockTask struct {
	mock.Mock
}

func (m *mockTask) Start() { m.Called() }

func (m *mockTask) Cancel() { m.Called() }

func (m *mockTask) SetCompletion(c taskqueue.Completion) { m.Called(c) }

func newQueue(t *testing.T, opts ...taskqueue.Option) *taskqueue.Queue {
	t.Helper()
	q, err := taskqueue.NewQueue(append([]taskqueue.Option{taskqueue.WithLogger(logger.Discard())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func waitIdle(t *testing.T, q *taskqueue.Queue) {
	t.Helper()
	require.Eventually(t, func() bool {
		normal, later := q.Len()
		return !q.Busy() && normal == 0 && later == 0
	}, 2*time.Second, 5*time.Millisecond)
}
