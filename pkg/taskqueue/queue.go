package taskqueue

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/taskqueue/pkg/logger"
)

const component = "taskqueue"

// Queue runs submitted tasks one at a time.
//
// Tasks wait in two FIFO lists. The normal list is always drained before the
// later list, re-evaluated each time a task is picked. After a task ends the
// queue waits for the interval of the list the next task comes from.
type Queue struct {
	mu sync.Mutex

	normal  []*entry
	later   []*entry
	running *entry
	started time.Time

	accepting bool
	awaiting  bool
	closed    bool

	autoStart      bool
	normalInterval Interval
	laterInterval  Interval

	// Only one deferred dispatch is live at a time: every arm or disarm
	// bumps timerGen and a deferred dispatch carrying an older generation
	// does nothing.
	timer    *time.Timer
	timerGen uint64

	// Cool-down after the last task ended. Both delays are sampled once per
	// release; the one that applies depends on the list the next task
	// comes from.
	releasedAt  time.Time
	normalDelay time.Duration
	laterDelay  time.Duration

	events *feed
	logger *slog.Logger
}

// NewQueue creates a stopped queue. With auto start enabled (the default)
// the first submission starts it.
func NewQueue(opts ...Option) (*Queue, error) {
	options := &options{
		autoStart:   true,
		eventBuffer: defaultEventBuffer,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(options)
	}

	if err := options.normalInterval.Validate(); err != nil {
		return nil, fmt.Errorf("normal interval %s: %w", options.normalInterval, err)
	}
	if err := options.laterInterval.Validate(); err != nil {
		return nil, fmt.Errorf("later interval %s: %w", options.laterInterval, err)
	}

	return &Queue{
		autoStart:      options.autoStart,
		normalInterval: options.normalInterval,
		laterInterval:  options.laterInterval,
		events:         newFeed(options.eventBuffer),
		logger:         options.logger.With(logger.Component(component)),
	}, nil
}

// Submit appends tasks to the normal list and returns the IDs assigned to
// them, in order. Nil tasks are skipped. Tasks must not already be queued.
func (q *Queue) Submit(tasks ...Task) []uuid.UUID {
	return q.submit(TierNormal, tasks)
}

// SubmitLater appends tasks to the later list. Later tasks only run while
// the normal list is empty.
func (q *Queue) SubmitLater(tasks ...Task) []uuid.UUID {
	return q.submit(TierLater, tasks)
}

// SubmitFunc wraps fn into a FuncTask and submits it to the normal list.
func (q *Queue) SubmitFunc(fn func(ctx context.Context) error) (*FuncTask, uuid.UUID) {
	return q.submitFunc(TierNormal, fn)
}

// SubmitLaterFunc wraps fn into a FuncTask and submits it to the later list.
func (q *Queue) SubmitLaterFunc(fn func(ctx context.Context) error) (*FuncTask, uuid.UUID) {
	return q.submitFunc(TierLater, fn)
}

func (q *Queue) submitFunc(tier Tier, fn func(ctx context.Context) error) (*FuncTask, uuid.UUID) {
	t := NewFuncTask(fn)
	ids := q.submit(tier, []Task{t})
	if len(ids) == 0 {
		t.Discarded()
		return t, uuid.Nil
	}
	return t, ids[0]
}

func (q *Queue) submit(tier Tier, tasks []Task) []uuid.UUID {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("submit to closed queue ignored",
			logger.Tier(string(tier)),
			logger.Count(len(tasks)))
		return nil
	}

	now := time.Now()
	ids := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		if t == nil {
			continue
		}
		e := &entry{id: uuid.New(), task: t, tier: tier}
		if tier == TierLater {
			q.later = append(q.later, e)
		} else {
			q.normal = append(q.normal, e)
		}
		ids = append(ids, e.id)
		q.events.publish(Event{TaskID: e.id, Tier: tier, State: StatePending, Time: now})
	}
	autoStart := q.autoStart
	q.mu.Unlock()

	q.logger.Debug("tasks submitted",
		logger.Tier(string(tier)),
		logger.Count(len(ids)))

	if autoStart {
		q.Start()
	}
	return ids
}

// Start allows the queue to dispatch and immediately tries to run the next
// task. Calling it on a started queue is harmless.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	if !q.accepting {
		q.accepting = true
		q.logger.Info("queue started")
	}
	q.dispatchLocked()
}

// Stop prevents further dispatching. A running task is not interrupted and
// a pending deferred dispatch is invalidated.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.disarmLocked()
	if !q.accepting {
		return
	}
	q.accepting = false
	q.logger.Info("queue stopped")
}

// Close stops the queue for good. Pending tasks are dropped and told so
// when they implement Discarder; subscriptions are closed. A running task
// may still report its completion.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.accepting = false
	q.disarmLocked()

	dropped := make([]*entry, 0, len(q.normal)+len(q.later))
	dropped = append(dropped, q.normal...)
	dropped = append(dropped, q.later...)
	q.normal, q.later = nil, nil

	now := time.Now()
	for _, e := range dropped {
		q.events.publish(Event{TaskID: e.id, Tier: e.tier, State: StateCancelled, Time: now})
	}
	q.mu.Unlock()

	q.events.close()
	for _, e := range dropped {
		discard(e.task)
	}

	q.logger.Info("queue closed", logger.Count(len(dropped)))
	return nil
}

// Cancel cancels the task with the given ID. A pending task is removed and
// never started. A running task is asked to cancel itself and the queue
// moves on once it reports back. It returns false for unknown IDs.
func (q *Queue) Cancel(id uuid.UUID) bool {
	q.mu.Lock()
	if e := q.removePendingLocked(id); e != nil {
		q.mu.Unlock()
		discard(e.task)
		return true
	}

	var running Task
	if q.running != nil && q.running.id == id {
		running = q.running.task
	}
	q.mu.Unlock()

	if running == nil {
		return false
	}

	q.logger.Debug("cancelling running task", logger.TaskID(id))
	running.Cancel()
	return true
}

// SetAutoStart changes whether submissions start the queue.
func (q *Queue) SetAutoStart(enabled bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.autoStart = enabled
}

// SetInterval replaces the delay applied before normal tasks.
func (q *Queue) SetInterval(i Interval) error {
	if err := i.Validate(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.normalInterval = i
	return nil
}

// SetLaterInterval replaces the delay applied before later tasks.
func (q *Queue) SetLaterInterval(i Interval) error {
	if err := i.Validate(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.laterInterval = i
	return nil
}

// Subscribe returns a subscription to task lifecycle events. It ends when
// ctx is done, when it is closed, or when the queue is closed.
func (q *Queue) Subscribe(ctx context.Context) *Subscription {
	return q.events.subscribe(ctx)
}

// Len returns the number of pending tasks in the normal and later lists.
func (q *Queue) Len() (normal, later int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.normal), len(q.later)
}

// Busy reports whether a task is running and the queue waits for it.
func (q *Queue) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.awaiting
}

// Running returns the ID of the running task, if any.
func (q *Queue) Running() (uuid.UUID, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running == nil {
		return uuid.Nil, false
	}
	return q.running.id, true
}

// Accepting reports whether the queue is started.
func (q *Queue) Accepting() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.accepting
}

// dispatchLocked starts the next task if the queue may run one now.
func (q *Queue) dispatchLocked() {
	q.disarmLocked()

	if !q.accepting || q.awaiting {
		return
	}

	next, ok := q.nextTierLocked()
	if !ok {
		return
	}

	// the interval of the next task's list has not elapsed yet
	if wait := q.delayLocked(next) - time.Since(q.releasedAt); wait > 0 {
		q.armLocked(wait)
		return
	}

	var e *entry
	if next == TierNormal {
		e, q.normal = q.normal[0], q.normal[1:]
	} else {
		e, q.later = q.later[0], q.later[1:]
	}

	q.running = e
	q.awaiting = true
	q.started = time.Now()
	q.events.publish(Event{TaskID: e.id, Tier: e.tier, State: StateRunning, Time: q.started})

	q.logger.Debug("task started",
		logger.TaskID(e.id),
		logger.Tier(string(e.tier)))

	// Start must not run under q.mu: a task finishing synchronously calls
	// back into the queue.
	go q.run(e)
}

func (q *Queue) run(e *entry) {
	c := newCompletion(q, e.id)

	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("task panicked",
				logger.TaskID(e.id),
				slog.Any("panic", r))
			c.Finish()
		}
	}()

	e.task.SetCompletion(c)
	e.task.Start()
}

// deferredDispatch is the body of an armed timer or zero-delay hand-off.
func (q *Queue) deferredDispatch(gen uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if gen != q.timerGen {
		return
	}
	q.dispatchLocked()
}

func (q *Queue) armLocked(delay time.Duration) {
	q.disarmLocked()
	if q.closed {
		return
	}

	gen := q.timerGen
	if delay <= 0 {
		go q.deferredDispatch(gen)
		return
	}
	q.timer = time.AfterFunc(delay, func() { q.deferredDispatch(gen) })
}

func (q *Queue) disarmLocked() {
	q.timerGen++
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}

func (q *Queue) finish(id uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.releaseLocked(id, StateFinished)
}

func (q *Queue) cancel(id uuid.UUID) {
	q.mu.Lock()
	e := q.removePendingLocked(id)
	if e == nil {
		q.releaseLocked(id, StateCancelled)
	}
	q.mu.Unlock()

	if e != nil {
		discard(e.task)
	}
}

// releaseLocked clears the running slot if id owns it and schedules the
// next dispatch after the interval of the list the next task comes from.
func (q *Queue) releaseLocked(id uuid.UUID, state State) {
	e := q.running
	if e == nil || e.id != id {
		return
	}

	q.running = nil
	q.awaiting = false

	now := time.Now()
	q.releasedAt = now
	q.normalDelay = q.normalInterval.Delay()
	q.laterDelay = q.laterInterval.Delay()
	q.events.publish(Event{TaskID: e.id, Tier: e.tier, State: state, Time: now})

	next, ok := q.nextTierLocked()
	if !ok {
		q.logger.Debug("task ended",
			logger.TaskID(e.id),
			logger.Tier(string(e.tier)),
			logger.State(string(state)),
			logger.Duration(now.Sub(q.started)))
		return
	}

	delay := q.delayLocked(next)
	q.logger.Debug("task ended",
		logger.TaskID(e.id),
		logger.Tier(string(e.tier)),
		logger.State(string(state)),
		logger.Duration(now.Sub(q.started)),
		logger.Delay(delay))

	q.armLocked(delay)
}

// nextTierLocked returns the list the next task would be taken from.
func (q *Queue) nextTierLocked() (Tier, bool) {
	switch {
	case len(q.normal) > 0:
		return TierNormal, true
	case len(q.later) > 0:
		return TierLater, true
	default:
		return "", false
	}
}

func (q *Queue) delayLocked(tier Tier) time.Duration {
	if tier == TierLater {
		return q.laterDelay
	}
	return q.normalDelay
}

func (q *Queue) removePendingLocked(id uuid.UUID) *entry {
	match := func(e *entry) bool { return e.id == id }

	var e *entry
	if i := slices.IndexFunc(q.normal, match); i >= 0 {
		e = q.normal[i]
		q.normal = slices.Delete(q.normal, i, i+1)
	} else if i := slices.IndexFunc(q.later, match); i >= 0 {
		e = q.later[i]
		q.later = slices.Delete(q.later, i, i+1)
	} else {
		return nil
	}

	q.events.publish(Event{TaskID: e.id, Tier: e.tier, State: StateCancelled, Time: time.Now()})
	q.logger.Debug("pending task cancelled",
		logger.TaskID(e.id),
		logger.Tier(string(e.tier)))
	return e
}

func discard(t Task) {
	if d, ok := t.(Discarder); ok {
		d.Discarded()
	}
}
