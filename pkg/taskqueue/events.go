package taskqueue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const defaultEventBuffer = 64

// Event describes a task lifecycle transition observed by the queue.
type Event struct {
	TaskID uuid.UUID
	Tier   Tier
	State  State
	Time   time.Time
}

// Subscription receives queue events until it is closed.
// Events that do not fit into the buffer are dropped, never blocking the queue.
type Subscription struct {
	feed    *feed
	ch      chan Event
	done    chan struct{}
	dropped atomic.Uint64
	closed  bool
	mu      sync.RWMutex
}

func newSubscription(f *feed) *Subscription {
	return &Subscription{
		feed: f,
		ch:   make(chan Event, f.bufferSize),
		done: make(chan struct{}),
	}
}

// Events returns the channel events are delivered on. It is closed when
// the subscription ends.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Dropped returns how many events were discarded because the buffer was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Close ends the subscription. It is safe to call multiple times.
func (s *Subscription) Close() error {
	s.feed.unsubscribe(s)
	return nil
}

func (s *Subscription) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
		close(s.done)
	}
}

func (s *Subscription) send(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}

	select {
	case s.ch <- ev:
	default:
		s.dropped.Add(1)
	}
}

// feed fans events out to subscriptions.
type feed struct {
	subs       map[*Subscription]struct{}
	bufferSize int
	closed     bool
	mu         sync.RWMutex
}

func newFeed(bufferSize int) *feed {
	return &feed{
		subs:       make(map[*Subscription]struct{}),
		bufferSize: max(bufferSize, 1),
	}
}

func (f *feed) subscribe(ctx context.Context) *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub := newSubscription(f)
	if f.closed {
		sub.shutdown()
		return sub
	}
	f.subs[sub] = struct{}{}

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
			case <-sub.done:
			}
			f.unsubscribe(sub)
		}()
	}

	return sub
}

func (f *feed) publish(ev Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for sub := range f.subs {
		sub.send(ev)
	}
}

func (f *feed) unsubscribe(sub *Subscription) {
	f.mu.Lock()
	delete(f.subs, sub)
	f.mu.Unlock()

	sub.shutdown()
}

func (f *feed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true

	for sub := range f.subs {
		sub.shutdown()
	}
	clear(f.subs)
}
