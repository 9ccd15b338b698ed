package taskqueue

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// completion is bound to one dispatched task. It gives up its reference
// to the queue on first use, so a task holding on to it keeps nothing alive.
type completion struct {
	queue atomic.Pointer[Queue]
	id    uuid.UUID
}

func newCompletion(q *Queue, id uuid.UUID) *completion {
	c := &completion{id: id}
	c.queue.Store(q)
	return c
}

func (c *completion) Finish() {
	if q := c.queue.Swap(nil); q != nil {
		q.finish(c.id)
	}
}

func (c *completion) Cancel() {
	if q := c.queue.Swap(nil); q != nil {
		q.cancel(c.id)
	}
}

func (c *completion) TaskID() uuid.UUID {
	return c.id
}
