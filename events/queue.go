package events

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO of events. Emit never blocks.
type Queue struct {
	mu     sync.Mutex
	items  []Event
	notify chan struct{}
	closed chan struct{}
	once   sync.Once
}

func NewQueue() *Queue {
	return &Queue{
		notify: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (q *Queue) Emit(ev Event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Close marks the end of the stream. Queued events remain poppable.
func (q *Queue) Close() {
	q.once.Do(func() {
		close(q.closed)
	})
}

func (q *Queue) pop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Event{}, false
	}
	ev := q.items[0]
	q.items[0] = Event{}
	q.items = q.items[1:]
	return ev, true
}

// Pop blocks until an event is available. It returns false when the queue is
// closed and drained, or ctx is done.
func (q *Queue) Pop(ctx context.Context) (Event, bool) {
	for {
		if ev, ok := q.pop(); ok {
			return ev, true
		}
		select {
		case <-q.notify:
		case <-q.closed:
			return q.pop()
		case <-ctx.Done():
			return Event{}, false
		}
	}
}

// Drain returns all queued events without blocking.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	ret := q.items
	q.items = nil
	return ret
}
