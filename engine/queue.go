package engine

import (
	"sync"
	"time"
)

// Queue is an unbounded event queue with a wakeup hook, shared by the
// Client implementations that produce events on their own goroutines.
type Queue struct {
	mu      sync.Mutex
	events  []Event
	signal  chan struct{}
	wakeup  func()
	dropped bool
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{signal: make(chan struct{}, 1)}
}

// SetWakeup registers the callback invoked after every Push.
func (q *Queue) SetWakeup(cb func()) {
	q.mu.Lock()
	q.wakeup = cb
	q.mu.Unlock()
}

// Push appends events and fires the wakeup callback once.
func (q *Queue) Push(events ...Event) {
	q.mu.Lock()
	if q.dropped {
		q.mu.Unlock()
		return
	}
	q.events = append(q.events, events...)
	cb := q.wakeup
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}

	if cb != nil {
		cb()
	}
}

// Pop removes the oldest event. A non-positive timeout never blocks;
// an empty queue yields an EventNone event.
func (q *Queue) Pop(timeout time.Duration) Event {
	if ev, ok := q.tryPop(); ok || timeout <= 0 {
		return ev
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-q.signal:
			if ev, ok := q.tryPop(); ok {
				return ev
			}
		case <-timer.C:
			ev, _ := q.tryPop()
			return ev
		}
	}
}

// Len reports the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Drop discards pending events and rejects new ones.
func (q *Queue) Drop() {
	q.mu.Lock()
	q.events = nil
	q.wakeup = nil
	q.dropped = true
	q.mu.Unlock()
}

func (q *Queue) tryPop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{ID: EventNone}, false
	}

	ev := q.events[0]
	q.events[0] = Event{}
	q.events = q.events[1:]
	return ev, true
}
