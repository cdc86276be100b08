// Package dispatch funnels work onto a single owning thread, the UI/render
// thread that holds the GL context and mutates published playback state.
package dispatch

import (
	"context"
	"runtime"
	"sync"
)

// Dispatcher schedules fn for execution on its owning thread.
type Dispatcher interface {
	Post(fn func())
}

// Func adapts a plain function to the Dispatcher interface.
type Func func(fn func())

// Post calls f(fn).
func (f Func) Post(fn func()) { f(fn) }

// Inline runs every task synchronously on the caller's goroutine.
var Inline Dispatcher = Func(func(fn func()) { fn() })

// Queue is a serial, unbounded task queue drained by a goroutine locked to
// one OS thread. Post never blocks, so engine threads may call it freely.
type Queue struct {
	mu     sync.Mutex
	tasks  []func()
	signal chan struct{}
	done   chan struct{}
	closed bool
}

// NewQueue returns an idle queue. Run must be called to process tasks.
func NewQueue() *Queue {
	return &Queue{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Post appends fn to the queue. Tasks posted after Close are dropped.
func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Call posts fn and waits until it has run. It must not be called from the
// queue's own thread.
func (q *Queue) Call(fn func()) {
	ran := make(chan struct{})
	q.Post(func() {
		defer close(ran)
		fn()
	})

	select {
	case <-ran:
	case <-q.done:
	}
}

// Run processes tasks on the calling goroutine, locked to its OS thread,
// until ctx is cancelled or Close is called.
func (q *Queue) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(q.done)

	for {
		q.runPending()

		select {
		case <-ctx.Done():
			q.Close()
			q.drain()
			return
		case <-q.signal:
			if q.isClosed() {
				q.drain()
				return
			}
		}
	}
}

func (q *Queue) runPending() {
	for _, task := range q.take() {
		task()
	}
}

// drain runs every task still queued. Posts after Close are dropped, so it
// terminates.
func (q *Queue) drain() {
	for {
		tasks := q.take()
		if len(tasks) == 0 {
			return
		}
		for _, task := range tasks {
			task()
		}
	}
}

// Close stops accepting tasks. Tasks already queued still run.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Done is closed once Run has returned.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

func (q *Queue) take() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	tasks := q.tasks
	q.tasks = nil
	return tasks
}

func (q *Queue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
