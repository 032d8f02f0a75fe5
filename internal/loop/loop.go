// Package loop is the watch event loop: a single goroutine that runs
// timer, tick, connectivity and message callbacks one at a time.
package loop

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultQueueSize is the default number of callbacks that may wait for the loop.
const DefaultQueueSize = 1024

// ErrStopped is returned when work is posted to a loop that has exited.
var ErrStopped = errors.New("loop: stopped")

// Loop executes posted callbacks sequentially. Callbacks must not block.
type Loop struct {
	queue   chan func()
	stopped chan struct{}
	once    sync.Once
}

// New creates a loop with the given queue size.
func New(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Loop{
		queue:   make(chan func(), queueSize),
		stopped: make(chan struct{}),
	}
}

// Run executes callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.stopped) })
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post queues fn for execution on the loop. It blocks while the queue is
// full and returns false once the loop has exited.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.stopped:
		return false
	}
}

// Do runs fn on the loop and waits for it to return. It must not be called
// from a loop callback.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrStopped
	}
}

// AfterFunc runs fn on the loop once d has elapsed. Armed callbacks cannot
// be cancelled; they are dropped only if the loop has exited.
func (l *Loop) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { l.Post(fn) })
}
