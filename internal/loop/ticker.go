package loop

import (
	"sync"
	"time"
)

// MinuteTicker calls a handler on the loop at every wall-clock minute
// boundary, passing the boundary time.
type MinuteTicker struct {
	loop *Loop
	now  func() time.Time
	fn   func(time.Time)

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// EveryMinute starts a MinuteTicker.
func (l *Loop) EveryMinute(fn func(time.Time)) *MinuteTicker {
	t := &MinuteTicker{loop: l, now: time.Now, fn: fn}
	t.arm()
	return t
}

// NextMinute returns the first minute boundary strictly after t.
func NextMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute).Add(time.Minute)
}

func (t *MinuteTicker) arm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	next := NextMinute(t.now())
	t.timer = time.AfterFunc(time.Until(next), func() {
		t.loop.Post(func() { t.fn(next) })
		t.arm()
	})
}

// Stop prevents further ticks.
func (t *MinuteTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
}
