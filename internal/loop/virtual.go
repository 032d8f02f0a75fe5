package loop

import (
	"sort"
	"sync"
	"time"
)

// Virtual is a deterministic timer service driven by Advance. Callbacks
// run on the goroutine calling Advance, in due-time order, ties broken by
// arming order.
type Virtual struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []virtualTimer
}

type virtualTimer struct {
	due time.Time
	seq int
	fn  func()
}

// NewVirtual creates a virtual clock starting at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

// Now returns the virtual time.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// AfterFunc arms fn to run d after the current virtual time.
func (v *Virtual) AfterFunc(d time.Duration, fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	v.pending = append(v.pending, virtualTimer{due: v.now.Add(d), seq: v.seq, fn: fn})
}

// Advance moves time forward by d, firing every callback that falls due,
// including ones armed by callbacks during the advance.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.now.Add(d)
	v.mu.Unlock()

	for {
		v.mu.Lock()
		sort.Slice(v.pending, func(i, j int) bool {
			if v.pending[i].due.Equal(v.pending[j].due) {
				return v.pending[i].seq < v.pending[j].seq
			}
			return v.pending[i].due.Before(v.pending[j].due)
		})
		if len(v.pending) == 0 || v.pending[0].due.After(target) {
			v.now = target
			v.mu.Unlock()
			return
		}
		next := v.pending[0]
		v.pending = v.pending[1:]
		v.now = next.due
		v.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of armed callbacks.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.pending)
}

// PendingWithin returns how many armed callbacks fall due within d.
func (v *Virtual) PendingWithin(d time.Duration) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	limit := v.now.Add(d)
	n := 0
	for _, t := range v.pending {
		if !t.due.After(limit) {
			n++
		}
	}
	return n
}
