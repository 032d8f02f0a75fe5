package loop

import (
	"testing"
	"time"
)

func TestVirtual_FiresInDueOrder(t *testing.T) {
	t.Parallel()

	v := NewVirtual(time.Unix(0, 0))
	var got []string
	v.AfterFunc(30*time.Millisecond, func() { got = append(got, "c") })
	v.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	v.AfterFunc(10*time.Millisecond, func() { got = append(got, "b") })

	v.Advance(20 * time.Millisecond)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("fired = %v, want [a b]", got)
	}
	if v.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1", v.Pending())
	}
	v.Advance(10 * time.Millisecond)
	if len(got) != 3 || got[2] != "c" {
		t.Fatalf("fired = %v, want [a b c]", got)
	}
}

func TestVirtual_ChainedCallbacksWithinAdvance(t *testing.T) {
	t.Parallel()

	start := time.Unix(100, 0)
	v := NewVirtual(start)
	var at []time.Duration
	v.AfterFunc(600*time.Millisecond, func() {
		at = append(at, v.Now().Sub(start))
		v.AfterFunc(600*time.Millisecond, func() {
			at = append(at, v.Now().Sub(start))
		})
	})

	v.Advance(2 * time.Second)
	if len(at) != 2 || at[0] != 600*time.Millisecond || at[1] != 1200*time.Millisecond {
		t.Fatalf("fire times = %v", at)
	}
	if got := v.Now().Sub(start); got != 2*time.Second {
		t.Fatalf("Now advanced by %v, want 2s", got)
	}
}

func TestVirtual_PendingWithin(t *testing.T) {
	t.Parallel()

	v := NewVirtual(time.Unix(0, 0))
	v.AfterFunc(time.Second, func() {})
	v.AfterFunc(15*time.Second, func() {})
	if got := v.PendingWithin(time.Second); got != 1 {
		t.Fatalf("PendingWithin(1s) = %d, want 1", got)
	}
	if got := v.PendingWithin(15 * time.Second); got != 2 {
		t.Fatalf("PendingWithin(15s) = %d, want 2", got)
	}
}
