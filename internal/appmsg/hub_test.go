package appmsg

import (
	"errors"
	"testing"

	"github.com/tinytelemetry/cards/internal/model"
)

func TestHub_LinkChangesOnFirstAndLastPeer(t *testing.T) {
	t.Parallel()

	h := NewHub(0)
	var events []bool
	h.OnLinkChange(func(up bool) { events = append(events, up) })

	a := h.attach("a")
	b := h.attach("b")
	h.detach(a)
	h.detach(a)
	h.detach(b)

	if len(events) != 2 || !events[0] || events[1] {
		t.Fatalf("events = %v, want [true false]", events)
	}
	if h.Peers() != 0 {
		t.Fatalf("peers = %d, want 0", h.Peers())
	}
}

func TestHub_SendWithoutPeers(t *testing.T) {
	t.Parallel()

	h := NewHub(1)
	if err := h.Send(model.RefreshRequest()); !errors.Is(err, ErrNoPeers) {
		t.Fatalf("Send err = %v, want ErrNoPeers", err)
	}
}

func TestHub_SendBroadcastsAndDropsWhenFull(t *testing.T) {
	t.Parallel()

	h := NewHub(1)
	a := h.attach("a")
	b := h.attach("b")

	for i := 0; i < DefaultOutboundBuffer+3; i++ {
		if err := h.Send(model.RefreshRequest()); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	if len(a.out) != DefaultOutboundBuffer || len(b.out) != DefaultOutboundBuffer {
		t.Fatalf("queues = %d/%d, want %d", len(a.out), len(b.out), DefaultOutboundBuffer)
	}
	if got := string(<-a.out); got != `{"0":0}` {
		t.Fatalf("frame = %s", got)
	}
}

func TestHub_DeliverAfterClose(t *testing.T) {
	t.Parallel()

	h := NewHub(1)
	done := make(chan struct{})
	if !h.deliver(model.Envelope{Source: "tcp", Line: "{}"}, done) {
		t.Fatal("deliver before close should succeed")
	}
	h.Close()
	h.Close()
	if h.deliver(model.Envelope{Source: "tcp", Line: "{}"}, done) {
		t.Fatal("deliver after close should fail")
	}
	if env := <-h.Lines(); env.Source != "tcp" {
		t.Fatalf("buffered envelope = %+v", env)
	}
	select {
	case <-h.Done():
	default:
		t.Fatal("Done should be closed")
	}
}

func TestHub_DeliverUnblocksOnDone(t *testing.T) {
	t.Parallel()

	h := NewHub(1)
	done := make(chan struct{})
	h.deliver(model.Envelope{Line: "{}"}, done)
	close(done)
	if h.deliver(model.Envelope{Line: "{}"}, done) {
		t.Fatal("deliver into a full hub should give up when done")
	}
}
