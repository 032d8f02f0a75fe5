// Package appmsg is the watch <-> phone message transport: a line-oriented
// JSON dictionary codec and the TCP and WebSocket endpoints phones attach to.
package appmsg

import (
	"errors"
	"log"
	"sync"

	"github.com/tinytelemetry/cards/internal/model"
)

const (
	// DefaultInboundBuffer is the default number of inbound frames buffered
	// ahead of the watch loop.
	DefaultInboundBuffer = 256

	// DefaultOutboundBuffer is the per-peer outbound queue length.
	DefaultOutboundBuffer = 16
)

// ErrNoPeers is returned by Send when no phone is attached.
var ErrNoPeers = errors.New("appmsg: no phone connected")

// Hub fans outbound frames out to every attached phone and funnels
// inbound frames from all transports into one channel.
type Hub struct {
	mu     sync.Mutex
	peers  map[*peer]struct{}
	lines  chan model.Envelope
	onLink func(up bool)
	done   chan struct{}
	once   sync.Once
}

type peer struct {
	name string
	out  chan []byte
}

// NewHub creates a hub with the given inbound buffer size.
func NewHub(inboundBuffer int) *Hub {
	if inboundBuffer <= 0 {
		inboundBuffer = DefaultInboundBuffer
	}
	return &Hub{
		peers: make(map[*peer]struct{}),
		lines: make(chan model.Envelope, inboundBuffer),
		done:  make(chan struct{}),
	}
}

// OnLinkChange registers fn to be called when the first phone attaches
// (up) or the last one leaves (down). fn runs on the transport goroutine.
func (h *Hub) OnLinkChange(fn func(up bool)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onLink = fn
}

func (h *Hub) attach(name string) *peer {
	p := &peer{name: name, out: make(chan []byte, DefaultOutboundBuffer)}

	h.mu.Lock()
	h.peers[p] = struct{}{}
	first := len(h.peers) == 1
	fn := h.onLink
	h.mu.Unlock()

	log.Printf("appmsg: phone attached via %s", name)
	if first && fn != nil {
		fn(true)
	}
	return p
}

func (h *Hub) detach(p *peer) {
	h.mu.Lock()
	if _, ok := h.peers[p]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.peers, p)
	last := len(h.peers) == 0
	fn := h.onLink
	h.mu.Unlock()

	log.Printf("appmsg: phone detached from %s", p.name)
	if last && fn != nil {
		fn(false)
	}
}

// deliver queues one inbound frame. It reports false once the hub is closed.
func (h *Hub) deliver(env model.Envelope, done <-chan struct{}) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.lines <- env:
		return true
	case <-done:
		return false
	case <-h.done:
		return false
	}
}

// Send encodes d and queues it for every attached phone. A phone whose
// queue is full misses the frame.
func (h *Hub) Send(d model.Dictionary) error {
	frame, err := Encode(d)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.peers) == 0 {
		return ErrNoPeers
	}
	for p := range h.peers {
		select {
		case p.out <- frame:
		default:
			log.Printf("appmsg: outbound queue full for %s, dropping frame", p.name)
		}
	}
	return nil
}

// Peers returns the number of attached phones.
func (h *Hub) Peers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// Lines returns inbound frames from every transport. The channel is never
// closed; readers select on Done.
func (h *Hub) Lines() <-chan model.Envelope {
	return h.lines
}

// Done is closed by Close.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Close stops accepting inbound frames. It is safe to call more than once.
func (h *Hub) Close() {
	h.once.Do(func() { close(h.done) })
}
