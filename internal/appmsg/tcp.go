package appmsg

import (
	"bufio"
	"context"
	"errors"
	"log"
	"net"
	"sync"
	"time"

	"github.com/tinytelemetry/cards/internal/model"
)

const (
	// DefaultMaxLineSize is the default maximum size (in bytes) of one frame.
	DefaultMaxLineSize = 64 * 1024

	// DefaultTCPAddr is the default phone listener address.
	DefaultTCPAddr = "127.0.0.1:4100"

	writeTimeout = 5 * time.Second
)

// ServerConfig holds tunable parameters for the TCP transport.
type ServerConfig struct {
	MaxLineSize int
}

// Server accepts phone connections speaking newline-delimited frames.
type Server struct {
	hub         *Hub
	listener    net.Listener
	addr        string
	maxLineSize int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewServer creates a TCP transport bound to hub. Default addr is "127.0.0.1:4100".
func NewServer(addr string, hub *Hub, conf ...ServerConfig) *Server {
	if addr == "" {
		addr = DefaultTCPAddr
	}
	maxLineSize := DefaultMaxLineSize
	if len(conf) > 0 && conf[0].MaxLineSize > 0 {
		maxLineSize = conf[0].MaxLineSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		hub:         hub,
		addr:        addr,
		maxLineSize: maxLineSize,
		ctx:         ctx,
		cancel:      cancel,
		conns:       make(map[net.Conn]struct{}),
	}
}

// Start begins accepting TCP connections.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
					continue
				}
			}
			s.track(conn, true)
			s.wg.Add(1)
			go s.handleConnection(conn)
		}
	}()

	return nil
}

func (s *Server) track(conn net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer s.track(conn, false)
	defer conn.Close()

	p := s.hub.attach("tcp " + conn.RemoteAddr().String())
	defer s.hub.detach(p)

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-s.ctx.Done():
				return
			case frame := <-p.out:
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if _, err := conn.Write(append(frame, '\n')); err != nil {
					log.Printf("appmsg: write to %s: %v", conn.RemoteAddr(), err)
					_ = conn.Close()
					return
				}
			}
		}
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, min(4096, s.maxLineSize)), s.maxLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if !s.hub.deliver(model.Envelope{Source: "tcp", Line: line}, s.ctx.Done()) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			log.Printf("appmsg: dropped connection %s due to frame exceeding max size (%d bytes)", conn.RemoteAddr(), s.maxLineSize)
			return
		}
		select {
		case <-s.ctx.Done():
		default:
			log.Printf("appmsg: scanner error from %s: %v", conn.RemoteAddr(), err)
		}
	}
}

// Stop closes the listener and every open connection.
func (s *Server) Stop() error {
	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

// Addr returns the active listen address.
// Before Start, it returns the configured address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}
