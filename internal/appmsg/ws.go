package appmsg

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tinytelemetry/cards/internal/model"
)

const wsReadTimeout = 120 * time.Second

// WSHandler serves the phone transport over WebSocket. Every text message
// carries one or more newline-separated frames.
type WSHandler struct {
	hub      *Hub
	ctx      context.Context
	upgrader websocket.Upgrader
}

// NewWSHandler creates a handler bound to hub. Connections end when ctx is done.
func NewWSHandler(ctx context.Context, hub *Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		ctx: ctx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(DefaultMaxLineSize)

	p := h.hub.attach("ws " + r.RemoteAddr)
	defer h.hub.detach(p)

	ctx, cancel := context.WithCancel(h.ctx)
	defer cancel()

	// Writer goroutine.
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(time.Second))
				_ = conn.Close()
				return
			case frame := <-p.out:
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	// Reader loop.
	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
				log.Printf("appmsg: websocket read from %s: %v", r.RemoteAddr, err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		for _, line := range bytes.Split(msg, []byte{'\n'}) {
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			if !h.hub.deliver(model.Envelope{Source: "ws", Line: string(line)}, ctx.Done()) {
				return
			}
		}
	}
}
