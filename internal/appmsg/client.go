package appmsg

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/tinytelemetry/cards/internal/model"
)

const dialTimeout = 5 * time.Second

// Client is the phone side of the TCP transport.
type Client struct {
	conn     net.Conn
	mu       sync.Mutex
	messages chan model.Dictionary
	done     chan struct{}
}

// Dial connects to a watch listening at addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("appmsg: dial %s: %w", addr, err)
	}
	c := &Client{
		conn:     conn,
		messages: make(chan model.Dictionary, DefaultOutboundBuffer),
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.messages)
	defer close(c.done)

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 4096), DefaultMaxLineSize)
	for scanner.Scan() {
		d, err := Decode(scanner.Bytes())
		if err != nil {
			log.Printf("appmsg: client: %v", err)
			continue
		}
		c.messages <- d
	}
}

// Send writes one dictionary to the watch.
func (c *Client) Send(d model.Dictionary) error {
	frame, err := Encode(d)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := c.conn.Write(append(frame, '\n')); err != nil {
		return fmt.Errorf("appmsg: send: %w", err)
	}
	return nil
}

// Messages returns dictionaries sent by the watch. The channel closes when
// the connection ends.
func (c *Client) Messages() <-chan model.Dictionary {
	return c.messages
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
