package network

import (
	"encoding/json"
	"net"
	"sync"

	"github.com/gorilla/websocket"

	"bananarealm/logging"
	"bananarealm/messages"
)

// LineHandler receives each inbound text command line.
type LineHandler interface {
	HandleLine(conn *Connection, line string)
}

// Connection wraps a websocket with a buffered outbound packet queue.
// Inbound frames are single text command lines; outbound frames are JSON
// packets.
type Connection struct {
	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// ReadPump blocks reading command lines until the connection fails, then
// returns. A failed read is a disconnect, never retried.
func (c *Connection) ReadPump(h LineHandler) {
	defer c.Close()
	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.L.Debugf("read error: %v", err)
			}
			return
		}
		h.HandleLine(c, string(payload))
	}
}

// WritePump drains the send queue onto the socket. Run in its own goroutine.
func (c *Connection) WritePump() {
	defer func() { _ = c.ws.Close() }()
	for msg := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// Send queues a packet for delivery. A full queue drops the connection
// rather than blocking the caller.
func (c *Connection) Send(pkt messages.Packet) error {
	payload, err := json.Marshal(pkt)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return net.ErrClosed
	}
	select {
	case c.send <- payload:
	default:
		c.close()
	}
	return nil
}

// Close tears the connection down. Both ends are closed best-effort;
// secondary errors are swallowed. Safe to call more than once.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.close()
}

func (c *Connection) close() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.ws.Close()
}
