package client

import (
	"encoding/json"

	"github.com/gorilla/websocket"

	"bananarealm/messages"
)

// Conn is the client side of the wire protocol: text command lines out,
// JSON packets in.
type Conn struct {
	ws *websocket.Conn
}

// Dial connects to a server's websocket endpoint, e.g.
// "ws://localhost:4518/ws".
func Dial(url string) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return &Conn{ws: ws}, nil
}

// SendCommand writes one command line as a text frame.
func (c *Conn) SendCommand(line string) error {
	return c.ws.WriteMessage(websocket.TextMessage, []byte(line))
}

// ReadPacket blocks for the next server packet.
func (c *Conn) ReadPacket() (messages.Packet, error) {
	var pkt messages.Packet
	_, payload, err := c.ws.ReadMessage()
	if err != nil {
		return pkt, err
	}
	if err := json.Unmarshal(payload, &pkt); err != nil {
		return pkt, err
	}
	return pkt, nil
}

func (c *Conn) Close() error {
	return c.ws.Close()
}
