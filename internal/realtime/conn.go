// README: Connection wrapper; serializes writes onto one websocket.
package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Conn is the outbound half of a realtime connection. WriteJSON must
// be safe for concurrent callers.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// wsConn guards a gorilla websocket with a write mutex; the library
// allows at most one concurrent writer.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func NewConn(ws *websocket.Conn) Conn {
	return &wsConn{ws: ws}
}

func (c *wsConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}
