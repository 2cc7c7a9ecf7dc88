package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Frame is the wire format in both directions: an event name plus an
// arbitrary JSON payload.
type Frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// inboundFrame defers payload decoding to the relay's per-event validation.
type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// socketConn is the slice of *websocket.Conn the client needs; tests swap in
// a recording fake.
type socketConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

// Client is one live socket. UserID is resolved once at connect time from
// the handshake credential; it stays empty for anonymous connections, which
// can still send but join no identity room.
type Client struct {
	UserID string

	conn socketConn
	send chan Frame

	mu    sync.Mutex
	rooms map[string]struct{}

	closeOnce sync.Once
}

func NewClient(conn socketConn, userID string) *Client {
	return &Client{
		UserID: userID,
		conn:   conn,
		send:   make(chan Frame, sendBuffer),
		rooms:  make(map[string]struct{}),
	}
}

// Send queues a frame for delivery, dropping it if the client's buffer is
// full. Disconnected sockets simply stop receiving.
func (c *Client) Send(event string, data interface{}) {
	select {
	case c.send <- Frame{Event: event, Data: data}:
	default:
	}
}

func (c *Client) InRoom(room string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rooms[room]
	return ok
}

func (c *Client) joinRoom(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[room] = struct{}{}
}

func (c *Client) leaveRoom(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, room)
}

func (c *Client) roomList() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		list = append(list, room)
	}
	return list
}

func (c *Client) clearRooms() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms = make(map[string]struct{})
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// ReadPump consumes frames until the socket dies, dispatching each to the
// relay. Runs on the connection's goroutine.
func (c *Client) ReadPump(r *Relay) {
	defer func() {
		r.Disconnect(c)
		c.close()
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			// Malformed frames are dropped, never fatal.
			continue
		}
		r.Dispatch(c, frame)
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(frame)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
