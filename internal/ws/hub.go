package ws

import "sync"

const AdminRoom = "admin"

// UserRoom is the identity room a buyer's sockets join so vendor and admin
// messages can be routed to them.
func UserRoom(userID string) string {
	return "user:" + userID
}

// Hub tracks live connections and their room membership. Rooms are plain
// named broadcast groups; membership is ephemeral and dies with the
// connection.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
	c.joinRoom(room)
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, room)
	c.leaveRoom(room)
}

// Remove drops the client from every room it joined.
func (h *Hub) Remove(c *Client) {
	rooms := c.roomList()
	h.mu.Lock()
	for _, room := range rooms {
		h.leaveLocked(c, room)
	}
	h.mu.Unlock()
	c.clearRooms()
}

func (h *Hub) leaveLocked(c *Client, room string) {
	set, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.rooms, room)
	}
}

// Emit fans an event out to every member of the room. Slow consumers get
// dropped frames rather than blocking the caller.
func (h *Hub) Emit(room, event string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		c.Send(event, data)
	}
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
