package websocket

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const sendBufferSize = 256

// Client is one websocket connection. A connection is not a player: the same
// display name may sit on several connections, and one connection may follow
// several sessions.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

func (that *Client) close() {
	that.closeOnce.Do(func() {
		close(that.send)
	})
}

// Hub tracks which connections follow which session and fans state deltas out
// to all of them. Membership is per session code; a client is added on its
// first successful join and removed when the connection drops.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]map[string]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]map[string]struct{}),
	}
}

// Join subscribes a client to a session's broadcasts.
func (that *Hub) Join(code string, client *Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[code]
	if !ok {
		room = make(map[*Client]struct{})
		that.rooms[code] = room
	}
	room[client] = struct{}{}

	codes, ok := that.clients[client]
	if !ok {
		codes = make(map[string]struct{})
		that.clients[client] = codes
	}
	codes[code] = struct{}{}
}

// Remove drops a client from every room it follows. Session state is not
// touched: a disconnect is not a leave.
func (that *Hub) Remove(client *Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for code := range that.clients[client] {
		delete(that.rooms[code], client)
		if len(that.rooms[code]) == 0 {
			delete(that.rooms, code)
		}
	}
	delete(that.clients, client)
}

// Broadcast pushes a raw frame to every member of a session's room. A client
// whose send buffer is full misses the frame rather than blocking the rest of
// the room.
func (that *Hub) Broadcast(code string, frame []byte) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for client := range that.rooms[code] {
		select {
		case client.send <- frame:
		default:
			that.logger.Warn("dropping frame for slow client", "client", client.id, "code", code)
		}
	}
}
