package realtime

import (
	"sync"
)

// Client is a connected session that can receive outbound messages.
// Deliver must not block: slow consumers are the client's problem, never the
// broadcaster's.
type Client interface {
	Deliver(msg Message)
}

// Hub tracks which clients are joined to which project room. A client
// belongs to at most one room; joining a new room implicitly leaves the
// previous one.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[Client]struct{}
	roomOf map[Client]string
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[string]map[Client]struct{}),
		roomOf: make(map[Client]string),
	}
}

// Join adds a client to a project room. Joining the current room again is a
// no-op; joining a different room leaves the old one first.
func (h *Hub) Join(client Client, projectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.roomOf[client]; ok {
		if current == projectID {
			return
		}
		h.removeLocked(client, current)
	}

	room, ok := h.rooms[projectID]
	if !ok {
		room = make(map[Client]struct{})
		h.rooms[projectID] = room
	}
	room[client] = struct{}{}
	h.roomOf[client] = projectID
}

// Leave removes a client from its room, if any
func (h *Hub) Leave(client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	current, ok := h.roomOf[client]
	if !ok {
		return
	}
	h.removeLocked(client, current)
}

// Room returns the project a client is joined to
func (h *Hub) Room(client Client) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	projectID, ok := h.roomOf[client]
	return projectID, ok
}

// RoomSize returns the number of clients joined to a project
func (h *Hub) RoomSize(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[projectID])
}

// Broadcast delivers a message to every client in the room, including the
// one that triggered it. Clients are snapshotted under the read lock and
// delivered to outside it, so a Deliver that ends up closing a session (and
// re-entering the hub) cannot deadlock.
func (h *Hub) Broadcast(projectID string, msg Message) {
	h.mu.RLock()
	clients := make([]Client, 0, len(h.rooms[projectID]))
	for client := range h.rooms[projectID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.Deliver(msg)
	}
}

func (h *Hub) removeLocked(client Client, projectID string) {
	delete(h.roomOf, client)
	if room, ok := h.rooms[projectID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, projectID)
		}
	}
}
