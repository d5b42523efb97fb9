package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"skillswap/server/internal/metrics"
)

// AuthorizeFunc gates chat-channel subscriptions: it must return true
// only when the user is a current participant of the chat. It is
// consulted on every subscribe frame.
type AuthorizeFunc func(chatID, userID int64) bool

// Hub maintains the set of active clients and their chat subscriptions
// and fans events out to them.
type Hub struct {
	// Registered clients mapped by user ID
	Clients map[int64]*Client

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// Subscribers per chat ID
	rooms map[int64]map[int64]*Client

	// Authorize is invoked before a client joins a chat room.
	Authorize AuthorizeFunc

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub.
func NewHub(authorize AuthorizeFunc) *Hub {
	return &Hub{
		Clients:    make(map[int64]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[int64]map[int64]*Client),
		Authorize:  authorize,
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// If user already has a connection, close the old one
	if existing, ok := h.Clients[client.UserID]; ok {
		h.dropLocked(existing)
	}

	h.Clients[client.UserID] = client
	log.Printf("Client connected: %d", client.UserID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.Clients[client.UserID]; ok && current == client {
		h.dropLocked(client)
		log.Printf("Client disconnected: %d", client.UserID)
	}
}

// dropLocked removes a client from the user map and every room.
// Caller must hold h.mu.
func (h *Hub) dropLocked(client *Client) {
	delete(h.Clients, client.UserID)
	for chatID, room := range h.rooms {
		if room[client.UserID] == client {
			delete(room, client.UserID)
			if len(room) == 0 {
				delete(h.rooms, chatID)
			}
		}
	}
	close(client.Send)
}

// Subscribe joins the client to the chat room after the authorization
// gate passes. Returns false when the gate rejects the subscription.
func (h *Hub) Subscribe(client *Client, chatID int64) bool {
	if h.Authorize != nil && !h.Authorize(chatID, client.UserID) {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[chatID]
	if !ok {
		room = make(map[int64]*Client)
		h.rooms[chatID] = room
	}
	room[client.UserID] = client
	return true
}

// Unsubscribe removes the client from the chat room.
func (h *Hub) Unsubscribe(client *Client, chatID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[chatID]; ok {
		if room[client.UserID] == client {
			delete(room, client.UserID)
			if len(room) == 0 {
				delete(h.rooms, chatID)
			}
		}
	}
}

// BroadcastToChat sends an event to every subscriber of the chat,
// skipping excludeUserID (0 excludes nobody). Delivery is best-effort:
// a full send buffer drops the event for that client only.
func (h *Hub) BroadcastToChat(chatID int64, message WSMessage, excludeUserID int64) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[chatID]
	if !ok {
		return
	}

	for userID, client := range room {
		if userID == excludeUserID {
			continue
		}
		select {
		case client.Send <- data:
		default:
			log.Printf("Failed to send event to client: %d", userID)
		}
	}
	metrics.BroadcastsSent.WithLabelValues(string(message.Type)).Inc()
}

// BroadcastToUser sends an event to a specific user's connection.
func (h *Hub) BroadcastToUser(userID int64, message WSMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, ok := h.Clients[userID]; ok {
		select {
		case client.Send <- data:
		default:
			log.Printf("Failed to send event to client: %d", userID)
		}
	}
}

// IsUserConnected checks if a user currently has a live connection.
func (h *Hub) IsUserConnected(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.Clients[userID]
	return ok
}

// GetConnectedUsers returns the IDs of all connected users.
func (h *Hub) GetConnectedUsers() []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userIDs := make([]int64, 0, len(h.Clients))
	for userID := range h.Clients {
		userIDs = append(userIDs, userID)
	}
	return userIDs
}

// GetConnectedCount returns the number of live connections.
func (h *Hub) GetConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.Clients)
}
