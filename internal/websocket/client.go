package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"

	"skillswap/server/internal/models"
)

// Client represents a WebSocket client connection.
type Client struct {
	UserID int64
	User   models.UserResponse
	Conn   *websocket.Conn
	Hub    *Hub
	Send   chan []byte
}

// NewClient creates a new WebSocket client.
func NewClient(user models.UserResponse, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID: user.ID,
		User:   user,
		Conn:   conn,
		Hub:    hub,
		Send:   make(chan []byte, 256),
	}
}

// ReadPump handles incoming frames from the client.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var incoming IncomingMessage
		if err := json.Unmarshal(message, &incoming); err != nil {
			log.Printf("Failed to parse frame: %v", err)
			continue
		}

		c.handleIncomingMessage(incoming)
	}
}

// WritePump handles outgoing frames to the client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleIncomingMessage(msg IncomingMessage) {
	chatID := msg.Payload.ChatID

	switch msg.Type {
	case EventSubscribe:
		if chatID == 0 {
			return
		}
		if !c.Hub.Subscribe(c, chatID) {
			c.sendError("forbidden", "You are not a participant of this chat")
		}
	case EventUnsubscribe:
		if chatID != 0 {
			c.Hub.Unsubscribe(c, chatID)
		}
	case EventTypingStart:
		c.broadcastTyping(chatID, true)
	case EventTypingStop:
		c.broadcastTyping(chatID, false)
	default:
		log.Printf("Unknown frame type: %s", msg.Type)
	}
}

// broadcastTyping fans a typing indicator out to the chat room. Typing
// state is never persisted.
func (c *Client) broadcastTyping(chatID int64, isTyping bool) {
	if chatID == 0 {
		return
	}

	c.Hub.BroadcastToChat(chatID, NewEvent(EventUserTyping, TypingPayload{
		ChatID:   chatID,
		User:     c.User,
		IsTyping: isTyping,
	}), c.UserID)
}

func (c *Client) sendError(code, message string) {
	data, err := json.Marshal(NewEvent(EventError, ErrorPayload{Code: code, Message: message}))
	if err != nil {
		return
	}

	select {
	case c.Send <- data:
	default:
	}
}
