package websocket

import (
	"time"

	"skillswap/server/internal/models"
)

// EventType names a realtime event. Outbound names match what chat
// clients listen for on their chat channel.
type EventType string

const (
	// Outbound events
	EventMessageSent      EventType = "MessageSent"
	EventMessageReaction  EventType = "MessageReaction"
	EventUserTyping       EventType = "UserTyping"
	EventUserOnlineStatus EventType = "UserOnlineStatus"
	EventUserJoinedChat   EventType = "UserJoinedChat"
	EventUserLeftChat     EventType = "UserLeftChat"
	EventError            EventType = "Error"

	// Inbound frame types
	EventSubscribe   EventType = "subscribe"
	EventUnsubscribe EventType = "unsubscribe"
	EventTypingStart EventType = "typing_start"
	EventTypingStop  EventType = "typing_stop"
)

// WSMessage is the wire envelope for every outbound event.
type WSMessage struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent wraps a payload in the wire envelope.
func NewEvent(t EventType, payload interface{}) WSMessage {
	return WSMessage{Type: t, Payload: payload, Timestamp: time.Now()}
}

// MessagePayload carries a full message (sent, edited or deleted).
type MessagePayload struct {
	ChatID  int64                    `json:"chat_id"`
	Message models.MessageWithSender `json:"message"`
}

// ReactionPayload carries a reaction toggle result.
type ReactionPayload struct {
	ChatID    int64               `json:"chat_id"`
	MessageID int64               `json:"message_id"`
	User      models.UserResponse `json:"user"`
	Reaction  string              `json:"reaction"`
	Action    string              `json:"action"` // add or remove
}

// TypingPayload carries a typing indicator.
type TypingPayload struct {
	ChatID   int64               `json:"chat_id"`
	User     models.UserResponse `json:"user"`
	IsTyping bool                `json:"is_typing"`
}

// PresencePayload carries an online/offline transition.
type PresencePayload struct {
	ChatID   int64               `json:"chat_id"`
	User     models.UserResponse `json:"user"`
	IsOnline bool                `json:"is_online"`
	LastSeen *time.Time          `json:"last_seen,omitempty"`
}

// MembershipPayload carries a join/leave event.
type MembershipPayload struct {
	ChatID int64               `json:"chat_id"`
	User   models.UserResponse `json:"user"`
}

// ErrorPayload is sent to a single client on a rejected frame.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IncomingMessage is a frame received from a client.
type IncomingMessage struct {
	Type    EventType `json:"type"`
	Payload struct {
		ChatID int64 `json:"chat_id"`
	} `json:"payload"`
}
