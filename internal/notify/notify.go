// Package notify dispatches user-facing alerts for structural chat
// events (new chat, new message) onto a message broker. Delivery is
// best-effort: publish failures are logged and never fail the request
// that triggered them.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"skillswap/server/internal/models"
)

// Notification is the alert record consumed by the notification service.
type Notification struct {
	UserID     int64                  `json:"user_id"`
	FromUserID int64                  `json:"from_user_id"`
	Type       string                 `json:"type"`
	Title      string                 `json:"title"`
	Message    string                 `json:"message"`
	Data       map[string]interface{} `json:"data,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

type publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Dispatcher builds and publishes notifications.
type Dispatcher struct {
	pub publisher
}

// kafkaPublisher writes notification records to a kafka topic.
type kafkaPublisher struct {
	w *kafka.Writer
}

func (p *kafkaPublisher) Publish(ctx context.Context, key string, value []byte) error {
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
}

// NewKafkaDispatcher returns a dispatcher publishing to the given topic.
func NewKafkaDispatcher(brokers, topic string) *Dispatcher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireNone,
		Async:        true,
	}
	return &Dispatcher{pub: &kafkaPublisher{w: w}}
}

// NewNoopDispatcher returns a dispatcher that drops everything. Used
// when no brokers are configured.
func NewNoopDispatcher() *Dispatcher {
	return &Dispatcher{}
}

func (d *Dispatcher) Close() error {
	if kp, ok := d.pub.(*kafkaPublisher); ok {
		return kp.w.Close()
	}
	return nil
}

func (d *Dispatcher) publish(ctx context.Context, n Notification) {
	if d.pub == nil {
		return
	}
	data, err := json.Marshal(n)
	if err != nil {
		log.Printf("Failed to marshal notification: %v", err)
		return
	}
	if err := d.pub.Publish(ctx, fmt.Sprintf("%d", n.UserID), data); err != nil {
		log.Printf("Failed to publish notification: %v", err)
	}
}

// NewChat notifies a user that someone started a chat with them.
func (d *Dispatcher) NewChat(ctx context.Context, sender models.User, recipientID, chatID int64) {
	d.publish(ctx, Notification{
		UserID:     recipientID,
		FromUserID: sender.ID,
		Type:       "new_chat",
		Title:      "New Chat",
		Message:    fmt.Sprintf("%s started a chat with you", sender.FullName()),
		Data: map[string]interface{}{
			"sender": map[string]interface{}{
				"id":     sender.ID,
				"name":   sender.FullName(),
				"avatar": sender.Avatar,
			},
			"chat_id":    chatID,
			"action_url": fmt.Sprintf("/chat?chatId=%d", chatID),
		},
		CreatedAt: time.Now(),
	})
}

// NewMessage notifies a user about a message sent in one of their chats.
func (d *Dispatcher) NewMessage(ctx context.Context, sender models.User, recipientID, chatID int64, preview string) {
	d.publish(ctx, Notification{
		UserID:     recipientID,
		FromUserID: sender.ID,
		Type:       "new_message",
		Title:      "New Message",
		Message:    fmt.Sprintf("%s: %s", sender.FullName(), preview),
		Data: map[string]interface{}{
			"sender": map[string]interface{}{
				"id":     sender.ID,
				"name":   sender.FullName(),
				"avatar": sender.Avatar,
			},
			"chat_id":    chatID,
			"action_url": fmt.Sprintf("/chat?chatId=%d", chatID),
		},
		CreatedAt: time.Now(),
	})
}
