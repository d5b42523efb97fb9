package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/server/internal/models"
)

type capturePublisher struct {
	keys   []string
	values [][]byte
}

func (p *capturePublisher) Publish(ctx context.Context, key string, value []byte) error {
	p.keys = append(p.keys, key)
	p.values = append(p.values, value)
	return nil
}

func TestNewMessageNotification(t *testing.T) {
	pub := &capturePublisher{}
	d := &Dispatcher{pub: pub}

	sender := models.User{ID: 3, FirstName: "Alice", LastName: "Ng"}
	d.NewMessage(context.Background(), sender, 7, 42, "see you at the library")

	require.Len(t, pub.values, 1)
	assert.Equal(t, "7", pub.keys[0], "records are keyed by recipient")

	var n Notification
	require.NoError(t, json.Unmarshal(pub.values[0], &n))
	assert.Equal(t, int64(7), n.UserID)
	assert.Equal(t, int64(3), n.FromUserID)
	assert.Equal(t, "new_message", n.Type)
	assert.Equal(t, "Alice Ng: see you at the library", n.Message)
	assert.Equal(t, "/chat?chatId=42", n.Data["action_url"])
	assert.EqualValues(t, 42, n.Data["chat_id"])
	assert.False(t, n.CreatedAt.IsZero())
}

func TestNewChatNotification(t *testing.T) {
	pub := &capturePublisher{}
	d := &Dispatcher{pub: pub}

	sender := models.User{ID: 1, FirstName: "Bob", LastName: "Tan"}
	d.NewChat(context.Background(), sender, 9, 5)

	require.Len(t, pub.values, 1)

	var n Notification
	require.NoError(t, json.Unmarshal(pub.values[0], &n))
	assert.Equal(t, "new_chat", n.Type)
	assert.Equal(t, int64(9), n.UserID)
	assert.Equal(t, "Bob Tan started a chat with you", n.Message)

	senderData, ok := n.Data["sender"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Bob Tan", senderData["name"])
}

func TestNoopDispatcher(t *testing.T) {
	d := NewNoopDispatcher()

	// Must not panic with no publisher wired
	d.NewChat(context.Background(), models.User{ID: 1, FirstName: "A"}, 2, 3)
	d.NewMessage(context.Background(), models.User{ID: 1, FirstName: "A"}, 2, 3, "hi")
	assert.NoError(t, d.Close())
}
