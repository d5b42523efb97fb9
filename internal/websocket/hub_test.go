package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/server/internal/models"
)

func newTestClient(userID int64) *Client {
	return &Client{
		UserID: userID,
		User:   models.UserResponse{ID: userID, Name: "Test User"},
		Send:   make(chan []byte, 256),
	}
}

func drain(t *testing.T, c *Client) *WSMessage {
	t.Helper()
	select {
	case data := <-c.Send:
		var msg WSMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	default:
		return nil
	}
}

func TestSubscribeGate(t *testing.T) {
	allowed := map[int64]bool{1: true}
	hub := NewHub(func(chatID, userID int64) bool {
		return allowed[userID]
	})

	member := newTestClient(1)
	stranger := newTestClient(2)
	hub.registerClient(member)
	hub.registerClient(stranger)

	assert.True(t, hub.Subscribe(member, 10))
	assert.False(t, hub.Subscribe(stranger, 10), "non-participants must not join the room")

	hub.BroadcastToChat(10, NewEvent(EventUserTyping, TypingPayload{ChatID: 10}), 0)

	assert.NotNil(t, drain(t, member))
	assert.Nil(t, drain(t, stranger), "rejected subscriber must receive nothing")
}

func TestBroadcastExcludesSender(t *testing.T) {
	hub := NewHub(func(chatID, userID int64) bool { return true })

	a := newTestClient(1)
	b := newTestClient(2)
	hub.registerClient(a)
	hub.registerClient(b)
	require.True(t, hub.Subscribe(a, 5))
	require.True(t, hub.Subscribe(b, 5))

	hub.BroadcastToChat(5, NewEvent(EventMessageSent, MessagePayload{ChatID: 5}), 1)

	assert.Nil(t, drain(t, a), "sender is excluded")
	msg := drain(t, b)
	require.NotNil(t, msg)
	assert.Equal(t, EventMessageSent, msg.Type)
}

func TestBroadcastToDifferentRoom(t *testing.T) {
	hub := NewHub(func(chatID, userID int64) bool { return true })

	a := newTestClient(1)
	hub.registerClient(a)
	require.True(t, hub.Subscribe(a, 5))

	hub.BroadcastToChat(6, NewEvent(EventMessageSent, MessagePayload{ChatID: 6}), 0)

	assert.Nil(t, drain(t, a), "events stay within their chat room")
}

func TestUnsubscribe(t *testing.T) {
	hub := NewHub(func(chatID, userID int64) bool { return true })

	a := newTestClient(1)
	hub.registerClient(a)
	require.True(t, hub.Subscribe(a, 5))
	hub.Unsubscribe(a, 5)

	hub.BroadcastToChat(5, NewEvent(EventMessageSent, MessagePayload{ChatID: 5}), 0)
	assert.Nil(t, drain(t, a))
}

func TestUnregisterCleansRooms(t *testing.T) {
	hub := NewHub(func(chatID, userID int64) bool { return true })

	a := newTestClient(1)
	hub.registerClient(a)
	require.True(t, hub.Subscribe(a, 5))
	require.True(t, hub.Subscribe(a, 6))

	hub.unregisterClient(a)

	assert.False(t, hub.IsUserConnected(1))
	assert.Empty(t, hub.rooms, "empty rooms are dropped")

	// Send channel is closed on unregister
	_, open := <-a.Send
	assert.False(t, open)
}

func TestDuplicateConnectionReplacesOld(t *testing.T) {
	hub := NewHub(func(chatID, userID int64) bool { return true })

	old := newTestClient(1)
	hub.registerClient(old)
	require.True(t, hub.Subscribe(old, 5))

	fresh := newTestClient(1)
	hub.registerClient(fresh)

	_, open := <-old.Send
	assert.False(t, open, "old connection is dropped")
	assert.True(t, hub.IsUserConnected(1))

	// Room membership of the old connection is gone
	hub.BroadcastToChat(5, NewEvent(EventMessageSent, MessagePayload{ChatID: 5}), 0)
	assert.Nil(t, drain(t, fresh), "new connection must subscribe again")
}

func TestBroadcastToUser(t *testing.T) {
	hub := NewHub(nil)

	a := newTestClient(1)
	hub.registerClient(a)

	hub.BroadcastToUser(1, NewEvent(EventUserJoinedChat, MembershipPayload{ChatID: 3}))
	msg := drain(t, a)
	require.NotNil(t, msg)
	assert.Equal(t, EventUserJoinedChat, msg.Type)

	// Unknown user is a no-op
	hub.BroadcastToUser(99, NewEvent(EventUserJoinedChat, MembershipPayload{ChatID: 3}))
}

func TestConnectedCounts(t *testing.T) {
	hub := NewHub(nil)
	assert.Equal(t, 0, hub.GetConnectedCount())

	hub.registerClient(newTestClient(1))
	hub.registerClient(newTestClient(2))

	assert.Equal(t, 2, hub.GetConnectedCount())
	assert.ElementsMatch(t, []int64{1, 2}, hub.GetConnectedUsers())
}
