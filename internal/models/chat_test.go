package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	alice := ChatParticipant{ID: 1, FirstName: "Alice", LastName: "Ng", Name: "Alice Ng"}
	bob := ChatParticipant{ID: 2, FirstName: "Bob", LastName: "Tan", Name: "Bob Tan"}
	participants := []ChatParticipant{alice, bob}

	t.Run("private chat shows the other participant", func(t *testing.T) {
		assert.Equal(t, "Bob Tan", DisplayName(ChatTypePrivate, nil, participants, 1))
		assert.Equal(t, "Alice Ng", DisplayName(ChatTypePrivate, nil, participants, 2))
	})

	t.Run("group chat shows its own name", func(t *testing.T) {
		name := "Go Study Group"
		assert.Equal(t, "Go Study Group", DisplayName(ChatTypeGroup, &name, participants, 1))
	})

	t.Run("unnamed group falls back", func(t *testing.T) {
		assert.Equal(t, "Group Chat", DisplayName(ChatTypeGroup, nil, participants, 1))
		empty := ""
		assert.Equal(t, "Group Chat", DisplayName(ChatTypeGroup, &empty, participants, 1))
	})
}

func TestCanManage(t *testing.T) {
	assert.True(t, (&Participant{Role: RoleOwner}).CanManage())
	assert.True(t, (&Participant{Role: RoleAdmin}).CanManage())
	assert.False(t, (&Participant{Role: RoleMember}).CanManage())
}

func TestChatKind(t *testing.T) {
	assert.True(t, (&Chat{Type: ChatTypePrivate}).IsPrivate())
	assert.True(t, (&Chat{Type: ChatTypeGroup}).IsGroup())
	assert.False(t, (&Chat{Type: ChatTypeGroup}).IsPrivate())
}

func TestFullName(t *testing.T) {
	u := User{FirstName: "Alice", LastName: "Ng"}
	assert.Equal(t, "Alice Ng", u.FullName())

	solo := User{FirstName: "Cher"}
	assert.Equal(t, "Cher", solo.FullName())
}
