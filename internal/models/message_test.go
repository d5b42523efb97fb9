package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanEdit(t *testing.T) {
	now := time.Now()
	base := Message{
		ID:        1,
		ChatID:    1,
		UserID:    7,
		Type:      MessageTypeText,
		Content:   "hello",
		CreatedAt: now.Add(-5 * time.Minute),
	}

	t.Run("sender within window", func(t *testing.T) {
		m := base
		assert.True(t, m.CanEdit(7, now))
	})

	t.Run("someone else", func(t *testing.T) {
		m := base
		assert.False(t, m.CanEdit(8, now))
	})

	t.Run("window expired", func(t *testing.T) {
		m := base
		m.CreatedAt = now.Add(-16 * time.Minute)
		assert.False(t, m.CanEdit(7, now))
	})

	t.Run("exactly at the window edge", func(t *testing.T) {
		m := base
		m.CreatedAt = now.Add(-EditWindow)
		assert.True(t, m.CanEdit(7, now))
	})

	t.Run("non-text message", func(t *testing.T) {
		m := base
		m.Type = MessageTypeImage
		assert.False(t, m.CanEdit(7, now))
	})

	t.Run("deleted message", func(t *testing.T) {
		m := base
		m.IsDeleted = true
		assert.False(t, m.CanEdit(7, now))
	})
}

func TestFormattedContent(t *testing.T) {
	name := "notes.pdf"

	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"text", Message{Type: MessageTypeText, Content: "hi there"}, "hi there"},
		{"image", Message{Type: MessageTypeImage}, "📷 Image"},
		{"video", Message{Type: MessageTypeVideo}, "🎥 Video"},
		{"audio", Message{Type: MessageTypeAudio}, "🎵 Audio"},
		{"voice", Message{Type: MessageTypeVoice}, "🎵 Audio"},
		{"file with name", Message{Type: MessageTypeFile, FileName: &name}, "📎 notes.pdf"},
		{"file without name", Message{Type: MessageTypeFile}, "📎 File"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.msg.FormattedContent())
		})
	}
}

func TestValidMessageType(t *testing.T) {
	for _, v := range []string{"text", "image", "file", "audio", "video", "voice"} {
		assert.True(t, ValidMessageType(v), v)
	}
	assert.False(t, ValidMessageType("sticker"))
	assert.False(t, ValidMessageType(""))
}

func TestIsFile(t *testing.T) {
	assert.False(t, (&Message{Type: MessageTypeText}).IsFile())
	assert.True(t, (&Message{Type: MessageTypeVoice}).IsFile())
	assert.True(t, (&Message{Type: MessageTypeImage}).IsFile())
}
