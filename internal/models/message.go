package models

import "time"

// Message types.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeFile  = "file"
	MessageTypeAudio = "audio"
	MessageTypeVideo = "video"
	MessageTypeVoice = "voice"
)

// DeletedPlaceholder replaces the content of soft-deleted messages.
const DeletedPlaceholder = "This message was deleted"

// EditWindow is how long after sending a text message may still be edited.
const EditWindow = 15 * time.Minute

// Message represents a chat message. Rows are never physically removed
// while the chat exists; deletion scrubs content and sets is_deleted so
// replies keep a valid target.
type Message struct {
	ID               int64                  `json:"id" db:"id"`
	ChatID           int64                  `json:"chat_id" db:"chat_id"`
	UserID           int64                  `json:"user_id" db:"user_id"`
	Type             string                 `json:"type" db:"type"`
	Content          string                 `json:"content" db:"content"`
	FileName         *string                `json:"file_name,omitempty" db:"file_name"`
	FileSize         *int64                 `json:"file_size,omitempty" db:"file_size"`
	MimeType         *string                `json:"mime_type,omitempty" db:"mime_type"`
	FileURL          *string                `json:"file_url,omitempty" db:"file_url"`
	Metadata         map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	ReplyToMessageID *int64                 `json:"reply_to_message_id,omitempty" db:"reply_to_message_id"`
	IsEdited         bool                   `json:"is_edited" db:"is_edited"`
	EditedAt         *time.Time             `json:"edited_at,omitempty" db:"edited_at"`
	IsDeleted        bool                   `json:"is_deleted" db:"is_deleted"`
	DeletedAt        *time.Time             `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt        time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at" db:"updated_at"`
}

func (m *Message) IsText() bool {
	return m.Type == MessageTypeText
}

func (m *Message) IsFile() bool {
	switch m.Type {
	case MessageTypeImage, MessageTypeFile, MessageTypeAudio, MessageTypeVideo, MessageTypeVoice:
		return true
	}
	return false
}

// CanEdit reports whether the message may still be edited at the given
// time: only the sender's own, plain-text, non-deleted messages inside
// the edit window.
func (m *Message) CanEdit(editorID int64, now time.Time) bool {
	if m.UserID != editorID || m.IsDeleted || !m.IsText() {
		return false
	}
	return now.Sub(m.CreatedAt) <= EditWindow
}

// FormattedContent renders the chat-list preview for the message.
func (m *Message) FormattedContent() string {
	switch m.Type {
	case MessageTypeText:
		return m.Content
	case MessageTypeImage:
		return "📷 Image"
	case MessageTypeVideo:
		return "🎥 Video"
	case MessageTypeAudio, MessageTypeVoice:
		return "🎵 Audio"
	case MessageTypeFile:
		if m.FileName != nil {
			return "📎 " + *m.FileName
		}
		return "📎 File"
	default:
		return m.Content
	}
}

// ValidMessageType reports whether t is one of the supported types.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile, MessageTypeAudio, MessageTypeVideo, MessageTypeVoice:
		return true
	}
	return false
}

// ReplyPreview is the condensed reply target embedded in a message
// response.
type ReplyPreview struct {
	ID      int64        `json:"id"`
	Content string       `json:"content"`
	User    UserResponse `json:"user"`
}

// MessageWithSender is the message response payload: the row plus its
// resolved sender, reply preview and reaction summary.
type MessageWithSender struct {
	Message
	User           UserResponse   `json:"user"`
	ReplyToMessage *ReplyPreview  `json:"reply_to_message,omitempty"`
	Reactions      map[string]int `json:"reactions"`
}
