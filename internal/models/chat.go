package models

import "time"

// Chat kinds. A private chat always has exactly two participants; a
// group chat has one or more.
const (
	ChatTypePrivate = "private"
	ChatTypeGroup   = "group"
)

// Participant roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Chat represents a conversation between two or more users.
type Chat struct {
	ID            int64      `json:"id" db:"id"`
	Type          string     `json:"type" db:"type"`
	Name          *string    `json:"name,omitempty" db:"name"`
	Description   *string    `json:"description,omitempty" db:"description"`
	Avatar        *string    `json:"avatar,omitempty" db:"avatar"`
	CreatedBy     *int64     `json:"createdBy,omitempty" db:"created_by"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty" db:"last_message_at"`
	IsActive      bool       `json:"isActive" db:"is_active"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
}

func (c *Chat) IsPrivate() bool {
	return c.Type == ChatTypePrivate
}

func (c *Chat) IsGroup() bool {
	return c.Type == ChatTypeGroup
}

// Participant is a chat×user membership row carrying role and
// read-cursor state.
type Participant struct {
	ChatID            int64      `json:"chatId" db:"chat_id"`
	UserID            int64      `json:"userId" db:"user_id"`
	Role              string     `json:"role" db:"role"`
	JoinedAt          time.Time  `json:"joinedAt" db:"joined_at"`
	LastSeenAt        *time.Time `json:"lastSeenAt,omitempty" db:"last_seen_at"`
	LastReadMessageID *int64     `json:"lastReadMessageId,omitempty" db:"last_read_message_id"`
	IsMuted           bool       `json:"isMuted" db:"is_muted"`
	IsPinned          bool       `json:"isPinned" db:"is_pinned"`
}

// CanManage reports whether the role may rename the chat or manage
// its participants.
func (p *Participant) CanManage() bool {
	return p.Role == RoleOwner || p.Role == RoleAdmin
}

// ChatParticipant is the participant entry embedded in chat responses.
type ChatParticipant struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Name      string  `json:"name"`
	Avatar    *string `json:"avatar,omitempty"`
	Role      string  `json:"role,omitempty"`
	IsOnline  bool    `json:"is_online"`
}

// LastMessagePreview summarizes the newest message in a chat list entry.
type LastMessagePreview struct {
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	IsOwn     bool      `json:"is_own"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatListItem is one entry of the chat list response.
type ChatListItem struct {
	ID          int64               `json:"id"`
	Type        string              `json:"type"`
	Name        string              `json:"name"`
	Avatar      *string             `json:"avatar,omitempty"`
	Description *string             `json:"description,omitempty"`
	LastMessage *LastMessagePreview `json:"last_message,omitempty"`
	UnreadCount int                 `json:"unread_count"`
	Participants []ChatParticipant  `json:"participants"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// DisplayName resolves the name shown for the chat: group chats use
// their own name, private chats the other participant's name.
func DisplayName(chatType string, name *string, participants []ChatParticipant, viewerID int64) string {
	if chatType == ChatTypeGroup {
		if name != nil && *name != "" {
			return *name
		}
		return "Group Chat"
	}
	for _, p := range participants {
		if p.ID != viewerID {
			return p.Name
		}
	}
	return "Private Chat"
}
