package handlers

import (
	"context"

	"skillswap/server/internal/config"
	"skillswap/server/internal/database"
	"skillswap/server/internal/models"
	"skillswap/server/internal/notify"
	"skillswap/server/internal/presence"

	"github.com/jackc/pgx/v5"
)

// Shared collaborators, wired once at startup.
var (
	Cfg      *config.Config
	Presence presence.Store
	Notifier *notify.Dispatcher
)

// Init wires the handler package's collaborators.
func Init(cfg *config.Config, store presence.Store, dispatcher *notify.Dispatcher) {
	Cfg = cfg
	Presence = store
	Notifier = dispatcher
}

// IsChatParticipant is the authorization gate for every chat operation:
// acting on a chat you do not participate in always fails, regardless
// of whether the chat exists.
func IsChatParticipant(chatID, userID int64) bool {
	var isMember bool
	err := database.Pool.QueryRow(context.Background(), `
		SELECT EXISTS(SELECT 1 FROM chat_user WHERE chat_id = $1 AND user_id = $2)
	`, chatID, userID).Scan(&isMember)
	return err == nil && isMember
}

// getParticipant loads the caller's membership row for a chat.
func getParticipant(chatID, userID int64) (*models.Participant, error) {
	var p models.Participant
	err := database.Pool.QueryRow(context.Background(), `
		SELECT chat_id, user_id, role, joined_at, last_seen_at, last_read_message_id, is_muted, is_pinned
		FROM chat_user WHERE chat_id = $1 AND user_id = $2
	`, chatID, userID).Scan(&p.ChatID, &p.UserID, &p.Role, &p.JoinedAt, &p.LastSeenAt,
		&p.LastReadMessageID, &p.IsMuted, &p.IsPinned)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// getChat loads a chat row.
func getChat(chatID int64) (*models.Chat, error) {
	var chat models.Chat
	err := database.Pool.QueryRow(context.Background(), `
		SELECT id, type, name, description, avatar, created_by, last_message_at, is_active, created_at, updated_at
		FROM chats WHERE id = $1
	`, chatID).Scan(&chat.ID, &chat.Type, &chat.Name, &chat.Description, &chat.Avatar,
		&chat.CreatedBy, &chat.LastMessageAt, &chat.IsActive, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// getUser loads a user row.
func getUser(userID int64) (*models.User, error) {
	var user models.User
	err := database.Pool.QueryRow(context.Background(), `
		SELECT id, first_name, last_name, email, avatar, last_active_at, created_at, updated_at
		FROM users WHERE id = $1
	`, userID).Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Avatar,
		&user.LastActiveAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// getChatParticipants returns all participants of a chat with their
// role and live presence flag, ordered by join time.
func getChatParticipants(chatID int64) ([]models.ChatParticipant, error) {
	rows, err := database.Pool.Query(context.Background(), `
		SELECT u.id, u.first_name, u.last_name, u.avatar, cu.role
		FROM users u
		INNER JOIN chat_user cu ON u.id = cu.user_id
		WHERE cu.chat_id = $1
		ORDER BY cu.joined_at ASC
	`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []models.ChatParticipant
	for rows.Next() {
		var p models.ChatParticipant
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Avatar, &p.Role); err != nil {
			continue
		}
		p.Name = p.FirstName + " " + p.LastName
		if ts, err := Presence.Get(context.Background(), chatID, p.ID); err == nil && ts != nil {
			p.IsOnline = true
		}
		participants = append(participants, p)
	}

	if participants == nil {
		participants = []models.ChatParticipant{}
	}
	return participants, nil
}

// getParticipantIDs returns the user IDs of all chat participants.
func getParticipantIDs(chatID int64) ([]int64, error) {
	rows, err := database.Pool.Query(context.Background(), `
		SELECT user_id FROM chat_user WHERE chat_id = $1
	`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// unreadCount counts messages authored by others past the caller's
// read cursor.
func unreadCount(chatID, userID int64) int {
	var count int
	err := database.Pool.QueryRow(context.Background(), `
		SELECT COUNT(*)
		FROM messages m
		WHERE m.chat_id = $1
		  AND m.user_id != $2
		  AND m.id > COALESCE((SELECT last_read_message_id FROM chat_user WHERE chat_id = $1 AND user_id = $2), 0)
	`, chatID, userID).Scan(&count)
	if err != nil {
		return 0
	}
	return count
}

// advanceReadCursor moves the participant's read cursor forward, never
// backward, and refreshes last_seen_at.
func advanceReadCursor(ctx context.Context, chatID, userID, messageID int64) error {
	_, err := database.Pool.Exec(ctx, `
		UPDATE chat_user
		SET last_read_message_id = GREATEST(COALESCE(last_read_message_id, 0), $3),
		    last_seen_at = NOW()
		WHERE chat_id = $1 AND user_id = $2
	`, chatID, userID, messageID)
	return err
}

// isNoRows reports whether err means "not found".
func isNoRows(err error) bool {
	return err == pgx.ErrNoRows
}
