package handlers

import (
	"context"

	"skillswap/server/internal/database"
	"skillswap/server/internal/middleware"
	"skillswap/server/internal/models"
	"skillswap/server/internal/websocket"

	"github.com/gofiber/fiber/v2"
)

// CreateChatRequest represents the chat creation payload. Private chats
// take exactly one participant, group chats a name plus any number.
type CreateChatRequest struct {
	Type         string  `json:"type"`
	Participants []int64 `json:"participants"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
}

// UpdateChatRequest represents the group chat update payload
type UpdateChatRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Avatar      *string `json:"avatar"`
}

// GetChats lists the caller's active chats, newest activity first
func GetChats(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	rows, err := database.Pool.Query(context.Background(), `
		SELECT c.id, c.type, c.name, c.description, c.avatar, c.created_by,
		       c.last_message_at, c.is_active, c.created_at, c.updated_at
		FROM chats c
		INNER JOIN chat_user cu ON cu.chat_id = c.id
		WHERE cu.user_id = $1 AND c.is_active = TRUE
		ORDER BY c.last_message_at DESC NULLS LAST, c.updated_at DESC
	`, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch chats",
		})
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var chat models.Chat
		if err := rows.Scan(&chat.ID, &chat.Type, &chat.Name, &chat.Description, &chat.Avatar,
			&chat.CreatedBy, &chat.LastMessageAt, &chat.IsActive, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			continue
		}
		chats = append(chats, chat)
	}
	rows.Close()

	items := []models.ChatListItem{}
	for i := range chats {
		items = append(items, buildChatListItem(&chats[i], userID))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    items,
	})
}

// CreateChat starts a private or group chat. Private chat creation is
// idempotent: if a private chat between the two users already exists it
// is reactivated and returned instead of creating a duplicate.
func CreateChat(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req CreateChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	switch req.Type {
	case models.ChatTypePrivate:
		return createPrivateChat(c, userID, &req)
	case models.ChatTypeGroup:
		return createGroupChat(c, userID, &req)
	default:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "Chat type must be private or group",
		})
	}
}

func createPrivateChat(c *fiber.Ctx, userID int64, req *CreateChatRequest) error {
	if len(req.Participants) != 1 || req.Participants[0] == 0 || req.Participants[0] == userID {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "A private chat needs exactly one other participant",
		})
	}
	partnerID := req.Participants[0]

	recipient, err := getUser(partnerID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "User not found",
		})
	}

	// Reuse the existing pair chat if there is one
	var existingID int64
	err = database.Pool.QueryRow(context.Background(), `
		SELECT c.id
		FROM chats c
		INNER JOIN chat_user a ON a.chat_id = c.id AND a.user_id = $1
		INNER JOIN chat_user b ON b.chat_id = c.id AND b.user_id = $2
		WHERE c.type = 'private'
		LIMIT 1
	`, userID, partnerID).Scan(&existingID)
	if err == nil {
		database.Pool.Exec(context.Background(),
			"UPDATE chats SET is_active = TRUE, updated_at = NOW() WHERE id = $1", existingID)
		chat, err := getChat(existingID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to fetch chat",
			})
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    buildChatListItem(chat, userID),
		})
	}
	if !isNoRows(err) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to check existing chats",
		})
	}

	tx, err := database.Pool.Begin(context.Background())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to start transaction",
		})
	}
	defer tx.Rollback(context.Background())

	var chatID int64
	err = tx.QueryRow(context.Background(), `
		INSERT INTO chats (type, created_by) VALUES ('private', $1) RETURNING id
	`, userID).Scan(&chatID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create chat",
		})
	}

	_, err = tx.Exec(context.Background(), `
		INSERT INTO chat_user (chat_id, user_id, role) VALUES ($1, $2, 'member'), ($1, $3, 'member')
	`, chatID, userID, partnerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to add participants",
		})
	}

	if err := tx.Commit(context.Background()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create chat",
		})
	}

	if sender, err := getUser(userID); err == nil {
		Notifier.NewChat(context.Background(), *sender, recipient.ID, chatID)
	}
	WSHub.BroadcastToChat(chatID, websocket.NewEvent(websocket.EventUserJoinedChat, websocket.MembershipPayload{
		ChatID: chatID,
		User:   recipient.ToResponse(),
	}), 0)

	chat, err := getChat(chatID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch chat",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    buildChatListItem(chat, userID),
	})
}

func createGroupChat(c *fiber.Ctx, userID int64, req *CreateChatRequest) error {
	if req.Name == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "Group name is required",
		})
	}

	memberIDs := []int64{}
	seen := map[int64]bool{userID: true}
	for _, id := range req.Participants {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := getUser(id); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "User not found",
			})
		}
		memberIDs = append(memberIDs, id)
	}

	tx, err := database.Pool.Begin(context.Background())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to start transaction",
		})
	}
	defer tx.Rollback(context.Background())

	var chatID int64
	err = tx.QueryRow(context.Background(), `
		INSERT INTO chats (type, name, description, created_by)
		VALUES ('group', $1, NULLIF($2, ''), $3)
		RETURNING id
	`, req.Name, req.Description, userID).Scan(&chatID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create chat",
		})
	}

	_, err = tx.Exec(context.Background(), `
		INSERT INTO chat_user (chat_id, user_id, role) VALUES ($1, $2, 'owner')
	`, chatID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to add participants",
		})
	}

	for _, id := range memberIDs {
		_, err = tx.Exec(context.Background(), `
			INSERT INTO chat_user (chat_id, user_id, role) VALUES ($1, $2, 'member')
		`, chatID, id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to add participants",
			})
		}
	}

	if err := tx.Commit(context.Background()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create chat",
		})
	}

	if sender, err := getUser(userID); err == nil {
		for _, id := range memberIDs {
			Notifier.NewChat(context.Background(), *sender, id, chatID)
		}
	}
	for _, id := range memberIDs {
		if member, err := getUser(id); err == nil {
			WSHub.BroadcastToChat(chatID, websocket.NewEvent(websocket.EventUserJoinedChat, websocket.MembershipPayload{
				ChatID: chatID,
				User:   member.ToResponse(),
			}), 0)
		}
	}

	chat, err := getChat(chatID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch chat",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    buildChatListItem(chat, userID),
	})
}

// GetChat returns a chat with its participants and the 50 newest
// messages in chronological order. Opening a chat marks the caller
// online in it and advances their read cursor.
func GetChat(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	chatID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid chat ID",
		})
	}

	if !IsChatParticipant(int64(chatID), userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You are not a participant of this chat",
		})
	}

	chat, err := getChat(int64(chatID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Chat not found",
		})
	}

	participants, _ := getChatParticipants(chat.ID)
	messages, err := loadChatMessages(chat.ID, 0, 0, 50, "")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch messages",
		})
	}

	// Bumps last_seen_at even when the chat is empty
	var newest int64
	if len(messages) > 0 {
		newest = messages[len(messages)-1].ID
	}
	advanceReadCursor(context.Background(), chat.ID, userID, newest)

	markOnline(chat.ID, userID)

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":           chat.ID,
			"type":         chat.Type,
			"name":         models.DisplayName(chat.Type, chat.Name, participants, userID),
			"description":  chat.Description,
			"avatar":       chat.Avatar,
			"participants": participants,
			"messages":     messages,
			"created_at":   chat.CreatedAt,
			"updated_at":   chat.UpdatedAt,
		},
	})
}

// UpdateChat renames a group chat or changes its description/avatar.
// Only owners and admins may update; private chats cannot be renamed.
func UpdateChat(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	chatID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid chat ID",
		})
	}

	participant, err := getParticipant(int64(chatID), userID)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You are not a participant of this chat",
		})
	}

	chat, err := getChat(int64(chatID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Chat not found",
		})
	}

	if chat.IsPrivate() {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "Private chats cannot be updated",
		})
	}

	if !participant.CanManage() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Only owners and admins can update the chat",
		})
	}

	var req UpdateChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.Name != nil && *req.Name == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "Group name cannot be empty",
		})
	}

	_, err = database.Pool.Exec(context.Background(), `
		UPDATE chats
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    avatar = COALESCE($4, avatar),
		    updated_at = NOW()
		WHERE id = $1
	`, chat.ID, req.Name, req.Description, req.Avatar)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update chat",
		})
	}

	updated, err := getChat(chat.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch chat",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    buildChatListItem(updated, userID),
	})
}

// LeaveChat removes the caller from a chat. Private chats are
// deactivated but kept so their history survives; leaving a group
// removes the membership row, and a group left by its last participant
// is deleted entirely.
func LeaveChat(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	chatID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid chat ID",
		})
	}

	if !IsChatParticipant(int64(chatID), userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You are not a participant of this chat",
		})
	}

	chat, err := getChat(int64(chatID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Chat not found",
		})
	}

	if chat.IsPrivate() {
		_, err = database.Pool.Exec(context.Background(),
			"UPDATE chats SET is_active = FALSE, updated_at = NOW() WHERE id = $1", chat.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to leave chat",
			})
		}
		Presence.Clear(context.Background(), chat.ID, userID)
		return c.JSON(fiber.Map{
			"success": true,
			"data":    fiber.Map{"message": "Chat deleted"},
		})
	}

	leaver, _ := getUser(userID)

	_, err = database.Pool.Exec(context.Background(),
		"DELETE FROM chat_user WHERE chat_id = $1 AND user_id = $2", chat.ID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to leave chat",
		})
	}

	var remaining int
	database.Pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM chat_user WHERE chat_id = $1", chat.ID).Scan(&remaining)

	if remaining == 0 {
		database.Pool.Exec(context.Background(), "DELETE FROM chats WHERE id = $1", chat.ID)
	} else {
		// Keep the group manageable: hand ownership to the
		// longest-standing participant if no owner remains.
		database.Pool.Exec(context.Background(), `
			UPDATE chat_user SET role = 'owner'
			WHERE chat_id = $1
			  AND user_id = (SELECT user_id FROM chat_user WHERE chat_id = $1 ORDER BY joined_at ASC LIMIT 1)
			  AND NOT EXISTS (SELECT 1 FROM chat_user WHERE chat_id = $1 AND role = 'owner')
		`, chat.ID)

		if leaver != nil {
			WSHub.BroadcastToChat(chat.ID, websocket.NewEvent(websocket.EventUserLeftChat, websocket.MembershipPayload{
				ChatID: chat.ID,
				User:   leaver.ToResponse(),
			}), userID)
		}
	}

	Presence.Clear(context.Background(), chat.ID, userID)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"message": "Left chat"},
	})
}

// AddParticipants adds users to a group chat. Owner or admin only.
func AddParticipants(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	chatID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid chat ID",
		})
	}

	participant, err := getParticipant(int64(chatID), userID)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You are not a participant of this chat",
		})
	}

	chat, err := getChat(int64(chatID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Chat not found",
		})
	}

	if chat.IsPrivate() {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "Cannot add participants to a private chat",
		})
	}

	if !participant.CanManage() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Only owners and admins can add participants",
		})
	}

	var req struct {
		Participants []int64 `json:"participants"`
	}
	if err := c.BodyParser(&req); err != nil || len(req.Participants) == 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "participants is required",
		})
	}

	inviter, _ := getUser(userID)

	for _, id := range req.Participants {
		user, err := getUser(id)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "User not found",
			})
		}

		// Already a member is a no-op
		tag, err := database.Pool.Exec(context.Background(), `
			INSERT INTO chat_user (chat_id, user_id, role) VALUES ($1, $2, 'member')
			ON CONFLICT (chat_id, user_id) DO NOTHING
		`, chat.ID, id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to add participants",
			})
		}
		if tag.RowsAffected() == 0 {
			continue
		}

		WSHub.BroadcastToChat(chat.ID, websocket.NewEvent(websocket.EventUserJoinedChat, websocket.MembershipPayload{
			ChatID: chat.ID,
			User:   user.ToResponse(),
		}), 0)
		if inviter != nil {
			Notifier.NewChat(context.Background(), *inviter, id, chat.ID)
		}
	}

	participants, _ := getChatParticipants(chat.ID)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"participants": participants},
	})
}

// RemoveParticipant removes a user from a group chat. Owners and
// admins can remove anyone but the owner; anyone can remove themselves.
func RemoveParticipant(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	chatID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid chat ID",
		})
	}
	targetID, err := c.ParamsInt("userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid user ID",
		})
	}

	participant, err := getParticipant(int64(chatID), userID)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You are not a participant of this chat",
		})
	}

	chat, err := getChat(int64(chatID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Chat not found",
		})
	}

	if chat.IsPrivate() {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "Cannot remove participants from a private chat",
		})
	}

	// Removing yourself is always allowed; removing others needs
	// owner or admin.
	if int64(targetID) != userID && !participant.CanManage() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Only owners and admins can remove participants",
		})
	}

	target, err := getParticipant(chat.ID, int64(targetID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Participant not found",
		})
	}

	if target.Role == models.RoleOwner {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "The chat owner cannot be removed",
		})
	}

	_, err = database.Pool.Exec(context.Background(),
		"DELETE FROM chat_user WHERE chat_id = $1 AND user_id = $2", chat.ID, target.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to remove participant",
		})
	}

	if removed, err := getUser(target.UserID); err == nil {
		WSHub.BroadcastToChat(chat.ID, websocket.NewEvent(websocket.EventUserLeftChat, websocket.MembershipPayload{
			ChatID: chat.ID,
			User:   removed.ToResponse(),
		}), 0)
	}
	Presence.Clear(context.Background(), chat.ID, target.UserID)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"message": "Participant removed"},
	})
}

// MarkChatRead advances the caller's read cursor. With a message_id it
// moves the cursor to that message; without one, to the chat's newest
// message. The cursor never moves backward.
func MarkChatRead(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	chatID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid chat ID",
		})
	}

	if !IsChatParticipant(int64(chatID), userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You are not a participant of this chat",
		})
	}

	var req struct {
		MessageID int64 `json:"message_id"`
	}
	c.BodyParser(&req)

	messageID := req.MessageID
	if messageID != 0 {
		var belongs bool
		err := database.Pool.QueryRow(context.Background(),
			"SELECT EXISTS(SELECT 1 FROM messages WHERE id = $1 AND chat_id = $2)",
			messageID, chatID).Scan(&belongs)
		if err != nil || !belongs {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Message not found in this chat",
			})
		}
	} else {
		err := database.Pool.QueryRow(context.Background(),
			"SELECT COALESCE(MAX(id), 0) FROM messages WHERE chat_id = $1", chatID).Scan(&messageID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to mark chat as read",
			})
		}
	}

	if messageID > 0 {
		if err := advanceReadCursor(context.Background(), int64(chatID), userID, messageID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to mark chat as read",
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"unread_count": unreadCount(int64(chatID), userID),
		},
	})
}

// GetOnlineUsers lists chat participants currently marked online.
func GetOnlineUsers(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	chatID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid chat ID",
		})
	}

	if !IsChatParticipant(int64(chatID), userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You are not a participant of this chat",
		})
	}

	participants, err := getChatParticipants(int64(chatID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch participants",
		})
	}

	online := []models.ChatParticipant{}
	for _, p := range participants {
		if p.IsOnline && p.ID != userID {
			online = append(online, p)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    online,
	})
}

// markOnline records the caller's presence in the chat and announces
// the transition to other subscribers.
func markOnline(chatID, userID int64) {
	Presence.Set(context.Background(), chatID, userID)

	if user, err := getUser(userID); err == nil {
		WSHub.BroadcastToChat(chatID, websocket.NewEvent(websocket.EventUserOnlineStatus, websocket.PresencePayload{
			ChatID:   chatID,
			User:     user.ToResponse(),
			IsOnline: true,
		}), userID)
	}
}

// buildChatListItem assembles the chat list entry for a viewer:
// display name, participants with presence, last message preview and
// unread count.
func buildChatListItem(chat *models.Chat, viewerID int64) models.ChatListItem {
	participants, _ := getChatParticipants(chat.ID)

	item := models.ChatListItem{
		ID:           chat.ID,
		Type:         chat.Type,
		Name:         models.DisplayName(chat.Type, chat.Name, participants, viewerID),
		Avatar:       chat.Avatar,
		Description:  chat.Description,
		UnreadCount:  unreadCount(chat.ID, viewerID),
		Participants: participants,
		CreatedAt:    chat.CreatedAt,
		UpdatedAt:    chat.UpdatedAt,
	}

	var msg models.Message
	var senderFirst, senderLast string
	err := database.Pool.QueryRow(context.Background(), `
		SELECT m.user_id, m.type, m.content, m.file_name, m.created_at, u.first_name, u.last_name
		FROM messages m
		INNER JOIN users u ON u.id = m.user_id
		WHERE m.chat_id = $1
		ORDER BY m.id DESC
		LIMIT 1
	`, chat.ID).Scan(&msg.UserID, &msg.Type, &msg.Content, &msg.FileName, &msg.CreatedAt,
		&senderFirst, &senderLast)
	if err == nil {
		item.LastMessage = &models.LastMessagePreview{
			Content:   msg.FormattedContent(),
			Sender:    senderFirst + " " + senderLast,
			IsOwn:     msg.UserID == viewerID,
			CreatedAt: msg.CreatedAt,
		}
	}

	return item
}
