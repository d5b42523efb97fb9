package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"skillswap/server/internal/database"
	"skillswap/server/internal/metrics"
	"skillswap/server/internal/middleware"
	"skillswap/server/internal/models"
	"skillswap/server/internal/websocket"

	"github.com/gofiber/fiber/v2"
)

const maxContentLength = 10000

// SendMessageRequest represents the JSON message payload. File messages
// are sent as multipart form data instead.
type SendMessageRequest struct {
	Content          string `json:"content"`
	Type             string `json:"type"`
	ReplyToMessageID int64  `json:"reply_to_message_id"`
}

// GetMessages returns a page of chat messages in chronological order.
// Pagination walks backward with ?before=<message_id>; the first page
// also advances the caller's read cursor.
func GetMessages(c *fiber.Ctx) error {
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

	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 100 {
		limit = 50
	}
	before := int64(c.QueryInt("before", 0))
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	offset := 0
	if before == 0 {
		offset = (page - 1) * limit
	}
	search := strings.TrimSpace(c.Query("search"))

	messages, err := loadChatMessages(int64(chatID), before, offset, limit+1, search)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch messages",
		})
	}

	hasMore := false
	if len(messages) > limit {
		hasMore = true
		messages = messages[len(messages)-limit:]
	}

	if before == 0 && page == 1 && search == "" && len(messages) > 0 {
		advanceReadCursor(context.Background(), int64(chatID), userID, messages[len(messages)-1].ID)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"messages": messages,
			"has_more": hasMore,
		},
	})
}

// SendMessage posts a message to a chat. Text messages arrive as JSON;
// attachments as multipart form data with a "file" field. Sending into
// a deactivated private chat reactivates it.
func SendMessage(c *fiber.Ctx) error {
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

	var req SendMessageRequest
	var stored *storedFile

	if fh, ferr := c.FormFile("file"); ferr == nil {
		req.Content = c.FormValue("content")
		req.Type = c.FormValue("type")
		if v := c.FormValue("reply_to_message_id"); v != "" {
			req.ReplyToMessageID, _ = strconv.ParseInt(v, 10, 64)
		}

		stored, err = saveUploadedFile(fh, req.Type)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		req.Type = stored.Type
	} else {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid request body",
			})
		}
		if req.Type == "" {
			req.Type = models.MessageTypeText
		}
		if req.Type != models.MessageTypeText || strings.TrimSpace(req.Content) == "" {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"success": false,
				"error":   "Message content is required",
			})
		}
	}

	if len(req.Content) > maxContentLength {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "Message content is too long",
		})
	}

	var replyTo *int64
	if req.ReplyToMessageID != 0 {
		var inChat bool
		err := database.Pool.QueryRow(context.Background(),
			"SELECT EXISTS(SELECT 1 FROM messages WHERE id = $1 AND chat_id = $2)",
			req.ReplyToMessageID, chatID).Scan(&inChat)
		if err != nil || !inChat {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Reply target not found in this chat",
			})
		}
		replyTo = &req.ReplyToMessageID
	}

	tx, err := database.Pool.Begin(context.Background())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to start transaction",
		})
	}
	defer tx.Rollback(context.Background())

	var msg models.Message
	if stored != nil {
		err = tx.QueryRow(context.Background(), `
			INSERT INTO messages (chat_id, user_id, type, content, file_name, file_size, mime_type, file_url, metadata, reply_to_message_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, chat_id, user_id, type, content, file_name, file_size, mime_type, file_url,
			          metadata, reply_to_message_id, is_edited, edited_at, is_deleted, deleted_at, created_at, updated_at
		`, chatID, userID, stored.Type, req.Content, stored.Name, stored.Size, stored.MimeType,
			stored.URL, stored.Metadata, replyTo).Scan(
			&msg.ID, &msg.ChatID, &msg.UserID, &msg.Type, &msg.Content, &msg.FileName, &msg.FileSize,
			&msg.MimeType, &msg.FileURL, &msg.Metadata, &msg.ReplyToMessageID, &msg.IsEdited,
			&msg.EditedAt, &msg.IsDeleted, &msg.DeletedAt, &msg.CreatedAt, &msg.UpdatedAt)
	} else {
		err = tx.QueryRow(context.Background(), `
			INSERT INTO messages (chat_id, user_id, type, content, reply_to_message_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, chat_id, user_id, type, content, file_name, file_size, mime_type, file_url,
			          metadata, reply_to_message_id, is_edited, edited_at, is_deleted, deleted_at, created_at, updated_at
		`, chatID, userID, req.Type, req.Content, replyTo).Scan(
			&msg.ID, &msg.ChatID, &msg.UserID, &msg.Type, &msg.Content, &msg.FileName, &msg.FileSize,
			&msg.MimeType, &msg.FileURL, &msg.Metadata, &msg.ReplyToMessageID, &msg.IsEdited,
			&msg.EditedAt, &msg.IsDeleted, &msg.DeletedAt, &msg.CreatedAt, &msg.UpdatedAt)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to send message",
		})
	}

	_, err = tx.Exec(context.Background(),
		"UPDATE chats SET last_message_at = NOW(), updated_at = NOW(), is_active = TRUE WHERE id = $1", chatID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to send message",
		})
	}

	if err := tx.Commit(context.Background()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to send message",
		})
	}

	sender, err := getUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch sender",
		})
	}

	full := models.MessageWithSender{
		Message:   msg,
		User:      sender.ToResponse(),
		Reactions: map[string]int{},
	}
	if msg.ReplyToMessageID != nil {
		full.ReplyToMessage = loadReplyPreview(*msg.ReplyToMessageID)
	}

	// Own messages are read by definition
	advanceReadCursor(context.Background(), msg.ChatID, userID, msg.ID)

	WSHub.BroadcastToChat(msg.ChatID, websocket.NewEvent(websocket.EventMessageSent, websocket.MessagePayload{
		ChatID:  msg.ChatID,
		Message: full,
	}), userID)

	preview := msg.FormattedContent()
	if runes := []rune(preview); len(runes) > 100 {
		preview = string(runes[:100]) + "..."
	}
	if ids, err := getParticipantIDs(msg.ChatID); err == nil {
		for _, id := range ids {
			if id != userID {
				Notifier.NewMessage(context.Background(), *sender, id, msg.ChatID, preview)
			}
		}
	}

	metrics.MessagesSent.WithLabelValues(msg.Type).Inc()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    full,
	})
}

// EditMessage updates the content of the caller's own text message.
// Edits are allowed for 15 minutes after sending.
func EditMessage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	chatID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid chat ID",
		})
	}
	messageID, err := c.ParamsInt("messageId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid message ID",
		})
	}

	if !IsChatParticipant(int64(chatID), userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You are not a participant of this chat",
		})
	}

	msg, err := getMessage(int64(messageID))
	if err != nil || msg.ChatID != int64(chatID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Message not found",
		})
	}

	if msg.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You can only edit your own messages",
		})
	}

	if !msg.CanEdit(userID, time.Now()) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "This message can no longer be edited",
		})
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "Message content is required",
		})
	}
	if len(req.Content) > maxContentLength {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "Message content is too long",
		})
	}

	err = database.Pool.QueryRow(context.Background(), `
		UPDATE messages
		SET content = $2, is_edited = TRUE, edited_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING content, is_edited, edited_at, updated_at
	`, msg.ID, req.Content).Scan(&msg.Content, &msg.IsEdited, &msg.EditedAt, &msg.UpdatedAt)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to edit message",
		})
	}

	full := buildMessageWithSender(msg)
	WSHub.BroadcastToChat(msg.ChatID, websocket.NewEvent(websocket.EventMessageSent, websocket.MessagePayload{
		ChatID:  msg.ChatID,
		Message: full,
	}), userID)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    full,
	})
}

// DeleteMessage soft-deletes a message: the row survives so replies
// keep a target, but content is replaced with a placeholder and any
// attachment is removed. Allowed for the sender, and for group owners
// and admins. Deleting an already-deleted message is a no-op.
func DeleteMessage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	chatID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid chat ID",
		})
	}
	messageID, err := c.ParamsInt("messageId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid message ID",
		})
	}

	participant, err := getParticipant(int64(chatID), userID)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You are not a participant of this chat",
		})
	}

	msg, err := getMessage(int64(messageID))
	if err != nil || msg.ChatID != int64(chatID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Message not found",
		})
	}

	if msg.UserID != userID && !participant.CanManage() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You cannot delete this message",
		})
	}

	if msg.IsDeleted {
		return c.JSON(fiber.Map{
			"success": true,
			"data":    buildMessageWithSender(msg),
		})
	}

	fileURL := msg.FileURL

	err = database.Pool.QueryRow(context.Background(), `
		UPDATE messages
		SET content = $2, type = 'text',
		    file_name = NULL, file_size = NULL, mime_type = NULL, file_url = NULL, metadata = NULL,
		    is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING type, content, file_name, file_size, mime_type, file_url, metadata,
		          is_deleted, deleted_at, updated_at
	`, msg.ID, models.DeletedPlaceholder).Scan(
		&msg.Type, &msg.Content, &msg.FileName, &msg.FileSize, &msg.MimeType, &msg.FileURL,
		&msg.Metadata, &msg.IsDeleted, &msg.DeletedAt, &msg.UpdatedAt)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to delete message",
		})
	}

	if fileURL != nil {
		deleteStoredFile(*fileURL)
	}

	full := buildMessageWithSender(msg)
	WSHub.BroadcastToChat(msg.ChatID, websocket.NewEvent(websocket.EventMessageSent, websocket.MessagePayload{
		ChatID:  msg.ChatID,
		Message: full,
	}), userID)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    full,
	})
}

// ReactToMessage toggles an emoji reaction: reacting with a symbol the
// caller already placed removes it, otherwise it is added. A user may
// hold several distinct reactions on the same message.
func ReactToMessage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	chatID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid chat ID",
		})
	}
	messageID, err := c.ParamsInt("messageId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid message ID",
		})
	}

	if !IsChatParticipant(int64(chatID), userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You are not a participant of this chat",
		})
	}

	var req struct {
		Reaction string `json:"reaction"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if !models.IsAllowedReaction(req.Reaction) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "Unsupported reaction",
		})
	}

	msg, err := getMessage(int64(messageID))
	if err != nil || msg.ChatID != int64(chatID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Message not found",
		})
	}

	if msg.IsDeleted {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Deleted messages cannot be reacted to",
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

	action := "add"
	tag, err := tx.Exec(context.Background(), `
		DELETE FROM message_reactions WHERE message_id = $1 AND user_id = $2 AND reaction = $3
	`, msg.ID, userID, req.Reaction)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to toggle reaction",
		})
	}
	if tag.RowsAffected() > 0 {
		action = "remove"
	} else {
		_, err = tx.Exec(context.Background(), `
			INSERT INTO message_reactions (message_id, user_id, reaction) VALUES ($1, $2, $3)
		`, msg.ID, userID, req.Reaction)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to toggle reaction",
			})
		}
	}

	if err := tx.Commit(context.Background()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to toggle reaction",
		})
	}

	metrics.ReactionsToggled.WithLabelValues(action).Inc()

	user, _ := getUser(userID)
	if user != nil {
		WSHub.BroadcastToChat(msg.ChatID, websocket.NewEvent(websocket.EventMessageReaction, websocket.ReactionPayload{
			ChatID:    msg.ChatID,
			MessageID: msg.ID,
			User:      user.ToResponse(),
			Reaction:  req.Reaction,
			Action:    action,
		}), userID)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"action":    action,
			"reaction":  req.Reaction,
			"reactions": reactionCounts(msg.ID),
		},
	})
}

// SearchMessages finds messages in a chat by content. Deleted messages
// never match.
func SearchMessages(c *fiber.Ctx) error {
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

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "Search query is required",
		})
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 50 {
		limit = 20
	}

	messages, err := loadChatMessages(int64(chatID), 0, 0, limit, query)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to search messages",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    messages,
	})
}

// Typing broadcasts a typing indicator to the chat. Nothing is stored.
func Typing(c *fiber.Ctx) error {
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
		IsTyping *bool `json:"is_typing"`
	}
	if err := c.BodyParser(&req); err != nil || req.IsTyping == nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "is_typing is required",
		})
	}

	user, err := getUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch user",
		})
	}

	// Typing implies presence
	Presence.Set(context.Background(), int64(chatID), userID)

	WSHub.BroadcastToChat(int64(chatID), websocket.NewEvent(websocket.EventUserTyping, websocket.TypingPayload{
		ChatID:   int64(chatID),
		User:     user.ToResponse(),
		IsTyping: *req.IsTyping,
	}), userID)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"message": "Typing status sent"},
	})
}

// getMessage loads a message row.
func getMessage(messageID int64) (*models.Message, error) {
	var msg models.Message
	err := database.Pool.QueryRow(context.Background(), `
		SELECT id, chat_id, user_id, type, content, file_name, file_size, mime_type, file_url,
		       metadata, reply_to_message_id, is_edited, edited_at, is_deleted, deleted_at, created_at, updated_at
		FROM messages WHERE id = $1
	`, messageID).Scan(&msg.ID, &msg.ChatID, &msg.UserID, &msg.Type, &msg.Content, &msg.FileName,
		&msg.FileSize, &msg.MimeType, &msg.FileURL, &msg.Metadata, &msg.ReplyToMessageID,
		&msg.IsEdited, &msg.EditedAt, &msg.IsDeleted, &msg.DeletedAt, &msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// buildMessageWithSender resolves sender, reply preview and reactions
// for a single message.
func buildMessageWithSender(msg *models.Message) models.MessageWithSender {
	full := models.MessageWithSender{
		Message:   *msg,
		Reactions: reactionCounts(msg.ID),
	}
	if user, err := getUser(msg.UserID); err == nil {
		full.User = user.ToResponse()
	}
	if msg.ReplyToMessageID != nil {
		full.ReplyToMessage = loadReplyPreview(*msg.ReplyToMessageID)
	}
	return full
}

// loadChatMessages fetches up to limit messages of a chat, newest
// first, returned in chronological order. Pagination walks either by
// message-id cursor (before) or by page offset; a non-empty search
// restricts to matching, non-deleted text.
func loadChatMessages(chatID, before int64, offset, limit int, search string) ([]models.MessageWithSender, error) {
	query := `
		SELECT m.id, m.chat_id, m.user_id, m.type, m.content, m.file_name, m.file_size, m.mime_type,
		       m.file_url, m.metadata, m.reply_to_message_id, m.is_edited, m.edited_at, m.is_deleted,
		       m.deleted_at, m.created_at, m.updated_at,
		       u.id, u.first_name, u.last_name, u.avatar
		FROM messages m
		INNER JOIN users u ON u.id = m.user_id
		WHERE m.chat_id = $1`
	args := []interface{}{chatID}

	if before > 0 {
		args = append(args, before)
		query += " AND m.id < $" + strconv.Itoa(len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += " AND m.is_deleted = FALSE AND m.content ILIKE $" + strconv.Itoa(len(args))
	}

	args = append(args, limit)
	query += " ORDER BY m.id DESC LIMIT $" + strconv.Itoa(len(args))
	if offset > 0 {
		args = append(args, offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := database.Pool.Query(context.Background(), query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.MessageWithSender
	var messageIDs []int64
	replyIDs := map[int64]bool{}
	for rows.Next() {
		var m models.MessageWithSender
		if err := rows.Scan(&m.ID, &m.ChatID, &m.UserID, &m.Type, &m.Content, &m.FileName,
			&m.FileSize, &m.MimeType, &m.FileURL, &m.Metadata, &m.ReplyToMessageID,
			&m.IsEdited, &m.EditedAt, &m.IsDeleted, &m.DeletedAt, &m.CreatedAt, &m.UpdatedAt,
			&m.User.ID, &m.User.FirstName, &m.User.LastName, &m.User.Avatar); err != nil {
			return nil, err
		}
		m.User.Name = m.User.FirstName + " " + m.User.LastName
		m.Reactions = map[string]int{}
		messages = append(messages, m)
		messageIDs = append(messageIDs, m.ID)
		if m.ReplyToMessageID != nil {
			replyIDs[*m.ReplyToMessageID] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	if len(messages) == 0 {
		return []models.MessageWithSender{}, nil
	}

	// Reaction summaries in one pass
	counts := map[int64]map[string]int{}
	rrows, err := database.Pool.Query(context.Background(), `
		SELECT message_id, reaction, COUNT(*)
		FROM message_reactions
		WHERE message_id = ANY($1)
		GROUP BY message_id, reaction
	`, messageIDs)
	if err == nil {
		for rrows.Next() {
			var id int64
			var reaction string
			var n int
			if err := rrows.Scan(&id, &reaction, &n); err != nil {
				continue
			}
			if counts[id] == nil {
				counts[id] = map[string]int{}
			}
			counts[id][reaction] = n
		}
		rrows.Close()
	}

	// Reply previews in one pass
	previews := map[int64]*models.ReplyPreview{}
	if len(replyIDs) > 0 {
		ids := make([]int64, 0, len(replyIDs))
		for id := range replyIDs {
			ids = append(ids, id)
		}
		prows, err := database.Pool.Query(context.Background(), `
			SELECT m.id, m.type, m.content, m.file_name, m.is_deleted,
			       u.id, u.first_name, u.last_name, u.avatar
			FROM messages m
			INNER JOIN users u ON u.id = m.user_id
			WHERE m.id = ANY($1)
		`, ids)
		if err == nil {
			for prows.Next() {
				var m models.Message
				var u models.UserResponse
				if err := prows.Scan(&m.ID, &m.Type, &m.Content, &m.FileName, &m.IsDeleted,
					&u.ID, &u.FirstName, &u.LastName, &u.Avatar); err != nil {
					continue
				}
				u.Name = u.FirstName + " " + u.LastName
				previews[m.ID] = &models.ReplyPreview{
					ID:      m.ID,
					Content: m.FormattedContent(),
					User:    u,
				}
			}
			prows.Close()
		}
	}

	for i := range messages {
		if r, ok := counts[messages[i].ID]; ok {
			messages[i].Reactions = r
		}
		if messages[i].ReplyToMessageID != nil {
			messages[i].ReplyToMessage = previews[*messages[i].ReplyToMessageID]
		}
	}

	return messages, nil
}

// loadReplyPreview resolves a single reply target.
func loadReplyPreview(messageID int64) *models.ReplyPreview {
	var m models.Message
	var u models.UserResponse
	err := database.Pool.QueryRow(context.Background(), `
		SELECT m.id, m.type, m.content, m.file_name, m.is_deleted,
		       u.id, u.first_name, u.last_name, u.avatar
		FROM messages m
		INNER JOIN users u ON u.id = m.user_id
		WHERE m.id = $1
	`, messageID).Scan(&m.ID, &m.Type, &m.Content, &m.FileName, &m.IsDeleted,
		&u.ID, &u.FirstName, &u.LastName, &u.Avatar)
	if err != nil {
		return nil
	}
	u.Name = u.FirstName + " " + u.LastName
	return &models.ReplyPreview{
		ID:      m.ID,
		Content: m.FormattedContent(),
		User:    u,
	}
}

// reactionCounts returns the per-emoji reaction counts for a message.
func reactionCounts(messageID int64) map[string]int {
	counts := map[string]int{}
	rows, err := database.Pool.Query(context.Background(), `
		SELECT reaction, COUNT(*) FROM message_reactions WHERE message_id = $1 GROUP BY reaction
	`, messageID)
	if err != nil {
		return counts
	}
	defer rows.Close()
	for rows.Next() {
		var reaction string
		var n int
		if err := rows.Scan(&reaction, &n); err != nil {
			continue
		}
		counts[reaction] = n
	}
	return counts
}
