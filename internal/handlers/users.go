package handlers

import (
	"context"
	"strings"

	"skillswap/server/internal/database"
	"skillswap/server/internal/middleware"
	"skillswap/server/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SearchUsers finds users by name or email, excluding the caller.
// Used to pick a partner when starting a chat.
func SearchUsers(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

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

	pattern := "%" + query + "%"
	rows, err := database.Pool.Query(context.Background(), `
		SELECT id, first_name, last_name, email, avatar
		FROM users
		WHERE id != $1
		  AND (first_name ILIKE $2 OR last_name ILIKE $2 OR email ILIKE $2
		       OR first_name || ' ' || last_name ILIKE $2)
		ORDER BY first_name, last_name
		LIMIT $3
	`, userID, pattern, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to search users",
		})
	}
	defer rows.Close()

	users := []models.UserResponse{}
	for rows.Next() {
		var u models.UserResponse
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Avatar); err != nil {
			continue
		}
		u.Name = u.FirstName + " " + u.LastName
		users = append(users, u)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
	})
}
