package handlers

import (
	"skillswap/server/internal/utils"
	ws "skillswap/server/internal/websocket"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// WSHub is the process-wide realtime hub.
var WSHub *ws.Hub

// InitWebSocket creates the hub and starts its event loop. The
// subscription gate checks chat membership against the database, so a
// connection can only ever join rooms of chats it participates in.
func InitWebSocket() {
	WSHub = ws.NewHub(IsChatParticipant)
	go WSHub.Run()
}

// WebSocketUpgrade authenticates the upgrade request. Browsers cannot
// set headers on WebSocket handshakes, so the token is also accepted as
// a query parameter.
func WebSocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	tokenString := c.Query("token")
	if tokenString == "" {
		tokenString = c.Cookies("token")
	}
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized - No token provided",
		})
	}

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized - Invalid token",
		})
	}

	c.Locals("userID", claims.UserID)
	return c.Next()
}

// WebSocketHandler upgrades the connection and runs the client pumps.
var WebSocketHandler = websocket.New(func(conn *websocket.Conn) {
	userID, ok := conn.Locals("userID").(int64)
	if !ok {
		conn.Close()
		return
	}

	user, err := getUser(userID)
	if err != nil {
		conn.Close()
		return
	}

	client := ws.NewClient(user.ToResponse(), conn, WSHub)
	WSHub.Register <- client

	go client.WritePump()
	client.ReadPump()
})

// GetWebSocketStats reports live connection counts.
func GetWebSocketStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"connected_users": WSHub.GetConnectedCount(),
			"user_ids":        WSHub.GetConnectedUsers(),
		},
	})
}
