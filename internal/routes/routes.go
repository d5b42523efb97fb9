package routes

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"skillswap/server/internal/handlers"
	"skillswap/server/internal/middleware"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App) {
	// Health check
	health := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"data":    fiber.Map{"status": "ok"},
		})
	}
	app.Get("/health", health)
	app.Get("/api/v1/health", health)

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.StrictRateLimiter(), handlers.Register)
	auth.Post("/login", middleware.StrictRateLimiter(), handlers.Login)
	auth.Post("/logout", handlers.Logout)
	auth.Get("/me", middleware.AuthMiddleware, handlers.GetMe)
	auth.Post("/refresh", middleware.AuthMiddleware, handlers.RefreshToken)

	// User routes
	users := api.Group("/users", middleware.AuthMiddleware)
	users.Get("/search", middleware.RelaxedRateLimiter(), handlers.SearchUsers)

	// Upload routes
	upload := api.Group("/upload", middleware.AuthMiddleware)
	upload.Post("/avatar", middleware.UploadRateLimiter(), handlers.UploadAvatar)

	// Chat routes
	chats := api.Group("/chats", middleware.AuthMiddleware)
	chats.Get("/", handlers.GetChats)
	chats.Post("/", middleware.ModerateRateLimiter(), handlers.CreateChat)
	chats.Get("/:id", handlers.GetChat)
	chats.Put("/:id", handlers.UpdateChat)
	chats.Delete("/:id", handlers.LeaveChat)
	chats.Post("/:id/read", handlers.MarkChatRead)
	chats.Get("/:id/online", handlers.GetOnlineUsers)
	chats.Post("/:id/typing", handlers.Typing)
	chats.Post("/:id/participants", handlers.AddParticipants)
	chats.Delete("/:id/participants/:userId", handlers.RemoveParticipant)

	// Message routes
	chats.Get("/:id/messages", handlers.GetMessages)
	chats.Post("/:id/messages", middleware.ModerateRateLimiter(), handlers.SendMessage)
	chats.Get("/:id/messages/search", handlers.SearchMessages)
	chats.Put("/:id/messages/:messageId", handlers.EditMessage)
	chats.Delete("/:id/messages/:messageId", handlers.DeleteMessage)
	chats.Post("/:id/messages/:messageId/react", handlers.ReactToMessage)

	// Uploaded files
	app.Get("/uploads/:folder/:filename", handlers.GetFile)

	// WebSocket
	app.Get("/api/v1/ws", handlers.WebSocketUpgrade, handlers.WebSocketHandler)
	api.Get("/ws/stats", middleware.AuthMiddleware, handlers.GetWebSocketStats)
}
