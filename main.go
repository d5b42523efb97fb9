package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"skillswap/server/internal/config"
	"skillswap/server/internal/database"
	"skillswap/server/internal/handlers"
	"skillswap/server/internal/notify"
	"skillswap/server/internal/presence"
	"skillswap/server/internal/routes"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Connect to database
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Presence cache: Redis when configured, in-memory otherwise
	var store presence.Store
	if cfg.RedisAddr != "" {
		redisStore, err := presence.NewRedisStore(cfg.RedisAddr)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		store = redisStore
		log.Println("✅ Redis presence store connected")
	} else {
		store = presence.NewMemoryStore()
		log.Println("Using in-memory presence store")
	}

	// Notification dispatcher: Kafka when configured
	var dispatcher *notify.Dispatcher
	if cfg.KafkaBrokers != "" {
		dispatcher = notify.NewKafkaDispatcher(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Printf("✅ Kafka notification dispatcher ready (topic %s)", cfg.KafkaTopic)
	} else {
		dispatcher = notify.NewNoopDispatcher()
		log.Println("Notifications disabled, no brokers configured")
	}
	defer dispatcher.Close()

	handlers.Init(cfg, store, dispatcher)
	handlers.InitWebSocket()

	app := fiber.New(fiber.Config{
		AppName:   "SkillSwap Chat Server",
		BodyLimit: int(cfg.UploadMaxBytes()) + 1024*1024,
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app)

	log.Printf("🚀 Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
