package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskaboard/realtime-api/internal/config"
	"github.com/taskaboard/realtime-api/internal/database"
	"github.com/taskaboard/realtime-api/internal/handlers"
	"github.com/taskaboard/realtime-api/internal/realtime"
	"github.com/taskaboard/realtime-api/internal/repository"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.MigrateDatabase(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// The Mini-App is served from a different origin, so CORS stays open by
	// default and is narrowed through ALLOWED_ORIGIN.
	corsConfig := cors.DefaultConfig()
	if cfg.AllowedOrigin == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{cfg.AllowedOrigin}
	}
	r.Use(cors.New(corsConfig))

	// Initialize the sync core
	store := repository.NewProjectStore(database.GetDB())
	hub := realtime.NewHub()
	engine := realtime.NewEngine(store, hub)

	// Initialize handlers
	projectHandler := handlers.NewProjectHandler(store)
	wsHandler := handlers.NewWSHandler(hub, engine, cfg.AllowedOrigin)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task board sync server is running",
		})
	})

	// Bootstrap snapshot + realtime channel
	r.GET("/project/:chatId", projectHandler.GetProject)
	r.GET("/ws", wsHandler.Serve)

	// Start server
	log.Printf("Server starting on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
