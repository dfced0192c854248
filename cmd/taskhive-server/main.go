package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/config"
	"github.com/taskhive/taskhive/pkg/taskhive/database"
	"github.com/taskhive/taskhive/pkg/taskhive/groups"
	"github.com/taskhive/taskhive/pkg/taskhive/invites"
	"github.com/taskhive/taskhive/pkg/taskhive/logging"
	"github.com/taskhive/taskhive/pkg/taskhive/metrics"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"github.com/taskhive/taskhive/pkg/taskhive/stats"
	"github.com/taskhive/taskhive/pkg/taskhive/tasks"
	"github.com/taskhive/taskhive/pkg/taskhive/users"
)

// @title TaskHive API
// @version 1.0
// @description A shared to-do tracker: groups, invites, and collaboratively claimed tasks.

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token. Format: "Bearer {token}"

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}

	if err := models.AutoMigrate(db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger(), metrics.Middleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "taskhive",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(db)
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Aggregate stats (public)
		statsHandler := stats.NewHandler(db)
		statsHandler.RegisterRoutes(api)

		// Account routes sit behind authentication only, not RequireActive,
		// so a deactivated user can reactivate themself.
		usersHandler := users.NewHandler(db)
		usersHandler.RegisterRoutes(api.Group("/users", auth.AuthMiddleware()))

		// Everything else requires an active account
		authed := api.Group("", auth.AuthMiddleware(), auth.RequireActive(db))

		groupsHandler := groups.NewHandler(db)
		groupsGroup := authed.Group("/groups")
		groupsHandler.RegisterRoutes(groupsGroup)
		groupsHandler.RegisterMemberRoutes(groupsGroup)

		invitesHandler := invites.NewHandler(db)
		invitesHandler.RegisterGroupRoutes(groupsGroup)
		invitesHandler.RegisterRoutes(authed.Group("/invites"))

		tasksHandler := tasks.NewHandler(db)
		tasksHandler.RegisterGroupRoutes(groupsGroup)
		tasksHandler.RegisterRoutes(authed)
	}

	slog.Info("Starting TaskHive server", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
