package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/mixtape/pkg/mixtape/admin"
	"github.com/mikepea/mixtape/pkg/mixtape/auth"
	"github.com/mikepea/mixtape/pkg/mixtape/config"
	"github.com/mikepea/mixtape/pkg/mixtape/database"
	"github.com/mikepea/mixtape/pkg/mixtape/importexport"
	"github.com/mikepea/mixtape/pkg/mixtape/models"
	"github.com/mikepea/mixtape/pkg/mixtape/playlists"
	"github.com/mikepea/mixtape/pkg/mixtape/tags"
	"github.com/mikepea/mixtape/pkg/mixtape/tracks"
	"github.com/mikepea/mixtape/pkg/mixtape/users"
	"github.com/mikepea/mixtape/pkg/mixtape/votes"
	"github.com/sirupsen/logrus"
)

// @title Mixtape API
// @version 1.0
// @description A collaborative playlist service with shared track catalog, tag suggestions, and voting.

// @contact.name Mixtape Support
// @contact.url https://github.com/mikepea/mixtape

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token. Format: "Bearer {token}"

func main() {
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to parse config")
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	auth.Configure(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.JWTExpirationMinutes)*time.Minute)

	if err := database.Connect(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	if err := models.AutoMigrate(database.GetDB()); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}
	logrus.Info("Database migrations completed")

	// Create default admin user if no admin exists
	if err := ensureAdminExists(); err != nil {
		logrus.WithError(err).Fatal("Failed to ensure admin user exists")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	db := database.GetDB()

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"service": "mixtape",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(db)
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Browse routes: anonymous allowed, token honored when present.
		// Write handlers inside these packages gate through the authz
		// checks themselves.
		browse := api.Group("", auth.OptionalAuthMiddleware())
		playlists.NewHandler(db).RegisterRoutes(browse)
		tags.NewHandler(db).RegisterRoutes(browse)
		votes.NewHandler(db).RegisterRoutes(browse)
		tracks.NewHandler(db).RegisterRoutes(browse)

		// Routes that always need a signed-in user
		protected := api.Group("", auth.AuthMiddleware())
		users.NewHandler(db).RegisterRoutes(protected)
		importexport.NewHandler(db).RegisterRoutes(protected)

		// Admin routes (admin role required)
		adminGroup := api.Group("/admin")
		adminGroup.Use(auth.AuthMiddleware(), auth.RequireAdmin())
		admin.NewHandler(db).RegisterRoutes(adminGroup)
	}

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	logrus.WithField("host", serverHost).Info("Starting mixtape server")

	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Fatal("Server failed")
	}
}

// CORSMiddleware sets permissive CORS headers for browser clients
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggingMiddleware logs each request as a structured record
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  duration.String(),
			"size":      c.Writer.Size(),
			"client_ip": c.ClientIP(),
		}).Info("http_request")
	}
}

// ensureAdminExists creates a default admin user if no admin exists in
// the database, so a fresh install is never locked out.
func ensureAdminExists() error {
	db := database.GetDB()

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := auth.HashPassword("changeme")
	if err != nil {
		return err
	}

	adminUser := models.User{
		Email:        "admin@mixtape.local",
		Username:     "admin",
		PasswordHash: hashedPassword,
		Role:         models.RoleAdmin,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	logrus.WithField("email", adminUser.Email).Warn("Created default admin user (password: changeme)")
	return nil
}
