package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"projectflow-backend/auth-service/handlers"
	"projectflow-backend/auth-service/middleware"
	"projectflow-backend/shared/config"
	"projectflow-backend/shared/database"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Seed the platform superuser
	if err := database.SeedDatabase(); err != nil {
		log.Printf("⚠️ Seeding failed: %v", err)
	}

	rateLimiter := middleware.NewRateLimiter(5 * time.Minute) // Cleanup every 5 minutes
	authHandler := handlers.NewAuthHandler(database.DB)

	router := gin.Default()
	router.Use(cors.Default())

	// Auth routes
	router.POST("/api/auth/login",
		rateLimiter.LoginRateLimitMiddleware(middleware.LoginRateLimitConfig()),
		authHandler.Login)
	router.POST("/api/auth/register",
		rateLimiter.RegistrationRateLimitMiddleware(middleware.RegisterRateLimitConfig()),
		authHandler.Register)
	router.POST("/api/auth/validate", authHandler.Validate)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "auth",
		})
	})

	// Parse port from config URL
	port := strings.Split(config.GetConfig().AuthServiceURL, ":")[2]
	log.Printf("Auth Service starting on port %s...", port)
	router.Run(":" + port)
}
