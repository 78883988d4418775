package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"projectflow-backend/notification-service/handlers"
	"projectflow-backend/notification-service/services"
	"projectflow-backend/shared/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Cross-instance relay; feeds the local hub
	relay := services.NewRelay()
	handlers.Relay = relay
	go relay.Listen(context.Background())

	router := gin.Default()
	router.Use(cors.Default())

	// Publish endpoint used by the core service
	router.POST("/api/realtime/publish", handlers.PublishEvent)
	router.GET("/api/realtime/stats", handlers.GetStats)

	// WebSocket subscriptions
	router.GET("/ws/tasks/:project_id", handlers.SubscribeProjectTasks)
	router.GET("/ws/comments/:task_id", handlers.SubscribeTaskComments)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "notification",
		})
	})

	// Parse port from config URL
	port := strings.Split(config.GetConfig().NotificationServiceURL, ":")[2]
	log.Printf("Notification Service starting on port %s...", port)
	router.Run(":" + port)
}
