package main

import (
	"log"
	"net/http"
	"strings"

	"projectflow-backend/core-service/handlers"
	"projectflow-backend/core-service/middleware"
	"projectflow-backend/core-service/services"
	"projectflow-backend/shared/config"
	"projectflow-backend/shared/database"
	"projectflow-backend/shared/realtime"

	_ "projectflow-backend/docs/swagger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title ProjectFlow API
// @version 1.0
// @description Multi-tenant project management backend
// @host localhost:8002
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	config.LoadConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Task events go to the notification service after commit
	services.SetPublisher(realtime.NewHTTPPublisher())

	// Attachment storage
	if err := services.InitStorage(); err != nil {
		log.Printf("⚠️ Attachment storage unavailable: %v", err)
	}

	router := gin.Default()
	router.Use(cors.Default())

	// Organization creation doubles as owner signup, no token yet
	router.POST("/api/organizations", handlers.CreateOrganization)

	api := router.Group("/api", middleware.ActorMiddleware())

	// Organization routes
	api.GET("/organizations", handlers.GetOrganizations)
	api.GET("/organizations/by-slug/:slug", handlers.GetOrganizationBySlug)
	api.PUT("/organizations/:id", handlers.UpdateOrganization)

	// Project routes
	api.GET("/projects", handlers.GetProjects)
	api.POST("/projects", handlers.CreateProject)
	api.GET("/projects/:id", handlers.GetProject)
	api.PUT("/projects/:id", handlers.UpdateProject)
	api.DELETE("/projects/:id", handlers.DeleteProject)
	api.GET("/projects/:id/stats", handlers.GetProjectStats)

	// Task routes
	api.GET("/tasks", handlers.GetTasks)
	api.POST("/tasks", handlers.CreateTask)
	api.GET("/tasks/:id", handlers.GetTask)
	api.PUT("/tasks/:id", handlers.UpdateTask)
	api.DELETE("/tasks/:id", handlers.DeleteTask)
	api.POST("/tasks/:id/assign", handlers.AssignTask)
	api.GET("/tasks/:id/comments", handlers.GetComments)
	api.POST("/tasks/:id/comments", handlers.CreateComment)
	api.GET("/tasks/:id/attachments", handlers.GetAttachments)
	api.POST("/tasks/:id/attachments", handlers.UploadAttachment)
	api.GET("/attachments/:id/download", handlers.DownloadAttachment)
	api.DELETE("/attachments/:id", handlers.DeleteAttachment)

	// Role routes
	api.GET("/roles", handlers.GetRoles)
	api.POST("/roles", handlers.CreateRole)
	api.PUT("/roles/:id", handlers.UpdateRole)

	// User routes
	api.GET("/users", handlers.GetUsers)
	api.GET("/users/me", handlers.GetMe)
	api.GET("/users/:id/permissions", handlers.GetUserPermissions)
	api.PUT("/users/:id/permissions", handlers.SetUserPermissions)
	api.PUT("/users/:id/role", handlers.AssignUserRole)
	api.DELETE("/users/:id/role", handlers.RemoveUserRole)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "core",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Parse port from config URL
	port := strings.Split(config.GetConfig().CoreServiceURL, ":")[2]
	log.Printf("Core Service starting on port %s...", port)
	router.Run(":" + port)
}
