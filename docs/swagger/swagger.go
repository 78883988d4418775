// Package swagger ProjectFlow API documentation
package swagger

// Swagger documentation info
// @title ProjectFlow API
// @version 1.0
// @description Central API documentation - For all ProjectFlow services

// @host localhost:8002
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

// Auth Service Endpoints
// @tag.name auth
// @tag.description Authentication and registration

// Core Service Endpoints
// @tag.name organizations
// @tag.description Organization management
// @tag.name projects
// @tag.description Project management
// @tag.name tasks
// @tag.description Task management
// @tag.name comments
// @tag.description Task comments
// @tag.name roles
// @tag.description Role and permission management
// @tag.name users
// @tag.description User management
// @tag.name attachments
// @tag.description Task attachments

// Notification Service Endpoints
// @tag.name realtime
// @tag.description Realtime event fan-out
