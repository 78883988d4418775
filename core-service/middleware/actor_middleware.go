package middleware

import (
	"strings"

	"projectflow-backend/core-service/services"
	"projectflow-backend/shared/database"
	"projectflow-backend/shared/database/models"
	utils "projectflow-backend/shared/utils/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActorMiddleware validates the JWT and loads the caller with their
// organization and role so every handler receives an explicit identity.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(401, gin.H{"error": "Invalid authorization format. Expected Bearer {token}"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(tokenParts[1])
		if err != nil {
			c.JSON(401, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(401, gin.H{"error": "Invalid user ID in token"})
			c.Abort()
			return
		}

		actor, err := services.GetActor(database.DB, userID)
		if err != nil {
			c.JSON(401, gin.H{"error": "User no longer exists"})
			c.Abort()
			return
		}

		c.Set("actor", actor)
		c.Next()
	}
}

// CurrentActor returns the caller loaded by ActorMiddleware.
func CurrentActor(c *gin.Context) *models.User {
	return c.MustGet("actor").(*models.User)
}
