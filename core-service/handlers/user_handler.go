package handlers

import (
	"net/http"

	"projectflow-backend/core-service/middleware"
	"projectflow-backend/core-service/services"
	"projectflow-backend/shared/database"
	"projectflow-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
)

// GetUsers lists the users of the caller's organization
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param search query string false "Search in email, username and names"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /users [get]
func GetUsers(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	params := query.ParseQueryParams(c)

	users, pagination, err := services.ListUsers(database.DB, actor, params)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, userResponse(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       responses,
		"pagination": pagination,
	})
}

// GetMe returns the caller's profile and effective permissions
// @Summary Get current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /users/me [get]
func GetMe(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user":        userResponse(actor),
			"permissions": services.EffectivePermissions(actor),
		},
	})
}

// GetUserPermissions returns a user's resolved permission table
// @Summary Get user effective permissions
// @Tags users
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/{id}/permissions [get]
func GetUserPermissions(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	target, err := services.GetActor(database.DB, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Cross-organization lookups read as missing.
	if !actor.IsSuperuser && !actor.SameOrganization(target) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user":        userResponse(target),
			"permissions": services.EffectivePermissions(target),
		},
	})
}
