package handlers

import (
	"net/http"

	"projectflow-backend/core-service/middleware"
	"projectflow-backend/core-service/services"
	"projectflow-backend/shared/database"
	"projectflow-backend/shared/database/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateRoleRequest represents request body for creating a custom role
type CreateRoleRequest struct {
	OrganizationID uuid.UUID            `json:"organization_id" binding:"required"`
	Name           string               `json:"name" binding:"required"`
	Description    string               `json:"description"`
	Permissions    models.PermissionSet `json:"permissions"`
}

// UpdateRoleRequest represents request body for updating a role
type UpdateRoleRequest struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Permissions models.PermissionSet `json:"permissions"`
}

// AssignRoleRequest represents request body for assigning a role to a user
type AssignRoleRequest struct {
	RoleID uuid.UUID `json:"role_id" binding:"required"`
}

// SetPermissionsRequest represents request body for per-user permission overrides
type SetPermissionsRequest struct {
	Permissions models.PermissionSet `json:"permissions"`
}

// CreateRole creates a custom role
// @Summary Create role
// @Description Create a custom role; the permission set is validated and checked against the escalation guard
// @Tags roles
// @Accept json
// @Produce json
// @Param request body handlers.CreateRoleRequest true "Role details"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 409 {object} map[string]string "Conflict"
// @Router /roles [post]
func CreateRole(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	role, err := services.CreateRole(database.DB, actor, services.CreateRoleInput{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Description:    req.Description,
		Permissions:    req.Permissions,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    role,
	})
}

// GetRoles lists the roles of an organization
// @Summary List roles
// @Tags roles
// @Produce json
// @Param organization_id query string true "Organization ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /roles [get]
func GetRoles(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	orgID, err := uuid.Parse(c.Query("organization_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid organization_id format"})
		return
	}

	roles, err := services.ListRoles(database.DB, actor, orgID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    roles,
	})
}

// UpdateRole updates a role
// @Summary Update role
// @Description Update a role; default role names are immutable
// @Tags roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID" format(uuid)
// @Param request body handlers.UpdateRoleRequest true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 409 {object} map[string]string "Conflict"
// @Router /roles/{id} [put]
func UpdateRole(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	roleID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	role, err := services.UpdateRole(database.DB, actor, roleID, services.UpdateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    role,
	})
}

// AssignUserRole assigns a role to a user
// @Summary Assign role to user
// @Tags roles
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Param request body handlers.AssignRoleRequest true "Role to assign"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 409 {object} map[string]string "Conflict"
// @Router /users/{id}/role [put]
func AssignUserRole(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	user, err := services.AssignUserRole(database.DB, actor, userID, req.RoleID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    userResponse(user),
	})
}

// RemoveUserRole clears a user's role
// @Summary Remove role from user
// @Tags roles
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /users/{id}/role [delete]
func RemoveUserRole(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	user, err := services.RemoveUserRole(database.DB, actor, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    userResponse(user),
	})
}

// SetUserPermissions replaces a user's permission overrides
// @Summary Set user permission overrides
// @Description Replace a user's per-user overrides; entries shadow role grants, including denials
// @Tags roles
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Param request body handlers.SetPermissionsRequest true "Permission overrides"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 409 {object} map[string]string "Conflict"
// @Router /users/{id}/permissions [put]
func SetUserPermissions(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req SetPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	user, err := services.SetUserPermissions(database.DB, actor, userID, req.Permissions)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    userResponse(user),
	})
}
