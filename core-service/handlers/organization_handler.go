package handlers

import (
	"net/http"

	"projectflow-backend/core-service/middleware"
	"projectflow-backend/core-service/services"
	"projectflow-backend/shared/database"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateOrganizationRequest represents request body for creating an organization with its owner
type CreateOrganizationRequest struct {
	Name         string `json:"name" binding:"required"`
	Slug         string `json:"slug"`
	ContactEmail string `json:"contact_email"`

	OwnerEmail     string `json:"owner_email" binding:"required"`
	OwnerUsername  string `json:"owner_username" binding:"required"`
	OwnerPassword  string `json:"owner_password" binding:"required"`
	OwnerFirstName string `json:"owner_first_name"`
	OwnerLastName  string `json:"owner_last_name"`
}

// UpdateOrganizationRequest represents request body for updating an organization
type UpdateOrganizationRequest struct {
	Name         *string    `json:"name"`
	ContactEmail *string    `json:"contact_email"`
	OwnerID      *uuid.UUID `json:"owner_id"`
}

// CreateOrganization creates an organization together with its owner account
// @Summary Create organization
// @Description Create an organization with its owner user, seed the default roles and issue the owner's token
// @Tags organizations
// @Accept json
// @Produce json
// @Param request body handlers.CreateOrganizationRequest true "Organization and owner details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 409 {object} map[string]string "Conflict"
// @Router /organizations [post]
func CreateOrganization(c *gin.Context) {
	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := services.CreateOrganization(database.DB, services.CreateOrganizationInput{
		Name:           req.Name,
		Slug:           req.Slug,
		ContactEmail:   req.ContactEmail,
		OwnerEmail:     req.OwnerEmail,
		OwnerUsername:  req.OwnerUsername,
		OwnerPassword:  req.OwnerPassword,
		OwnerFirstName: req.OwnerFirstName,
		OwnerLastName:  req.OwnerLastName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"organization": result.Organization,
			"owner":        userResponse(&result.Owner),
			"token":        result.Token,
		},
	})
}

// GetOrganizations lists the organizations visible to the caller
// @Summary List organizations
// @Description List the caller's organization, or all organizations for superusers
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /organizations [get]
func GetOrganizations(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	orgs, err := services.ListOrganizations(database.DB, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orgs,
	})
}

// GetOrganizationBySlug retrieves an organization by slug
// @Summary Get organization by slug
// @Tags organizations
// @Produce json
// @Param slug path string true "Organization slug"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Organization not found"
// @Router /organizations/{slug} [get]
func GetOrganizationBySlug(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	org, err := services.GetOrganizationBySlug(database.DB, actor, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    org,
	})
}

// UpdateOrganization updates an organization
// @Summary Update organization
// @Description Update organization fields; only the owner or a superuser may do this
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Param request body handlers.UpdateOrganizationRequest true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 409 {object} map[string]string "Conflict"
// @Router /organizations/{id} [put]
func UpdateOrganization(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	orgID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	org, err := services.UpdateOrganization(database.DB, actor, orgID, services.UpdateOrganizationInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		OwnerID:      req.OwnerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    org,
	})
}
