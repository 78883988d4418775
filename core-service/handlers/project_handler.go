package handlers

import (
	"net/http"
	"time"

	"projectflow-backend/core-service/middleware"
	"projectflow-backend/core-service/services"
	"projectflow-backend/shared/database"

	"github.com/gin-gonic/gin"
)

// CreateProjectRequest represents request body for creating a project
type CreateProjectRequest struct {
	OrganizationSlug string     `json:"organization_slug" binding:"required"`
	Name             string     `json:"name" binding:"required"`
	Description      string     `json:"description"`
	Status           string     `json:"status"`
	DueDate          *time.Time `json:"due_date"`
}

// UpdateProjectRequest represents request body for updating a project
type UpdateProjectRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

// CreateProject creates a project
// @Summary Create project
// @Tags projects
// @Accept json
// @Produce json
// @Param request body handlers.CreateProjectRequest true "Project details"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 404 {object} map[string]string "Organization not found"
// @Router /projects [post]
func CreateProject(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	project, err := services.CreateProject(database.DB, actor, services.CreateProjectInput{
		OrganizationSlug: req.OrganizationSlug,
		Name:             req.Name,
		Description:      req.Description,
		Status:           req.Status,
		DueDate:          req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    project,
	})
}

// GetProjects lists the projects of an organization
// @Summary List projects
// @Tags projects
// @Produce json
// @Param slug query string true "Organization slug"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /projects [get]
func GetProjects(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	projects, err := services.ListProjects(database.DB, actor, c.Query("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    projects,
	})
}

// GetProject retrieves a single project
// @Summary Get project by ID
// @Tags projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Project not found"
// @Router /projects/{id} [get]
func GetProject(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	projectID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	project, err := services.GetProject(database.DB, actor, projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    project,
	})
}

// GetProjectStats returns task statistics of a project
// @Summary Get project statistics
// @Tags projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Project not found"
// @Router /projects/{id}/stats [get]
func GetProjectStats(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	projectID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	stats, err := services.GetProjectStats(database.DB, actor, projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// UpdateProject updates a project
// @Summary Update project
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body handlers.UpdateProjectRequest true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /projects/{id} [put]
func UpdateProject(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	projectID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	project, err := services.UpdateProject(database.DB, actor, projectID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    project,
	})
}

// DeleteProject deletes a project and everything under it
// @Summary Delete project
// @Tags projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /projects/{id} [delete]
func DeleteProject(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	projectID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := services.DeleteProject(database.DB, actor, projectID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Project deleted successfully",
	})
}
