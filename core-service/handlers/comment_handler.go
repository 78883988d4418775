package handlers

import (
	"net/http"

	"projectflow-backend/core-service/middleware"
	"projectflow-backend/core-service/services"
	"projectflow-backend/shared/database"

	"github.com/gin-gonic/gin"
)

// CreateCommentRequest represents request body for commenting on a task
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreateComment adds a comment to a task
// @Summary Comment on task
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Task ID" format(uuid)
// @Param request body handlers.CreateCommentRequest true "Comment content"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /tasks/{id}/comments [post]
func CreateComment(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	comment, err := services.CreateComment(database.DB, actor, taskID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    comment,
	})
}

// GetComments lists the comments of a task in creation order
// @Summary List task comments
// @Tags comments
// @Produce json
// @Param id path string true "Task ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /tasks/{id}/comments [get]
func GetComments(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	comments, err := services.ListComments(database.DB, actor, taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    comments,
	})
}
