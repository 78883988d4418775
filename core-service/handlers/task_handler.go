package handlers

import (
	"net/http"
	"time"

	"projectflow-backend/core-service/middleware"
	"projectflow-backend/core-service/services"
	"projectflow-backend/shared/database"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateTaskRequest represents request body for creating a task
type CreateTaskRequest struct {
	ProjectID   uuid.UUID   `json:"project_id" binding:"required"`
	Title       string      `json:"title" binding:"required"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority"`
	DueDate     *time.Time  `json:"due_date"`
	AssigneeIDs []uuid.UUID `json:"assignee_ids"`
}

// UpdateTaskRequest represents request body for updating a task
type UpdateTaskRequest struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Status      *string     `json:"status"`
	Priority    *string     `json:"priority"`
	DueDate     *time.Time  `json:"due_date"`
	AssigneeIDs []uuid.UUID `json:"assignee_ids"`
}

// AssignTaskRequest represents request body for replacing task assignees
type AssignTaskRequest struct {
	AssigneeIDs []uuid.UUID `json:"assignee_ids"`
}

// CreateTask creates a task
// @Summary Create task
// @Description Create a task under a project; assignees must belong to the project's organization
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body handlers.CreateTaskRequest true "Task details"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 409 {object} map[string]string "Conflict"
// @Router /tasks [post]
func CreateTask(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	task, err := services.CreateTask(database.DB, actor, services.CreateTaskInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		AssigneeIDs: req.AssigneeIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    task,
	})
}

// GetTasks lists the tasks of a project
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Param project_id query string true "Project ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /tasks [get]
func GetTasks(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	projectID, err := uuid.Parse(c.Query("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid project_id format"})
		return
	}

	tasks, err := services.ListTasks(database.DB, actor, projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tasks,
	})
}

// GetTask retrieves a single task with assignees and comments
// @Summary Get task by ID
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Task not found"
// @Router /tasks/{id} [get]
func GetTask(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	task, err := services.GetTask(database.DB, actor, taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    task,
	})
}

// UpdateTask updates a task
// @Summary Update task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID" format(uuid)
// @Param request body handlers.UpdateTaskRequest true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /tasks/{id} [put]
func UpdateTask(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	task, err := services.UpdateTask(database.DB, actor, taskID, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		AssigneeIDs: req.AssigneeIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    task,
	})
}

// AssignTask replaces the assignees of a task
// @Summary Assign task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID" format(uuid)
// @Param request body handlers.AssignTaskRequest true "Assignee user IDs"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 409 {object} map[string]string "Conflict"
// @Router /tasks/{id}/assign [post]
func AssignTask(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	task, err := services.AssignTask(database.DB, actor, taskID, req.AssigneeIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    task,
	})
}

// DeleteTask deletes a task and its comments
// @Summary Delete task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /tasks/{id} [delete]
func DeleteTask(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := services.DeleteTask(database.DB, actor, taskID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task deleted successfully",
	})
}
