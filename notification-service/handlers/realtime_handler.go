package handlers

import (
	"net/http"

	"projectflow-backend/notification-service/services"
	"projectflow-backend/shared/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Relay is wired by main before the routes go live.
var Relay *services.Relay

// PublishEvent accepts an event from the core service and fans it out
// @Summary Publish realtime event
// @Description Deliver a task event to every subscriber of its topic
// @Tags realtime
// @Accept json
// @Produce json
// @Param payload body realtime.PublishRequest true "Topic and event"
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H
// @Router /realtime/publish [post]
func PublishEvent(c *gin.Context) {
	var req realtime.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if req.Topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Topic is required"})
		return
	}

	Relay.Distribute(req.Topic, req.Event)

	c.JSON(http.StatusOK, gin.H{
		"message": "Event published successfully",
		"topic":   req.Topic,
	})
}

// SubscribeProjectTasks streams all task events of a project
// @Summary Subscribe to project task events
// @Description Establish a WebSocket subscription to every task event of a project
// @Tags realtime
// @Param project_id path string true "Project ID"
// @Router /ws/tasks/{project_id} [get]
func SubscribeProjectTasks(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project_id format"})
		return
	}

	hub := services.GetTopicHub()
	hub.HandleSubscription(c, realtime.TaskProjectTopic(projectID))
}

// SubscribeTaskComments streams the comment events of a single task
// @Summary Subscribe to task comment events
// @Description Establish a WebSocket subscription to the comment events of one task
// @Tags realtime
// @Param task_id path string true "Task ID"
// @Router /ws/comments/{task_id} [get]
func SubscribeTaskComments(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task_id format"})
		return
	}

	hub := services.GetTopicHub()
	hub.HandleSubscription(c, realtime.TaskTopic(taskID))
}

// GetStats reports live hub statistics
// @Summary Hub statistics
// @Tags realtime
// @Produce json
// @Success 200 {object} gin.H
// @Router /realtime/stats [get]
func GetStats(c *gin.Context) {
	hub := services.GetTopicHub()
	c.JSON(http.StatusOK, gin.H{
		"topics": hub.TopicCount(),
	})
}
