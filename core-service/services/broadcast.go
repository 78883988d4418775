package services

import (
	"time"

	"projectflow-backend/shared/database/models"
	"projectflow-backend/shared/realtime"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// publisher delivers post-mutation events to the real-time transport.
// Replaced at boot with the HTTP publisher; nil disables broadcasting.
var publisher realtime.Publisher

// SetPublisher installs the real-time publisher used by task and comment
// mutations.
func SetPublisher(p realtime.Publisher) {
	publisher = p
}

// broadcastTask publishes a normalized snapshot of the full task to the
// owning project's topic. It runs after the mutation committed; failures
// never reach the caller.
func broadcastTask(db *gorm.DB, taskID uuid.UUID, action string, comment *models.TaskComment) {
	if publisher == nil {
		return
	}

	snapshot, projectID, err := buildTaskSnapshot(db, taskID)
	if err != nil {
		return
	}

	event := realtime.Event{
		Action: action,
		Task:   snapshot,
	}
	if comment != nil {
		cs := commentSnapshot(*comment)
		event.Comment = &cs
	}

	realtime.Dispatch(publisher, realtime.TaskProjectTopic(projectID), event)
}

// buildTaskSnapshot loads the task with assignees and comments (authors
// included, timestamps ascending) and normalizes it for broadcast.
func buildTaskSnapshot(db *gorm.DB, taskID uuid.UUID) (realtime.TaskSnapshot, uuid.UUID, error) {
	var task models.Task
	err := db.
		Preload("Assignees").
		Preload("Comments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC")
		}).
		Preload("Comments.Author").
		First(&task, "id = ?", taskID).Error
	if err != nil {
		return realtime.TaskSnapshot{}, uuid.Nil, err
	}

	snapshot := realtime.TaskSnapshot{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		Assignees:   make([]realtime.UserRef, 0, len(task.Assignees)),
		Comments:    make([]realtime.CommentSnapshot, 0, len(task.Comments)),
	}
	if task.DueDate != nil {
		due := task.DueDate.Format(time.RFC3339)
		snapshot.DueDate = &due
	}
	for _, a := range task.Assignees {
		snapshot.Assignees = append(snapshot.Assignees, userRef(&a))
	}
	for _, c := range task.Comments {
		snapshot.Comments = append(snapshot.Comments, commentSnapshot(c))
	}

	return snapshot, task.ProjectID, nil
}

func userRef(u *models.User) realtime.UserRef {
	return realtime.UserRef{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
	}
}

func commentSnapshot(c models.TaskComment) realtime.CommentSnapshot {
	snapshot := realtime.CommentSnapshot{
		ID:        c.ID,
		Content:   c.Content,
		Timestamp: c.CreatedAt.Format(time.RFC3339),
	}
	if c.Author != nil {
		snapshot.Author = userRef(c.Author)
	}
	return snapshot
}
