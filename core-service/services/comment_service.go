package services

import (
	"strings"

	"projectflow-backend/shared/apperrors"
	"projectflow-backend/shared/database/models"
	"projectflow-backend/shared/permissions"
	"projectflow-backend/shared/realtime"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateComment adds a comment to a task. Requires the comment_task
// permission and tenancy. Publishes a "comment" event carrying the
// comment on success.
func CreateComment(db *gorm.DB, actor *models.User, taskID uuid.UUID, content string) (*models.TaskComment, error) {
	if !permissions.HasPermission(actor, permissions.CommentTask) {
		return nil, apperrors.PermissionDenied("you don't have permission to comment on tasks")
	}

	task, err := taskForWrite(db, actor, taskID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(content) == "" {
		return nil, apperrors.ValidationConflict("comment content cannot be empty")
	}

	comment := models.TaskComment{
		TaskID:   task.ID,
		Content:  content,
		AuthorID: actor.ID,
	}
	if err := db.Create(&comment).Error; err != nil {
		return nil, err
	}
	comment.Author = actor

	broadcastTask(db, task.ID, realtime.ActionComment, &comment)
	return &comment, nil
}

// ListComments returns the comments of a task in creation order, empty
// when the caller is outside the tenancy boundary.
func ListComments(db *gorm.DB, actor *models.User, taskID uuid.UUID) ([]models.TaskComment, error) {
	task, err := findTask(db, taskID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return []models.TaskComment{}, nil
		}
		return nil, err
	}
	if !actorInOrg(actor, task.Project.OrganizationID) {
		return []models.TaskComment{}, nil
	}

	var comments []models.TaskComment
	err = db.Preload("Author").
		Where("task_id = ?", task.ID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
