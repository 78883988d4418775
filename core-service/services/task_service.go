package services

import (
	"time"

	"projectflow-backend/shared/apperrors"
	"projectflow-backend/shared/database/models"
	"projectflow-backend/shared/permissions"
	"projectflow-backend/shared/realtime"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTaskInput carries the fields of a new task.
type CreateTaskInput struct {
	ProjectID   uuid.UUID
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
	AssigneeIDs []uuid.UUID
}

// CreateTask creates a task under a project. Requires the create_task
// permission and tenancy on the project; assignees must belong to the
// project's organization. Publishes a "create" event on success.
func CreateTask(db *gorm.DB, actor *models.User, input CreateTaskInput) (*models.Task, error) {
	if !permissions.HasPermission(actor, permissions.CreateTask) {
		return nil, apperrors.PermissionDenied("you don't have permission to create tasks")
	}

	project, err := projectForWrite(db, actor, input.ProjectID)
	if err != nil {
		return nil, err
	}

	if input.Status != "" && !models.ValidTaskStatus(input.Status) {
		return nil, apperrors.ValidationConflict("invalid task status: %s", input.Status)
	}
	if input.Priority != "" && !models.ValidTaskPriority(input.Priority) {
		return nil, apperrors.ValidationConflict("invalid task priority: %s", input.Priority)
	}

	assignees, err := resolveAssignees(db, project.OrganizationID, input.AssigneeIDs)
	if err != nil {
		return nil, err
	}

	task := models.Task{
		ProjectID:   project.ID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		CreatedByID: &actor.ID,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		if len(assignees) > 0 {
			return tx.Model(&task).Association("Assignees").Replace(assignees)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	broadcastTask(db, task.ID, realtime.ActionCreate, nil)
	return &task, nil
}

// UpdateTaskInput carries partial-update fields; nil fields are left
// untouched. A non-nil AssigneeIDs replaces the assignee list.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	AssigneeIDs []uuid.UUID
}

// UpdateTask applies non-nil fields to a task. Requires the edit_task
// permission and tenancy. Publishes an "update" event on success.
func UpdateTask(db *gorm.DB, actor *models.User, taskID uuid.UUID, input UpdateTaskInput) (*models.Task, error) {
	if !permissions.HasPermission(actor, permissions.EditTask) {
		return nil, apperrors.PermissionDenied("you don't have permission to update tasks")
	}

	task, err := taskForWrite(db, actor, taskID)
	if err != nil {
		return nil, err
	}

	if input.Status != nil && !models.ValidTaskStatus(*input.Status) {
		return nil, apperrors.ValidationConflict("invalid task status: %s", *input.Status)
	}
	if input.Priority != nil && !models.ValidTaskPriority(*input.Priority) {
		return nil, apperrors.ValidationConflict("invalid task priority: %s", *input.Priority)
	}

	var assignees []models.User
	if input.AssigneeIDs != nil {
		assignees, err = resolveAssignees(db, task.Project.OrganizationID, input.AssigneeIDs)
		if err != nil {
			return nil, err
		}
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}
		if input.AssigneeIDs != nil {
			return tx.Model(task).Association("Assignees").Replace(assignees)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	broadcastTask(db, task.ID, realtime.ActionUpdate, nil)
	return task, nil
}

// AssignTask replaces the assignee list of a task. Requires the
// assign_task permission and tenancy. Publishes an "assign" event on
// success.
func AssignTask(db *gorm.DB, actor *models.User, taskID uuid.UUID, assigneeIDs []uuid.UUID) (*models.Task, error) {
	if !permissions.HasPermission(actor, permissions.AssignTask) {
		return nil, apperrors.PermissionDenied("you don't have permission to assign tasks")
	}

	task, err := taskForWrite(db, actor, taskID)
	if err != nil {
		return nil, err
	}

	assignees, err := resolveAssignees(db, task.Project.OrganizationID, assigneeIDs)
	if err != nil {
		return nil, err
	}

	if err := db.Model(task).Association("Assignees").Replace(assignees); err != nil {
		return nil, err
	}

	broadcastTask(db, task.ID, realtime.ActionAssign, nil)
	return task, nil
}

// DeleteTask removes a task and its comments. Requires the delete_task
// permission and tenancy.
func DeleteTask(db *gorm.DB, actor *models.User, taskID uuid.UUID) error {
	if !permissions.HasPermission(actor, permissions.DeleteTask) {
		return apperrors.PermissionDenied("you don't have permission to delete tasks")
	}

	task, err := taskForWrite(db, actor, taskID)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskAttachment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM task_assignees WHERE task_id = ?", task.ID).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
}

// ListTasks returns the tasks of a project, empty when the caller is
// outside the tenancy boundary.
func ListTasks(db *gorm.DB, actor *models.User, projectID uuid.UUID) ([]models.Task, error) {
	project, err := findProject(db, projectID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return []models.Task{}, nil
		}
		return nil, err
	}
	if !actorInOrg(actor, project.OrganizationID) {
		return []models.Task{}, nil
	}

	var tasks []models.Task
	err = db.Preload("Assignees").
		Where("project_id = ?", project.ID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask resolves a task within the caller's tenancy boundary, with
// assignees and comments loaded.
func GetTask(db *gorm.DB, actor *models.User, taskID uuid.UUID) (*models.Task, error) {
	task, err := taskForRead(db, actor, taskID)
	if err != nil {
		return nil, err
	}

	err = db.Preload("Assignees").
		Preload("Comments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC")
		}).
		Preload("Comments.Author").
		First(task, "id = ?", task.ID).Error
	if err != nil {
		return nil, err
	}
	return task, nil
}

// resolveAssignees loads the given users and verifies each belongs to the
// task's organization. Cross-organization assignment is rejected
// regardless of caller privilege.
func resolveAssignees(db *gorm.DB, orgID uuid.UUID, assigneeIDs []uuid.UUID) ([]models.User, error) {
	if len(assigneeIDs) == 0 {
		return nil, nil
	}

	var assignees []models.User
	if err := db.Where("id IN ?", assigneeIDs).Find(&assignees).Error; err != nil {
		return nil, err
	}
	if len(assignees) != len(assigneeIDs) {
		return nil, apperrors.NotFound("one or more assignee users not found")
	}

	for i := range assignees {
		if !assignees[i].InOrganization(orgID) {
			return nil, apperrors.ValidationConflict("cannot assign task to user %s from different organization", assignees[i].Email)
		}
	}
	return assignees, nil
}
