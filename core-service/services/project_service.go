package services

import (
	"time"

	"projectflow-backend/shared/apperrors"
	"projectflow-backend/shared/database/models"
	"projectflow-backend/shared/permissions"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateProjectInput carries the fields of a new project.
type CreateProjectInput struct {
	OrganizationSlug string
	Name             string
	Description      string
	Status           string
	DueDate          *time.Time
}

// CreateProject creates a project in the named organization. Requires the
// create_project permission and tenancy on the organization.
func CreateProject(db *gorm.DB, actor *models.User, input CreateProjectInput) (*models.Project, error) {
	if !permissions.HasPermission(actor, permissions.CreateProject) {
		return nil, apperrors.PermissionDenied("you don't have permission to create projects")
	}

	var org models.Organization
	if err := db.Where("slug = ?", input.OrganizationSlug).First(&org).Error; err != nil {
		return nil, apperrors.NotFound("organization not found")
	}
	if !actorInOrg(actor, org.ID) {
		return nil, apperrors.PermissionDenied("you don't have permission to create projects in this organization")
	}

	if input.Status != "" && !models.ValidProjectStatus(input.Status) {
		return nil, apperrors.ValidationConflict("invalid project status: %s", input.Status)
	}

	project := models.Project{
		OrganizationID: org.ID,
		Name:           input.Name,
		Description:    input.Description,
		Status:         input.Status,
		DueDate:        input.DueDate,
		CreatedByID:    &actor.ID,
	}
	if err := db.Create(&project).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// UpdateProjectInput carries partial-update fields; nil fields are left
// untouched.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *string
	DueDate     *time.Time
}

// UpdateProject applies non-nil fields to a project. Requires the
// edit_project permission and tenancy.
func UpdateProject(db *gorm.DB, actor *models.User, projectID uuid.UUID, input UpdateProjectInput) (*models.Project, error) {
	if !permissions.HasPermission(actor, permissions.EditProject) {
		return nil, apperrors.PermissionDenied("you don't have permission to update projects")
	}

	project, err := projectForWrite(db, actor, projectID)
	if err != nil {
		return nil, err
	}

	if input.Status != nil && !models.ValidProjectStatus(*input.Status) {
		return nil, apperrors.ValidationConflict("invalid project status: %s", *input.Status)
	}

	if input.Name != nil {
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		project.Status = *input.Status
	}
	if input.DueDate != nil {
		project.DueDate = input.DueDate
	}

	if err := db.Save(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes a project and everything it owns. Requires the
// delete_project permission and tenancy.
func DeleteProject(db *gorm.DB, actor *models.User, projectID uuid.UUID) error {
	if !permissions.HasPermission(actor, permissions.DeleteProject) {
		return apperrors.PermissionDenied("you don't have permission to delete projects")
	}

	project, err := projectForWrite(db, actor, projectID)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uuid.UUID
		if err := tx.Model(&models.Task{}).Where("project_id = ?", project.ID).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskComment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskAttachment{}).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM task_assignees WHERE task_id IN ?", taskIDs).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(project).Error
	})
}

// ListProjects returns the projects of an organization, empty when the
// caller is outside the tenancy boundary.
func ListProjects(db *gorm.DB, actor *models.User, organizationSlug string) ([]models.Project, error) {
	var org models.Organization
	if err := db.Where("slug = ?", organizationSlug).First(&org).Error; err != nil {
		return []models.Project{}, nil
	}
	if !actorInOrg(actor, org.ID) {
		return []models.Project{}, nil
	}

	var projects []models.Project
	err := db.Where("organization_id = ?", org.ID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject resolves a project within the caller's tenancy boundary.
func GetProject(db *gorm.DB, actor *models.User, projectID uuid.UUID) (*models.Project, error) {
	return projectForRead(db, actor, projectID)
}

// ProjectStats summarizes the task counts of a project.
type ProjectStats struct {
	TotalTasks      int64   `json:"total_tasks"`
	CompletedTasks  int64   `json:"completed_tasks"`
	InProgressTasks int64   `json:"in_progress_tasks"`
	TodoTasks       int64   `json:"todo_tasks"`
	CompletionRate  float64 `json:"completion_rate"`
}

// GetProjectStats computes the task statistics of a project.
func GetProjectStats(db *gorm.DB, actor *models.User, projectID uuid.UUID) (*ProjectStats, error) {
	project, err := projectForRead(db, actor, projectID)
	if err != nil {
		return nil, err
	}

	stats := &ProjectStats{}
	count := func(dest *int64, conds ...interface{}) error {
		q := db.Model(&models.Task{}).Where("project_id = ?", project.ID)
		if len(conds) > 0 {
			q = q.Where(conds[0], conds[1:]...)
		}
		return q.Count(dest).Error
	}

	if err := count(&stats.TotalTasks); err != nil {
		return nil, err
	}
	if err := count(&stats.CompletedTasks, "status = ?", models.TaskStatusDone); err != nil {
		return nil, err
	}
	if err := count(&stats.InProgressTasks, "status = ?", models.TaskStatusInProgress); err != nil {
		return nil, err
	}
	if err := count(&stats.TodoTasks, "status = ?", models.TaskStatusTodo); err != nil {
		return nil, err
	}

	if stats.TotalTasks > 0 {
		stats.CompletionRate = float64(stats.CompletedTasks) / float64(stats.TotalTasks) * 100
	}
	return stats, nil
}
