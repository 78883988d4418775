package services

import (
	"errors"

	"projectflow-backend/shared/apperrors"
	"projectflow-backend/shared/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenancy boundary: every read or mutation that targets a project, task,
// comment or role is scoped to the caller's organization unless the caller
// is a superuser. Reads outside the boundary surface NotFound so cross-org
// probes cannot distinguish existence; mutations surface PermissionDenied.

// actorInOrg reports whether actor may touch entities of orgID.
func actorInOrg(actor *models.User, orgID uuid.UUID) bool {
	return actor.IsSuperuser || actor.InOrganization(orgID)
}

// findProject loads a project or reports NotFound.
func findProject(db *gorm.DB, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := db.First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("project not found")
		}
		return nil, err
	}
	return &project, nil
}

// findTask loads a task with its project or reports NotFound.
func findTask(db *gorm.DB, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := db.Preload("Project").First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("task not found")
		}
		return nil, err
	}
	return &task, nil
}

// projectForRead resolves a project within the caller's tenancy boundary.
func projectForRead(db *gorm.DB, actor *models.User, id uuid.UUID) (*models.Project, error) {
	project, err := findProject(db, id)
	if err != nil {
		return nil, err
	}
	if !actorInOrg(actor, project.OrganizationID) {
		return nil, apperrors.NotFound("project not found")
	}
	return project, nil
}

// projectForWrite resolves a project for mutation, denying cross-tenant
// access.
func projectForWrite(db *gorm.DB, actor *models.User, id uuid.UUID) (*models.Project, error) {
	project, err := findProject(db, id)
	if err != nil {
		return nil, err
	}
	if !actorInOrg(actor, project.OrganizationID) {
		return nil, apperrors.PermissionDenied("you don't have permission to modify this project")
	}
	return project, nil
}

// taskForRead resolves a task within the caller's tenancy boundary.
func taskForRead(db *gorm.DB, actor *models.User, id uuid.UUID) (*models.Task, error) {
	task, err := findTask(db, id)
	if err != nil {
		return nil, err
	}
	if !actorInOrg(actor, task.Project.OrganizationID) {
		return nil, apperrors.NotFound("task not found")
	}
	return task, nil
}

// taskForWrite resolves a task for mutation, denying cross-tenant access.
func taskForWrite(db *gorm.DB, actor *models.User, id uuid.UUID) (*models.Task, error) {
	task, err := findTask(db, id)
	if err != nil {
		return nil, err
	}
	if !actorInOrg(actor, task.Project.OrganizationID) {
		return nil, apperrors.PermissionDenied("you don't have permission to modify this task")
	}
	return task, nil
}
