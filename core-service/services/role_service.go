package services

import (
	"errors"

	"projectflow-backend/shared/apperrors"
	"projectflow-backend/shared/database/models"
	"projectflow-backend/shared/permissions"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// canAdministerRoles reports whether actor may manage roles of orgID.
func canAdministerRoles(actor *models.User, orgID uuid.UUID) error {
	if actor.IsSuperuser {
		return nil
	}
	if !actor.InOrganization(orgID) {
		return apperrors.PermissionDenied("you don't have permission to manage roles in this organization")
	}
	if actor.OwnsOrganization() || permissions.HasPermission(actor, permissions.ManageRoles) {
		return nil
	}
	return apperrors.PermissionDenied("you don't have permission to manage roles")
}

// CreateRoleInput carries the fields of a new custom role.
type CreateRoleInput struct {
	OrganizationID uuid.UUID
	Name           string
	Description    string
	Permissions    models.PermissionSet
}

// CreateRole creates a custom role in an organization. The permission set
// is validated against the fixed vocabulary and the escalation guard; the
// (organization, name) pair must be unique.
func CreateRole(db *gorm.DB, actor *models.User, input CreateRoleInput) (*models.Role, error) {
	if err := canAdministerRoles(actor, input.OrganizationID); err != nil {
		return nil, err
	}

	if input.Name == "" {
		return nil, apperrors.ValidationConflict("role name is required")
	}
	if err := permissions.ValidateSet(input.Permissions); err != nil {
		return nil, err
	}
	if err := permissions.CheckGrantable(actor, input.Permissions); err != nil {
		return nil, err
	}

	role := models.Role{
		OrganizationID: input.OrganizationID,
		Name:           input.Name,
		Description:    input.Description,
		Permissions:    input.Permissions,
		IsDefault:      false,
	}
	if role.Permissions == nil {
		role.Permissions = models.PermissionSet{}
	}

	if err := db.Create(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ValidationConflict("role '%s' already exists in this organization", input.Name)
		}
		return nil, err
	}
	return &role, nil
}

// UpdateRoleInput carries partial-update fields; nil fields are left
// untouched.
type UpdateRoleInput struct {
	Name        *string
	Description *string
	Permissions models.PermissionSet
}

// UpdateRole applies non-nil fields to a role. Default role names are
// immutable; permission changes pass the vocabulary check and the
// escalation guard.
func UpdateRole(db *gorm.DB, actor *models.User, roleID uuid.UUID, input UpdateRoleInput) (*models.Role, error) {
	var role models.Role
	if err := db.First(&role, "id = ?", roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("role not found")
		}
		return nil, err
	}

	if err := canAdministerRoles(actor, role.OrganizationID); err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != role.Name {
		if role.IsDefault {
			return nil, apperrors.ValidationConflict("default roles cannot be renamed")
		}
		if *input.Name == "" {
			return nil, apperrors.ValidationConflict("role name is required")
		}
		role.Name = *input.Name
	}
	if input.Description != nil {
		role.Description = *input.Description
	}
	if input.Permissions != nil {
		if err := permissions.ValidateSet(input.Permissions); err != nil {
			return nil, err
		}
		if err := permissions.CheckGrantable(actor, input.Permissions); err != nil {
			return nil, err
		}
		role.Permissions = input.Permissions
	}

	if err := db.Save(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ValidationConflict("role '%s' already exists in this organization", role.Name)
		}
		return nil, err
	}
	return &role, nil
}

// ListRoles returns the roles of an organization, empty when the caller is
// outside the tenancy boundary.
func ListRoles(db *gorm.DB, actor *models.User, orgID uuid.UUID) ([]models.Role, error) {
	if !actorInOrg(actor, orgID) {
		return []models.Role{}, nil
	}

	var roles []models.Role
	err := db.Where("organization_id = ?", orgID).
		Order("is_default DESC, name ASC").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// administeredTarget loads the target user with relations and verifies the
// actor may administer them.
func administeredTarget(db *gorm.DB, actor *models.User, targetID uuid.UUID) (*models.User, error) {
	target, err := GetActor(db, targetID)
	if err != nil {
		return nil, err
	}
	if !permissions.CanModifyUser(actor, target) {
		return nil, apperrors.PermissionDenied("you don't have permission to modify this user")
	}
	return target, nil
}

// AssignUserRole assigns a role to a user. The role must belong to the
// target's organization.
func AssignUserRole(db *gorm.DB, actor *models.User, targetID, roleID uuid.UUID) (*models.User, error) {
	target, err := administeredTarget(db, actor, targetID)
	if err != nil {
		return nil, err
	}

	var role models.Role
	if err := db.First(&role, "id = ?", roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("role not found")
		}
		return nil, err
	}
	if target.OrganizationID == nil || role.OrganizationID != *target.OrganizationID {
		return nil, apperrors.ValidationConflict("role must belong to the user's organization")
	}

	target.RoleID = &role.ID
	target.Role = &role
	if err := db.Model(&models.User{}).Where("id = ?", target.ID).Update("role_id", role.ID).Error; err != nil {
		return nil, err
	}
	return target, nil
}

// RemoveUserRole clears a user's role assignment.
func RemoveUserRole(db *gorm.DB, actor *models.User, targetID uuid.UUID) (*models.User, error) {
	target, err := administeredTarget(db, actor, targetID)
	if err != nil {
		return nil, err
	}

	target.RoleID = nil
	target.Role = nil
	if err := db.Model(&models.User{}).Where("id = ?", target.ID).Update("role_id", nil).Error; err != nil {
		return nil, err
	}
	return target, nil
}

// SetUserPermissions replaces a user's per-user permission overrides. The
// set passes the vocabulary check and the escalation guard; denied entries
// are kept so they can shadow role grants.
func SetUserPermissions(db *gorm.DB, actor *models.User, targetID uuid.UUID, set models.PermissionSet) (*models.User, error) {
	target, err := administeredTarget(db, actor, targetID)
	if err != nil {
		return nil, err
	}

	if err := permissions.ValidateSet(set); err != nil {
		return nil, err
	}
	if err := permissions.CheckGrantable(actor, set); err != nil {
		return nil, err
	}

	if set == nil {
		set = models.PermissionSet{}
	}
	target.CustomPermissions = set
	if err := db.Model(&models.User{}).Where("id = ?", target.ID).Update("custom_permissions", set).Error; err != nil {
		return nil, err
	}
	return target, nil
}
