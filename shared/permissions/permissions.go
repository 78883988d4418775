package permissions

import (
	"projectflow-backend/shared/apperrors"
	"projectflow-backend/shared/database/models"
)

// Permission keys form a fixed vocabulary. Unknown keys are rejected when
// they arrive in a role or override payload; stored data with keys outside
// the vocabulary still resolves to false on read.
const (
	CreateProject = "create_project"
	EditProject   = "edit_project"
	DeleteProject = "delete_project"
	CreateTask    = "create_task"
	EditTask      = "edit_task"
	DeleteTask    = "delete_task"
	AssignTask    = "assign_task"
	CommentTask   = "comment_task"
	ManageUsers   = "manage_users"
	ManageRoles   = "manage_roles"
	ViewAll       = "view_all"
)

// AllKeys lists the full permission vocabulary.
var AllKeys = []string{
	CreateProject,
	EditProject,
	DeleteProject,
	CreateTask,
	EditTask,
	DeleteTask,
	AssignTask,
	CommentTask,
	ManageUsers,
	ManageRoles,
	ViewAll,
}

var keySet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(AllKeys))
	for _, k := range AllKeys {
		s[k] = struct{}{}
	}
	return s
}()

// ValidKey reports whether key belongs to the vocabulary.
func ValidKey(key string) bool {
	_, ok := keySet[key]
	return ok
}

// ValidateSet rejects permission sets carrying keys outside the vocabulary.
func ValidateSet(set models.PermissionSet) error {
	for key := range set {
		if !ValidKey(key) {
			return apperrors.ValidationConflict("unknown permission key: %s", key)
		}
	}
	return nil
}

// Built-in default role names, low to high hierarchy order.
const (
	RoleViewer  = "Viewer"
	RoleMember  = "Member"
	RoleManager = "Manager"
	RoleAdmin   = "Admin"
)

// DefaultRoleNames lists the four built-in roles seeded per organization.
var DefaultRoleNames = []string{RoleAdmin, RoleManager, RoleMember, RoleViewer}

var roleHierarchy = []string{RoleViewer, RoleMember, RoleManager, RoleAdmin}

// HierarchyLevel returns the built-in hierarchy level of a role name.
// Unknown and custom role names resolve to 0, the lowest level.
func HierarchyLevel(roleName string) int {
	for i, name := range roleHierarchy {
		if name == roleName {
			return i
		}
	}
	return 0
}

// DefaultRolePermissions returns the fixed permission table for a built-in
// role name, or nil for unknown names.
func DefaultRolePermissions(roleName string) models.PermissionSet {
	switch roleName {
	case RoleAdmin:
		return models.PermissionSet{
			CreateProject: true,
			EditProject:   true,
			DeleteProject: true,
			CreateTask:    true,
			EditTask:      true,
			DeleteTask:    true,
			AssignTask:    true,
			CommentTask:   true,
			ManageUsers:   true,
			ManageRoles:   true,
			ViewAll:       true,
		}
	case RoleManager:
		return models.PermissionSet{
			CreateProject: true,
			EditProject:   true,
			DeleteProject: false,
			CreateTask:    true,
			EditTask:      true,
			DeleteTask:    true,
			AssignTask:    true,
			CommentTask:   true,
			ManageUsers:   false,
			ManageRoles:   false,
			ViewAll:       true,
		}
	case RoleMember:
		return models.PermissionSet{
			CreateProject: false,
			EditProject:   false,
			DeleteProject: false,
			CreateTask:    true,
			EditTask:      true,
			DeleteTask:    false,
			AssignTask:    false,
			CommentTask:   true,
			ManageUsers:   false,
			ManageRoles:   false,
			ViewAll:       true,
		}
	case RoleViewer:
		return models.PermissionSet{
			CreateProject: false,
			EditProject:   false,
			DeleteProject: false,
			CreateTask:    false,
			EditTask:      false,
			DeleteTask:    false,
			AssignTask:    false,
			CommentTask:   true,
			ManageUsers:   false,
			ManageRoles:   false,
			ViewAll:       true,
		}
	}
	return nil
}
