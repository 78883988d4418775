package permissions

import (
	"projectflow-backend/shared/apperrors"
	"projectflow-backend/shared/database/models"
)

// HasPermission resolves whether user may perform the action named by key.
// Resolution order is strict: superuser, organization owner within their
// own organization, per-user override, assigned role. Overrides take
// precedence over the role even to deny a permission the role grants.
// The user's Organization and Role relations must be loaded.
func HasPermission(user *models.User, key string) bool {
	if user.IsSuperuser {
		return true
	}

	if user.OwnsOrganization() {
		return true
	}

	if user.CustomPermissions.Contains(key) {
		return user.CustomPermissions.Has(key)
	}

	if user.Role != nil {
		return user.Role.HasPermission(key)
	}

	return false
}

// CanModifyUser resolves whether caller may perform administrative actions
// on target (role assignment, role removal, permission overrides). Both
// users must have their Organization and Role relations loaded.
func CanModifyUser(caller, target *models.User) bool {
	if caller.IsSuperuser {
		return true
	}

	if caller.OwnsOrganization() {
		return caller.SameOrganization(target)
	}

	if HasPermission(caller, ManageUsers) {
		if !caller.SameOrganization(target) {
			return false
		}

		// The organization owner is never modifiable by non-owners.
		if target.OwnsOrganization() {
			return false
		}

		return hierarchyCheck(caller, target)
	}

	return false
}

// hierarchyCheck compares built-in role hierarchy levels. A missing role on
// either side passes; custom role names resolve to the lowest level.
func hierarchyCheck(caller, target *models.User) bool {
	if caller.Role == nil || target.Role == nil {
		return true
	}
	return HierarchyLevel(caller.Role.Name) >= HierarchyLevel(target.Role.Name)
}

// CheckGrantable enforces the escalation guard: a caller who is neither a
// superuser nor their organization's owner may only grant permission keys
// it currently holds. Denied entries in set are always allowed.
func CheckGrantable(caller *models.User, set models.PermissionSet) error {
	if caller.IsSuperuser || caller.OwnsOrganization() {
		return nil
	}

	for key, granted := range set {
		if granted && !HasPermission(caller, key) {
			return apperrors.EscalationDenied("you don't have permission to grant '%s'", key)
		}
	}
	return nil
}
