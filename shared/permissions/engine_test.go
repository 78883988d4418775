package permissions

import (
	"testing"

	"projectflow-backend/shared/apperrors"
	"projectflow-backend/shared/database/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userWithRole(orgID uuid.UUID, roleName string) *models.User {
	roleID := uuid.New()
	return &models.User{
		ID:             uuid.New(),
		OrganizationID: &orgID,
		RoleID:         &roleID,
		Role: &models.Role{
			ID:             roleID,
			OrganizationID: orgID,
			Name:           roleName,
			Permissions:    DefaultRolePermissions(roleName),
		},
	}
}

func TestHasPermissionSuperuser(t *testing.T) {
	user := &models.User{ID: uuid.New(), IsSuperuser: true}

	for _, key := range AllKeys {
		assert.True(t, HasPermission(user, key))
	}
}

func TestHasPermissionOwner(t *testing.T) {
	orgID := uuid.New()
	userID := uuid.New()
	user := &models.User{
		ID:             userID,
		OrganizationID: &orgID,
		Organization: &models.Organization{
			ID:      orgID,
			OwnerID: &userID,
		},
	}

	// Owner of their own organization passes without any role.
	assert.True(t, HasPermission(user, DeleteProject))
	assert.True(t, HasPermission(user, ManageRoles))
}

func TestHasPermissionRole(t *testing.T) {
	orgID := uuid.New()

	manager := userWithRole(orgID, RoleManager)
	assert.True(t, HasPermission(manager, CreateProject))
	assert.False(t, HasPermission(manager, DeleteProject))
	assert.False(t, HasPermission(manager, ManageUsers))

	viewer := userWithRole(orgID, RoleViewer)
	assert.True(t, HasPermission(viewer, CommentTask))
	assert.True(t, HasPermission(viewer, ViewAll))
	assert.False(t, HasPermission(viewer, CreateTask))
}

func TestHasPermissionNoRole(t *testing.T) {
	orgID := uuid.New()
	user := &models.User{ID: uuid.New(), OrganizationID: &orgID}

	for _, key := range AllKeys {
		assert.False(t, HasPermission(user, key))
	}
}

func TestHasPermissionOverrideGrants(t *testing.T) {
	orgID := uuid.New()
	viewer := userWithRole(orgID, RoleViewer)
	viewer.CustomPermissions = models.PermissionSet{CreateTask: true}

	assert.True(t, HasPermission(viewer, CreateTask))
}

func TestHasPermissionOverrideDeniesRoleGrant(t *testing.T) {
	orgID := uuid.New()
	admin := userWithRole(orgID, RoleAdmin)
	admin.CustomPermissions = models.PermissionSet{DeleteProject: false}

	// An explicit false entry shadows the role even when the role grants it.
	assert.False(t, HasPermission(admin, DeleteProject))
	assert.True(t, HasPermission(admin, CreateProject))
}

func TestHasPermissionUnknownKey(t *testing.T) {
	orgID := uuid.New()
	admin := userWithRole(orgID, RoleAdmin)

	assert.False(t, HasPermission(admin, "launch_rockets"))
}

func TestCanModifyUserSuperuser(t *testing.T) {
	superuser := &models.User{ID: uuid.New(), IsSuperuser: true}
	target := userWithRole(uuid.New(), RoleAdmin)

	assert.True(t, CanModifyUser(superuser, target))
}

func TestCanModifyUserOwnerScopedToOwnOrg(t *testing.T) {
	orgID := uuid.New()
	ownerID := uuid.New()
	owner := &models.User{
		ID:             ownerID,
		OrganizationID: &orgID,
		Organization:   &models.Organization{ID: orgID, OwnerID: &ownerID},
	}

	sameOrg := userWithRole(orgID, RoleAdmin)
	assert.True(t, CanModifyUser(owner, sameOrg))

	otherOrg := userWithRole(uuid.New(), RoleViewer)
	assert.False(t, CanModifyUser(owner, otherOrg))
}

func TestCanModifyUserHierarchy(t *testing.T) {
	orgID := uuid.New()

	grant := func(u *models.User) {
		u.CustomPermissions = models.PermissionSet{ManageUsers: true}
	}

	manager := userWithRole(orgID, RoleManager)
	grant(manager)

	member := userWithRole(orgID, RoleMember)
	admin := userWithRole(orgID, RoleAdmin)

	// manage_users works downward or sideways in the hierarchy, never up.
	assert.True(t, CanModifyUser(manager, member))
	assert.True(t, CanModifyUser(manager, userWithRole(orgID, RoleManager)))
	assert.False(t, CanModifyUser(manager, admin))
}

func TestCanModifyUserMissingRolePasses(t *testing.T) {
	orgID := uuid.New()

	caller := &models.User{
		ID:                uuid.New(),
		OrganizationID:    &orgID,
		CustomPermissions: models.PermissionSet{ManageUsers: true},
	}
	target := &models.User{ID: uuid.New(), OrganizationID: &orgID}

	assert.True(t, CanModifyUser(caller, target))
}

func TestCanModifyUserOwnerUntouchable(t *testing.T) {
	orgID := uuid.New()
	ownerID := uuid.New()

	admin := userWithRole(orgID, RoleAdmin)

	owner := &models.User{
		ID:             ownerID,
		OrganizationID: &orgID,
		Organization:   &models.Organization{ID: orgID, OwnerID: &ownerID},
	}

	assert.False(t, CanModifyUser(admin, owner))
}

func TestCanModifyUserCrossOrg(t *testing.T) {
	caller := userWithRole(uuid.New(), RoleAdmin)
	target := userWithRole(uuid.New(), RoleViewer)

	assert.False(t, CanModifyUser(caller, target))
}

func TestCheckGrantableOwnerAndSuperuser(t *testing.T) {
	set := models.PermissionSet{DeleteProject: true, ManageRoles: true}

	superuser := &models.User{ID: uuid.New(), IsSuperuser: true}
	assert.NoError(t, CheckGrantable(superuser, set))

	orgID := uuid.New()
	ownerID := uuid.New()
	owner := &models.User{
		ID:             ownerID,
		OrganizationID: &orgID,
		Organization:   &models.Organization{ID: orgID, OwnerID: &ownerID},
	}
	assert.NoError(t, CheckGrantable(owner, set))
}

func TestCheckGrantableEscalationDenied(t *testing.T) {
	orgID := uuid.New()
	manager := userWithRole(orgID, RoleManager)

	// Manager holds create_task but not manage_users.
	assert.NoError(t, CheckGrantable(manager, models.PermissionSet{CreateTask: true}))

	err := CheckGrantable(manager, models.PermissionSet{ManageUsers: true})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindEscalationDenied, apperrors.KindOf(err))
}

func TestCheckGrantableDeniedEntriesAllowed(t *testing.T) {
	orgID := uuid.New()
	viewer := userWithRole(orgID, RoleViewer)

	// Explicit false entries are not grants.
	assert.NoError(t, CheckGrantable(viewer, models.PermissionSet{DeleteProject: false}))
}

func TestValidateSet(t *testing.T) {
	assert.NoError(t, ValidateSet(models.PermissionSet{CreateTask: true, ViewAll: false}))

	err := ValidateSet(models.PermissionSet{"become_owner": true})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidationConflict, apperrors.KindOf(err))
}

func TestDefaultRolePermissions(t *testing.T) {
	admin := DefaultRolePermissions(RoleAdmin)
	for _, key := range AllKeys {
		assert.True(t, admin[key], key)
	}

	manager := DefaultRolePermissions(RoleManager)
	assert.False(t, manager[DeleteProject])
	assert.False(t, manager[ManageUsers])
	assert.False(t, manager[ManageRoles])
	assert.True(t, manager[DeleteTask])

	member := DefaultRolePermissions(RoleMember)
	assert.True(t, member[CreateTask])
	assert.True(t, member[EditTask])
	assert.True(t, member[CommentTask])
	assert.True(t, member[ViewAll])
	assert.False(t, member[DeleteTask])
	assert.False(t, member[CreateProject])

	viewer := DefaultRolePermissions(RoleViewer)
	assert.True(t, viewer[CommentTask])
	assert.True(t, viewer[ViewAll])
	assert.False(t, viewer[CreateTask])

	assert.Nil(t, DefaultRolePermissions("Contractor"))
}

func TestHierarchyLevel(t *testing.T) {
	assert.Equal(t, 0, HierarchyLevel(RoleViewer))
	assert.Equal(t, 1, HierarchyLevel(RoleMember))
	assert.Equal(t, 2, HierarchyLevel(RoleManager))
	assert.Equal(t, 3, HierarchyLevel(RoleAdmin))
	assert.Equal(t, 0, HierarchyLevel("Contractor"))
}
