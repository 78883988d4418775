package services

import (
	"errors"

	"projectflow-backend/shared/apperrors"
	"projectflow-backend/shared/database/models"
	"projectflow-backend/shared/permissions"
	utils "projectflow-backend/shared/utils/auth"
	"projectflow-backend/shared/utils/query"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegisterInput carries the fields of a new user registration.
type RegisterInput struct {
	Email            string
	Username         string
	Password         string
	FirstName        string
	LastName         string
	OrganizationSlug string
}

// Register creates a user and issues its authentication token. A user
// joining an organization without an explicit role is put on that
// organization's Member role.
func Register(db *gorm.DB, input RegisterInput) (*models.User, string, error) {
	if err := utils.ValidateEmail(input.Email); err != nil {
		return nil, "", apperrors.ValidationConflict("%s", err.Error())
	}
	if err := utils.ValidatePassword(input.Password); err != nil {
		return nil, "", apperrors.ValidationConflict("%s", err.Error())
	}

	var count int64
	db.Model(&models.User{}).Where("email = ?", input.Email).Count(&count)
	if count > 0 {
		return nil, "", apperrors.ValidationConflict("a user with this email already exists")
	}
	db.Model(&models.User{}).Where("username = ?", input.Username).Count(&count)
	if count > 0 {
		return nil, "", apperrors.ValidationConflict("a user with this username already exists")
	}

	var orgID *uuid.UUID
	if input.OrganizationSlug != "" {
		var org models.Organization
		if err := db.Where("slug = ?", input.OrganizationSlug).First(&org).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", apperrors.NotFound("organization not found")
			}
			return nil, "", err
		}
		orgID = &org.ID
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		Email:          input.Email,
		Username:       input.Username,
		Password:       hashedPassword,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		OrganizationID: orgID,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return assignDefaultRole(tx, &user)
	})
	if err != nil {
		return nil, "", err
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.OrganizationID, user.RoleID)
	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

// assignDefaultRole puts a freshly created user without a role on its
// organization's Member role. A missing Member role is tolerated: the
// organization may still be getting seeded.
func assignDefaultRole(tx *gorm.DB, user *models.User) error {
	if user.OrganizationID == nil || user.RoleID != nil {
		return nil
	}

	var member models.Role
	err := tx.Where("organization_id = ? AND name = ?", *user.OrganizationID, permissions.RoleMember).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	user.RoleID = &member.ID
	return tx.Save(user).Error
}

// GetActor loads a user with the relations the permission engine needs.
func GetActor(db *gorm.DB, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := db.Preload("Organization").Preload("Role").First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

var (
	userFilterFields = map[string]string{
		"role_id":   "role_id",
		"is_active": "is_active",
	}
	userSortFields = map[string]string{
		"email":      "email",
		"username":   "username",
		"created_at": "created_at",
	}
	userSearchFields = []string{"email", "username", "first_name", "last_name"}
)

// ListUsers returns the users of the caller's organization, filtered and
// paginated. Superusers without an organization see all users.
func ListUsers(db *gorm.DB, actor *models.User, params query.FilterParams) ([]models.User, query.PaginationResponse, error) {
	if actor.OrganizationID == nil && !actor.IsSuperuser {
		return []models.User{}, query.BuildPaginationResponse(params.Page, params.Limit, 0), nil
	}

	// Fresh builder per statement; gorm chains accumulate state.
	scoped := func() *gorm.DB {
		q := db.Model(&models.User{})
		if !(actor.IsSuperuser && actor.OrganizationID == nil) {
			q = q.Where("organization_id = ?", *actor.OrganizationID)
		}
		q = query.ApplyFilters(q, params.Filters, userFilterFields)
		return query.ApplySearch(q, params.Search, userSearchFields)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, query.PaginationResponse{}, err
	}

	var users []models.User
	q := query.ApplySort(scoped().Preload("Role"), params.Sort, userSortFields)
	q = query.ApplyPagination(q, params.Page, params.Limit)
	if err := q.Find(&users).Error; err != nil {
		return nil, query.PaginationResponse{}, err
	}

	return users, query.BuildPaginationResponse(params.Page, params.Limit, total), nil
}

// EffectivePermissions resolves the full permission table of a user
// through the engine, one entry per vocabulary key.
func EffectivePermissions(user *models.User) models.PermissionSet {
	resolved := make(models.PermissionSet, len(permissions.AllKeys))
	for _, key := range permissions.AllKeys {
		resolved[key] = permissions.HasPermission(user, key)
	}
	return resolved
}
