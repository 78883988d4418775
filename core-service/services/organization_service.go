package services

import (
	"errors"
	"fmt"
	"strings"

	"projectflow-backend/shared/apperrors"
	"projectflow-backend/shared/database/models"
	"projectflow-backend/shared/permissions"
	utils "projectflow-backend/shared/utils/auth"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateOrganizationInput carries the organization fields plus its owner
// user, created atomically in the same operation.
type CreateOrganizationInput struct {
	Name         string
	Slug         string
	ContactEmail string

	OwnerEmail     string
	OwnerUsername  string
	OwnerPassword  string
	OwnerFirstName string
	OwnerLastName  string
}

// CreateOrganizationResult is the organization, its owner and the owner's
// freshly issued authentication token.
type CreateOrganizationResult struct {
	Organization models.Organization
	Owner        models.User
	Token        string
}

// CreateOrganization creates an organization together with its owner user,
// seeds the four default roles, assigns the Admin role to the owner and
// issues a token for the owner. The whole operation is transactional.
func CreateOrganization(db *gorm.DB, input CreateOrganizationInput) (*CreateOrganizationResult, error) {
	if err := utils.ValidateEmail(input.OwnerEmail); err != nil {
		return nil, apperrors.ValidationConflict("%s", err.Error())
	}
	if err := utils.ValidatePassword(input.OwnerPassword); err != nil {
		return nil, apperrors.ValidationConflict("%s", err.Error())
	}

	var count int64
	db.Model(&models.User{}).Where("email = ?", input.OwnerEmail).Count(&count)
	if count > 0 {
		return nil, apperrors.ValidationConflict("a user with this email already exists")
	}
	db.Model(&models.User{}).Where("username = ?", input.OwnerUsername).Count(&count)
	if count > 0 {
		return nil, apperrors.ValidationConflict("a user with this username already exists")
	}

	hashedPassword, err := utils.HashPassword(input.OwnerPassword)
	if err != nil {
		return nil, err
	}

	base := input.Slug
	if base == "" {
		base = GenerateSlug(input.Name)
	}

	var org models.Organization
	var owner models.User

	// The slug-uniqueness loop is not race-free under concurrent creation
	// with the same base name; the unique index is the backstop and a
	// constraint violation restarts the transaction with the next suffix.
	const maxSlugRetries = 5
	for attempt := 0; ; attempt++ {
		org = models.Organization{}
		owner = models.User{}

		err = db.Transaction(func(tx *gorm.DB) error {
			slug, err := uniqueSlug(tx, base)
			if err != nil {
				return err
			}

			org = models.Organization{
				Name:         input.Name,
				Slug:         slug,
				ContactEmail: input.ContactEmail,
			}
			if err := tx.Create(&org).Error; err != nil {
				return err
			}

			owner = models.User{
				Email:          input.OwnerEmail,
				Username:       input.OwnerUsername,
				Password:       hashedPassword,
				FirstName:      input.OwnerFirstName,
				LastName:       input.OwnerLastName,
				OrganizationID: &org.ID,
			}
			if err := tx.Create(&owner).Error; err != nil {
				return err
			}

			org.OwnerID = &owner.ID
			if err := tx.Save(&org).Error; err != nil {
				return err
			}

			// Post-creation hooks, explicit and ordered: seed the default
			// roles, then put the owner on Admin.
			roles, err := SeedDefaultRoles(tx, org.ID)
			if err != nil {
				return err
			}
			for i := range roles {
				if roles[i].Name == permissions.RoleAdmin {
					owner.RoleID = &roles[i].ID
					if err := tx.Save(&owner).Error; err != nil {
						return err
					}
					break
				}
			}

			return nil
		})

		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < maxSlugRetries {
			continue
		}
		return nil, err
	}

	token, err := utils.GenerateJWT(owner.ID, owner.Email, owner.OrganizationID, owner.RoleID)
	if err != nil {
		return nil, err
	}

	return &CreateOrganizationResult{
		Organization: org,
		Owner:        owner,
		Token:        token,
	}, nil
}

// GenerateSlug derives a slug from a name: lower-cased, spaces and
// underscores replaced by hyphens.
func GenerateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")
	return slug
}

// uniqueSlug disambiguates a base slug with -1, -2, ... until unused.
func uniqueSlug(tx *gorm.DB, base string) (string, error) {
	slug := base
	for counter := 1; ; counter++ {
		var count int64
		if err := tx.Model(&models.Organization{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

// SeedDefaultRoles creates the four built-in roles for an organization,
// idempotently by (organization, name).
func SeedDefaultRoles(tx *gorm.DB, orgID uuid.UUID) ([]models.Role, error) {
	roles := make([]models.Role, 0, len(permissions.DefaultRoleNames))

	for _, name := range permissions.DefaultRoleNames {
		var role models.Role
		err := tx.Where("organization_id = ? AND name = ?", orgID, name).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role = models.Role{
				OrganizationID: orgID,
				Name:           name,
				Description:    fmt.Sprintf("Default %s role", name),
				Permissions:    permissions.DefaultRolePermissions(name),
				IsDefault:      true,
			}
			if err := tx.Create(&role).Error; err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}

	return roles, nil
}

// GetOrganizationBySlug resolves an organization within the caller's
// tenancy boundary.
func GetOrganizationBySlug(db *gorm.DB, actor *models.User, slug string) (*models.Organization, error) {
	var org models.Organization
	if err := db.Where("slug = ?", slug).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("organization not found")
		}
		return nil, err
	}
	if !actorInOrg(actor, org.ID) {
		return nil, apperrors.NotFound("organization not found")
	}
	return &org, nil
}

// ListOrganizations returns all organizations for superusers, otherwise
// only the caller's own.
func ListOrganizations(db *gorm.DB, actor *models.User) ([]models.Organization, error) {
	var orgs []models.Organization
	if actor.IsSuperuser {
		if err := db.Order("name ASC").Find(&orgs).Error; err != nil {
			return nil, err
		}
		return orgs, nil
	}
	if actor.OrganizationID == nil {
		return []models.Organization{}, nil
	}
	if err := db.Where("id = ?", *actor.OrganizationID).Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// UpdateOrganizationInput carries partial-update fields; nil fields are
// left untouched.
type UpdateOrganizationInput struct {
	Name         *string
	ContactEmail *string
	OwnerID      *uuid.UUID
}

// UpdateOrganization applies non-nil fields. Only the organization's owner
// and superusers may update it; a new owner must belong to the
// organization.
func UpdateOrganization(db *gorm.DB, actor *models.User, orgID uuid.UUID, input UpdateOrganizationInput) (*models.Organization, error) {
	var org models.Organization
	if err := db.First(&org, "id = ?", orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("organization not found")
		}
		return nil, err
	}

	if !actor.IsSuperuser && !org.IsOwnedBy(actor.ID) {
		return nil, apperrors.PermissionDenied("you don't have permission to update this organization")
	}

	if input.Name != nil {
		org.Name = *input.Name
	}
	if input.ContactEmail != nil {
		org.ContactEmail = *input.ContactEmail
	}
	if input.OwnerID != nil {
		var newOwner models.User
		if err := db.First(&newOwner, "id = ?", *input.OwnerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("user not found")
			}
			return nil, err
		}
		if !newOwner.InOrganization(org.ID) {
			return nil, apperrors.ValidationConflict("organization owner must belong to the organization")
		}
		org.OwnerID = input.OwnerID
	}

	if err := db.Save(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
