package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	Email             string        `json:"email" gorm:"uniqueIndex;not null"`
	Username          string        `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Password          string        `json:"-" gorm:"not null"`
	FirstName         string        `json:"first_name" gorm:"size:100"`
	LastName          string        `json:"last_name" gorm:"size:100"`
	OrganizationID    *uuid.UUID    `json:"organization_id" gorm:"type:uuid"`
	RoleID            *uuid.UUID    `json:"role_id" gorm:"type:uuid"`
	CustomPermissions PermissionSet `json:"custom_permissions" gorm:"type:json"`
	IsSuperuser       bool          `json:"is_superuser" gorm:"default:false"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`

	// Relations
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	Role         *Role         `json:"role,omitempty" gorm:"foreignKey:RoleID"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// InOrganization reports whether the user belongs to orgID.
func (u *User) InOrganization(orgID uuid.UUID) bool {
	return u.OrganizationID != nil && *u.OrganizationID == orgID
}

// SameOrganization reports whether both users belong to the same
// organization. Users without an organization never match.
func (u *User) SameOrganization(other *User) bool {
	if u.OrganizationID == nil || other.OrganizationID == nil {
		return false
	}
	return *u.OrganizationID == *other.OrganizationID
}

// OwnsOrganization reports whether the user owns the organization it
// belongs to. Requires the Organization relation to be loaded.
func (u *User) OwnsOrganization() bool {
	return u.Organization != nil && u.Organization.IsOwnedBy(u.ID)
}
