package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	ID             uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID     `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:idx_roles_org_name"`
	Name           string        `json:"name" gorm:"size:100;not null;uniqueIndex:idx_roles_org_name"`
	Description    string        `json:"description" gorm:"type:text"`
	Permissions    PermissionSet `json:"permissions" gorm:"type:json"`
	IsDefault      bool          `json:"is_default" gorm:"default:false"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	// Relations
	Organization Organization `json:"organization" gorm:"foreignKey:OrganizationID"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// HasPermission returns the mapped value for key, false for unknown keys.
func (r *Role) HasPermission(key string) bool {
	return r.Permissions.Has(key)
}
