package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Organization struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string     `json:"name" gorm:"size:200;not null"`
	Slug         string     `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	ContactEmail string     `json:"contact_email" gorm:"size:255;not null"`
	OwnerID      *uuid.UUID `json:"owner_id" gorm:"type:uuid"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// IsOwnedBy reports whether userID is this organization's owner.
func (o *Organization) IsOwnedBy(userID uuid.UUID) bool {
	return o.OwnerID != nil && *o.OwnerID == userID
}
