package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskAttachment is a file stored in object storage and linked to a task.
type TaskAttachment struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TaskID       uuid.UUID  `json:"task_id" gorm:"type:uuid;not null;index"`
	FileName     string     `json:"file_name" gorm:"size:255;not null"`
	ContentType  string     `json:"content_type" gorm:"size:120"`
	Size         int64      `json:"size"`
	ObjectKey    string     `json:"-" gorm:"size:512;not null"`
	UploadedByID *uuid.UUID `json:"uploaded_by_id" gorm:"type:uuid"`
	CreatedAt    time.Time  `json:"created_at"`

	// Relations
	Task       Task  `json:"task" gorm:"foreignKey:TaskID"`
	UploadedBy *User `json:"uploaded_by,omitempty" gorm:"foreignKey:UploadedByID"`
}

func (a *TaskAttachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
