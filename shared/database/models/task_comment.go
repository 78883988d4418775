package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskComment is ordered by creation time ascending within its task.
type TaskComment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TaskID    uuid.UUID `json:"task_id" gorm:"type:uuid;not null;index:idx_comments_task_created"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	AuthorID  uuid.UUID `json:"author_id" gorm:"type:uuid;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_comments_task_created"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Task   Task  `json:"task" gorm:"foreignKey:TaskID"`
	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

func (c *TaskComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
