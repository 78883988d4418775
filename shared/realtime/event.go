package realtime

import (
	"fmt"

	"github.com/google/uuid"
)

// Action kinds tagged on broadcast events.
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionAssign  = "assign"
	ActionComment = "comment"
)

// TaskProjectTopic names the channel carrying all task events of a project.
func TaskProjectTopic(projectID uuid.UUID) string {
	return fmt.Sprintf("task_project_%s", projectID)
}

// TaskTopic names the comment-only channel of a single task.
func TaskTopic(taskID uuid.UUID) string {
	return fmt.Sprintf("task_%s", taskID)
}

// UserRef identifies a user inside a broadcast payload.
type UserRef struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
}

// CommentSnapshot is one comment inside a task snapshot, ordered by
// timestamp ascending.
type CommentSnapshot struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Author    UserRef   `json:"author"`
	Timestamp string    `json:"timestamp"`
}

// TaskSnapshot is the normalized view of a full task published after a
// successful mutation.
type TaskSnapshot struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority"`
	DueDate     *string           `json:"due_date"`
	Assignees   []UserRef         `json:"assignees"`
	Comments    []CommentSnapshot `json:"comments"`
}

// Event is published to the topic of the task's owning project.
type Event struct {
	Action  string           `json:"action"`
	Task    TaskSnapshot     `json:"task"`
	Comment *CommentSnapshot `json:"comment,omitempty"`
}
