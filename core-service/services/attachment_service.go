package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"projectflow-backend/shared/apperrors"
	"projectflow-backend/shared/database/models"
	"projectflow-backend/shared/permissions"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadAttachmentInput carries the metadata and content of a new
// attachment.
type UploadAttachmentInput struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// UploadAttachment stores a file for a task. Requires the edit_task
// permission and tenancy. The object is written before the row so a
// storage failure never leaves an orphan record.
func UploadAttachment(ctx context.Context, db *gorm.DB, actor *models.User, taskID uuid.UUID, input UploadAttachmentInput) (*models.TaskAttachment, error) {
	if store == nil {
		return nil, errors.New("attachment storage is not configured")
	}
	if !permissions.HasPermission(actor, permissions.EditTask) {
		return nil, apperrors.PermissionDenied("you don't have permission to upload attachments")
	}

	task, err := taskForWrite(db, actor, taskID)
	if err != nil {
		return nil, err
	}

	if input.FileName == "" {
		return nil, apperrors.ValidationConflict("file name is required")
	}

	attachment := models.TaskAttachment{
		ID:           uuid.New(),
		TaskID:       task.ID,
		FileName:     input.FileName,
		ContentType:  input.ContentType,
		Size:         input.Size,
		UploadedByID: &actor.ID,
	}
	attachment.ObjectKey = fmt.Sprintf("tasks/%s/%s", task.ID, attachment.ID)

	if err := store.Put(ctx, attachment.ObjectKey, input.ContentType, input.Reader, input.Size); err != nil {
		return nil, fmt.Errorf("failed to store attachment: %v", err)
	}

	if err := db.Create(&attachment).Error; err != nil {
		// Roll back the stored object so it doesn't leak.
		_ = store.Remove(ctx, attachment.ObjectKey)
		return nil, err
	}
	return &attachment, nil
}

// ListAttachments returns the attachments of a task, empty when the
// caller is outside the tenancy boundary.
func ListAttachments(db *gorm.DB, actor *models.User, taskID uuid.UUID) ([]models.TaskAttachment, error) {
	task, err := findTask(db, taskID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return []models.TaskAttachment{}, nil
		}
		return nil, err
	}
	if !actorInOrg(actor, task.Project.OrganizationID) {
		return []models.TaskAttachment{}, nil
	}

	var attachments []models.TaskAttachment
	err = db.Where("task_id = ?", task.ID).
		Order("created_at DESC").
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

// DownloadAttachment resolves an attachment within the caller's tenancy
// boundary and opens its content.
func DownloadAttachment(ctx context.Context, db *gorm.DB, actor *models.User, attachmentID uuid.UUID) (*models.TaskAttachment, io.ReadCloser, error) {
	if store == nil {
		return nil, nil, errors.New("attachment storage is not configured")
	}
	attachment, err := attachmentForRead(db, actor, attachmentID)
	if err != nil {
		return nil, nil, err
	}

	reader, err := store.Get(ctx, attachment.ObjectKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open attachment: %v", err)
	}
	return attachment, reader, nil
}

// DeleteAttachment removes an attachment row and its stored object.
// Requires the edit_task permission and tenancy.
func DeleteAttachment(ctx context.Context, db *gorm.DB, actor *models.User, attachmentID uuid.UUID) error {
	if store == nil {
		return errors.New("attachment storage is not configured")
	}
	if !permissions.HasPermission(actor, permissions.EditTask) {
		return apperrors.PermissionDenied("you don't have permission to delete attachments")
	}

	attachment, err := findAttachment(db, attachmentID)
	if err != nil {
		return err
	}
	if _, err := taskForWrite(db, actor, attachment.TaskID); err != nil {
		return err
	}

	if err := db.Delete(attachment).Error; err != nil {
		return err
	}
	if err := store.Remove(ctx, attachment.ObjectKey); err != nil {
		return fmt.Errorf("failed to remove stored object: %v", err)
	}
	return nil
}

func findAttachment(db *gorm.DB, id uuid.UUID) (*models.TaskAttachment, error) {
	var attachment models.TaskAttachment
	if err := db.First(&attachment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("attachment not found")
		}
		return nil, err
	}
	return &attachment, nil
}

func attachmentForRead(db *gorm.DB, actor *models.User, id uuid.UUID) (*models.TaskAttachment, error) {
	attachment, err := findAttachment(db, id)
	if err != nil {
		return nil, err
	}
	if _, err := taskForRead(db, actor, attachment.TaskID); err != nil {
		return nil, err
	}
	return attachment, nil
}
