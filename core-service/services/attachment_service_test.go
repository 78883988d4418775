package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"projectflow-backend/shared/apperrors"
	"projectflow-backend/shared/database/models"
	"projectflow-backend/shared/permissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadAttachment(t *testing.T) {
	db := newTestDB(t)
	store := installFakeStore(t)

	acme := createTestOrg(t, db, "Acme")
	owner := loadActor(t, db, acme.Owner.ID)
	project := createTestProject(t, db, owner, &acme.Organization, "Board")
	task := createTestTask(t, db, owner, project.ID, "Task")

	attachment, err := UploadAttachment(context.Background(), db, owner, task.ID, UploadAttachmentInput{
		FileName:    "design.pdf",
		ContentType: "application/pdf",
		Size:        4,
		Reader:      strings.NewReader("%PDF"),
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("tasks/%s/%s", task.ID, attachment.ID), attachment.ObjectKey)
	assert.Equal(t, 1, store.count())

	attachments, err := ListAttachments(db, owner, task.ID)
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, "design.pdf", attachments[0].FileName)
}

func TestUploadAttachmentStorageFailureLeavesNoRow(t *testing.T) {
	db := newTestDB(t)
	store := installFakeStore(t)
	store.failPut = true

	acme := createTestOrg(t, db, "Acme")
	owner := loadActor(t, db, acme.Owner.ID)
	project := createTestProject(t, db, owner, &acme.Organization, "Board")
	task := createTestTask(t, db, owner, project.ID, "Task")

	_, err := UploadAttachment(context.Background(), db, owner, task.ID, UploadAttachmentInput{
		FileName: "doomed.txt",
		Reader:   strings.NewReader("x"),
	})
	require.Error(t, err)

	var count int64
	db.Model(&models.TaskAttachment{}).Count(&count)
	assert.Zero(t, count)
}

func TestUploadAttachmentRequiresEditTask(t *testing.T) {
	db := newTestDB(t)
	installFakeStore(t)

	acme := createTestOrg(t, db, "Acme")
	owner := loadActor(t, db, acme.Owner.ID)
	viewer := createOrgUser(t, db, &acme.Organization, permissions.RoleViewer)
	project := createTestProject(t, db, owner, &acme.Organization, "Board")
	task := createTestTask(t, db, owner, project.ID, "Task")

	_, err := UploadAttachment(context.Background(), db, viewer, task.ID, UploadAttachmentInput{
		FileName: "nope.txt",
		Reader:   strings.NewReader("x"),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindPermissionDenied, apperrors.KindOf(err))
}

func TestDownloadAttachment(t *testing.T) {
	db := newTestDB(t)
	installFakeStore(t)

	acme := createTestOrg(t, db, "Acme")
	owner := loadActor(t, db, acme.Owner.ID)
	project := createTestProject(t, db, owner, &acme.Organization, "Board")
	task := createTestTask(t, db, owner, project.ID, "Task")

	uploaded, err := UploadAttachment(context.Background(), db, owner, task.ID, UploadAttachmentInput{
		FileName: "notes.txt",
		Size:     5,
		Reader:   strings.NewReader("hello"),
	})
	require.NoError(t, err)

	attachment, reader, err := DownloadAttachment(context.Background(), db, owner, uploaded.ID)
	require.NoError(t, err)
	defer reader.Close()

	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, "notes.txt", attachment.FileName)
}

func TestDownloadAttachmentCrossTenant(t *testing.T) {
	db := newTestDB(t)
	installFakeStore(t)

	acme := createTestOrg(t, db, "Acme")
	other := createTestOrg(t, db, "Other")

	owner := loadActor(t, db, acme.Owner.ID)
	project := createTestProject(t, db, owner, &acme.Organization, "Board")
	task := createTestTask(t, db, owner, project.ID, "Task")

	uploaded, err := UploadAttachment(context.Background(), db, owner, task.ID, UploadAttachmentInput{
		FileName: "secret.txt",
		Reader:   strings.NewReader("x"),
	})
	require.NoError(t, err)

	outsider := loadActor(t, db, other.Owner.ID)
	_, _, err = DownloadAttachment(context.Background(), db, outsider, uploaded.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDeleteAttachmentRemovesObject(t *testing.T) {
	db := newTestDB(t)
	store := installFakeStore(t)

	acme := createTestOrg(t, db, "Acme")
	owner := loadActor(t, db, acme.Owner.ID)
	project := createTestProject(t, db, owner, &acme.Organization, "Board")
	task := createTestTask(t, db, owner, project.ID, "Task")

	uploaded, err := UploadAttachment(context.Background(), db, owner, task.ID, UploadAttachmentInput{
		FileName: "temp.txt",
		Reader:   strings.NewReader("x"),
	})
	require.NoError(t, err)

	require.NoError(t, DeleteAttachment(context.Background(), db, owner, uploaded.ID))
	assert.Zero(t, store.count())

	attachments, err := ListAttachments(db, owner, task.ID)
	require.NoError(t, err)
	assert.Empty(t, attachments)
}
