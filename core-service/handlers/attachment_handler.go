package handlers

import (
	"io"
	"net/http"
	"strconv"

	"projectflow-backend/core-service/middleware"
	"projectflow-backend/core-service/services"
	"projectflow-backend/shared/config"
	"projectflow-backend/shared/database"

	"github.com/gin-gonic/gin"
)

// UploadAttachment uploads a file to a task
// @Summary Upload task attachment
// @Tags attachments
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Task ID" format(uuid)
// @Param file formData file true "File to upload"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 413 {object} map[string]string "File too large"
// @Router /tasks/{id}/attachments [post]
func UploadAttachment(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "File is required"})
		return
	}

	maxMB, _ := strconv.ParseInt(config.GetConfig().AttachmentMaxFileSizeMB, 10, 64)
	if maxMB > 0 && fileHeader.Size > maxMB*1024*1024 {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"success": false,
			"error":   "File exceeds the maximum allowed size",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to read file"})
		return
	}
	defer file.Close()

	attachment, err := services.UploadAttachment(c.Request.Context(), database.DB, actor, taskID, services.UploadAttachmentInput{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      file,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    attachment,
	})
}

// GetAttachments lists the attachments of a task
// @Summary List task attachments
// @Tags attachments
// @Produce json
// @Param id path string true "Task ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /tasks/{id}/attachments [get]
func GetAttachments(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	attachments, err := services.ListAttachments(database.DB, actor, taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    attachments,
	})
}

// DownloadAttachment streams an attachment's content
// @Summary Download attachment
// @Tags attachments
// @Produce octet-stream
// @Param id path string true "Attachment ID" format(uuid)
// @Security BearerAuth
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string "Attachment not found"
// @Router /attachments/{id}/download [get]
func DownloadAttachment(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	attachmentID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	attachment, reader, err := services.DownloadAttachment(c.Request.Context(), database.DB, actor, attachmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+attachment.FileName+`"`)
	contentType := attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	io.Copy(c.Writer, reader)
}

// DeleteAttachment removes an attachment
// @Summary Delete attachment
// @Tags attachments
// @Produce json
// @Param id path string true "Attachment ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /attachments/{id} [delete]
func DeleteAttachment(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	attachmentID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := services.DeleteAttachment(c.Request.Context(), database.DB, actor, attachmentID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Attachment deleted successfully",
	})
}
