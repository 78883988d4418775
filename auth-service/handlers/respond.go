package handlers

import (
	"net/http"

	"projectflow-backend/shared/apperrors"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error to its HTTP status.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	c.JSON(status, gin.H{"error": message})
}
