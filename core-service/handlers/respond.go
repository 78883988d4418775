package handlers

import (
	"net/http"

	"projectflow-backend/shared/apperrors"
	"projectflow-backend/shared/database/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps a service error to its HTTP status and the standard
// error envelope.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

// parseUUIDParam parses a path parameter as a UUID, writing a 400 response
// when it is malformed.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid " + name + " format",
		})
		return uuid.Nil, false
	}
	return id, true
}

// UserResponse represents user data for API responses
type UserResponse struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	OrganizationID *uuid.UUID `json:"organization_id"`
	RoleID         *uuid.UUID `json:"role_id"`
	RoleName       string     `json:"role_name,omitempty"`
	IsSuperuser    bool       `json:"is_superuser"`
}

func userResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		OrganizationID: u.OrganizationID,
		RoleID:         u.RoleID,
		IsSuperuser:    u.IsSuperuser,
	}
	if u.Role != nil {
		resp.RoleName = u.Role.Name
	}
	return resp
}
