package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"projectflow-backend/core-service/services"
	"projectflow-backend/shared/database/models"
	utils "projectflow-backend/shared/utils/auth"
)

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

// Login Request/Response structs
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@projectflow.app"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	User      UserInfo  `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserInfo struct {
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

// Register Request struct
type RegisterRequest struct {
	Email            string `json:"email" binding:"required,email" example:"user@example.com"`
	Username         string `json:"username" binding:"required" example:"jdoe"`
	Password         string `json:"password" binding:"required,min=8" example:"securepassword123"`
	FirstName        string `json:"first_name" example:"John"`
	LastName         string `json:"last_name" example:"Doe"`
	OrganizationSlug string `json:"organization_slug" example:"acme"`
}

// Validate Request struct
type ValidateRequest struct {
	Token string `json:"token" binding:"required"`
}

// Validate Response struct
type ValidateResponse struct {
	Valid     bool      `json:"valid"`
	UserID    uuid.UUID `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

func userInfo(user *models.User) UserInfo {
	info := UserInfo{
		ID:             user.ID,
		Email:          user.Email,
		Username:       user.Username,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		OrganizationID: user.OrganizationID,
		RoleID:         user.RoleID,
		IsSuperuser:    user.IsSuperuser,
	}
	if user.Role != nil {
		info.RoleName = user.Role.Name
	}
	return info
}

// POST /api/auth/login
// @Summary User login
// @Description Authenticate a user and return a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Login credentials"
// @Success 200 {object} handlers.LoginResponse "Successful login"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 429 {object} map[string]string "Too many login attempts"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.db.Preload("Organization").Preload("Role").
		First(&user, "email = ?", req.Email).Error
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.OrganizationID, user.RoleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		User:      userInfo(&user),
		ExpiresAt: time.Now().Add(utils.GetJWTExpireDuration()),
	})
}

// POST /api/auth/register
// @Summary User registration
// @Description Register a user, optionally joining an organization by slug
// @Tags auth
// @Accept json
// @Produce json
// @Param register body RegisterRequest true "Registration details"
// @Success 201 {object} handlers.LoginResponse "Registered"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 404 {object} map[string]string "Organization not found"
// @Failure 409 {object} map[string]string "Email or username already taken"
// @Failure 429 {object} map[string]string "Too many registration attempts"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := services.Register(h.db, services.RegisterInput{
		Email:            req.Email,
		Username:         req.Username,
		Password:         req.Password,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		OrganizationSlug: req.OrganizationSlug,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, LoginResponse{
		Token:     token,
		User:      userInfo(user),
		ExpiresAt: time.Now().Add(utils.GetJWTExpireDuration()),
	})
}

// POST /api/auth/validate
// @Summary Validate token
// @Description Check a JWT token and return its claims
// @Tags auth
// @Accept json
// @Produce json
// @Param validate body ValidateRequest true "Token to validate"
// @Success 200 {object} handlers.ValidateResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /auth/validate [post]
func (h *AuthHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := utils.ValidateJWT(req.Token)
	if err != nil {
		c.JSON(http.StatusOK, ValidateResponse{Valid: false})
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusOK, ValidateResponse{Valid: false})
		return
	}

	c.JSON(http.StatusOK, ValidateResponse{
		Valid:     true,
		UserID:    userID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}
