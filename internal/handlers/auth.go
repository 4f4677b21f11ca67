package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yamidnozu/asistapp/internal/middleware"
	"github.com/yamidnozu/asistapp/internal/services"
	"github.com/yamidnozu/asistapp/pkg/logger"
	"github.com/yamidnozu/asistapp/pkg/response"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, result)
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "refresh token is required")
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, pair)
}

// Logout handles POST /api/auth/logout. With a refresh token in the body it
// ends that session only; without, it ends every session of the caller.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req logoutRequest
	_ = c.ShouldBindJSON(&req)

	userID := middleware.GetUserID(c)
	if err := h.authService.Logout(c.Request.Context(), userID, req.RefreshToken); err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "logged out"})
}

// GetCurrentUser handles GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authService.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}

	response.Success(c, user)
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "old password and a new password of at least 8 characters are required")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.authService.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "password changed"})
}

// writeServiceError maps domain errors to the response envelope. The
// internal cause of authentication failures never reaches the client.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case services.IsValidationError(err):
		response.BadRequest(c, err.Error())
	case services.IsAuthenticationError(err):
		response.Unauthorized(c, "authentication failed")
	case services.IsAuthorizationError(err):
		response.Forbidden(c, "insufficient role")
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		response.ServerError(c, "internal server error")
	}
}
