package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yamidnozu/asistapp/internal/services"
	"github.com/yamidnozu/asistapp/pkg/response"
)

// UserHandler exposes the administrative session controls.
type UserHandler struct {
	authService *services.AuthService
}

func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

func userIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid user id")
		return 0, false
	}
	return uint(id), true
}

// Deactivate handles POST /api/users/:id/deactivate. The account is disabled
// and every session ends; outstanding access tokens fail on their next use.
func (h *UserHandler) Deactivate(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	if err := h.authService.SetUserActive(c.Request.Context(), id, false); err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "user deactivated"})
}

// Activate handles POST /api/users/:id/activate.
func (h *UserHandler) Activate(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	if err := h.authService.SetUserActive(c.Request.Context(), id, true); err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "user activated"})
}

// RevokeSessions handles POST /api/users/:id/revoke-sessions. Bumps the
// token version and revokes all refresh tokens, ending every session the
// user has anywhere.
func (h *UserHandler) RevokeSessions(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	if err := h.authService.RevokeSessions(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "sessions revoked"})
}
