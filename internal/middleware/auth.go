package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yamidnozu/asistapp/internal/models"
	"github.com/yamidnozu/asistapp/internal/services"
	"github.com/yamidnozu/asistapp/pkg/response"
)

// ContextPrincipal is the gin context key holding the verified principal.
const ContextPrincipal = "principal"

// TokenVerifier validates an access token against current user state.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, tokenString string) (*services.Principal, error)
}

// AuthRequired verifies the Bearer token on every request. Verification hits
// the user record each time, so deactivation and version bumps take effect
// immediately. Every authentication failure gets the same 401 body.
func AuthRequired(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		principal, err := verifier.VerifyAccessToken(c.Request.Context(), parts[1])
		if err != nil {
			if services.IsAuthenticationError(err) {
				response.Unauthorized(c, "authentication required")
			} else {
				response.ServerError(c, "internal server error")
			}
			c.Abort()
			return
		}

		c.Set(ContextPrincipal, principal)
		c.Next()
	}
}

// RequireRole gates the request on the principal's role.
func RequireRole(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := services.RequireRole(GetPrincipal(c), allowed...); err != nil {
			response.Forbidden(c, "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the verified principal, or nil before AuthRequired ran.
func GetPrincipal(c *gin.Context) *services.Principal {
	if v, exists := c.Get(ContextPrincipal); exists {
		if p, ok := v.(*services.Principal); ok {
			return p
		}
	}
	return nil
}

// GetUserID returns the current user's ID, or 0 when unauthenticated.
func GetUserID(c *gin.Context) uint {
	if p := GetPrincipal(c); p != nil {
		return p.ID
	}
	return 0
}
