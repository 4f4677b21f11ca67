package main

import (
	"github.com/gin-gonic/gin"
	"github.com/yamidnozu/asistapp/internal/middleware"
	"github.com/yamidnozu/asistapp/internal/models"
	"github.com/yamidnozu/asistapp/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Tight limit on the unauthenticated credential endpoints.
	loginLimiter := middleware.NewRateLimiter(5, 10)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "asistapp-auth"})
	})

	api := r.Group("/api")
	{
		// Public auth routes
		auth := api.Group("/auth", loginLimiter.Middleware())
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Authenticated routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(svc.authService))
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)
		}

		// Admin-only session controls
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(svc.authService), middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/users/:id/deactivate", svc.userHandler.Deactivate)
			admin.POST("/users/:id/activate", svc.userHandler.Activate)
			admin.POST("/users/:id/revoke-sessions", svc.userHandler.RevokeSessions)
		}
	}
}
