package main

import (
	"context"
	"time"

	"github.com/yamidnozu/asistapp/internal/config"
	"github.com/yamidnozu/asistapp/internal/handlers"
	"github.com/yamidnozu/asistapp/internal/models"
	"github.com/yamidnozu/asistapp/internal/repository"
	"github.com/yamidnozu/asistapp/internal/services"
	"github.com/yamidnozu/asistapp/internal/token"
	"github.com/yamidnozu/asistapp/pkg/logger"
)

// appServices holds the wired services and handlers.
type appServices struct {
	authService *services.AuthService
	authHandler *handlers.AuthHandler
	userHandler *handlers.UserHandler
}

// bootstrap connects the database, runs migrations, and wires the auth core.
func bootstrap(cfg *config.Config) *appServices {
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()
	signer := token.NewManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessExpireMin)*time.Minute,
		time.Duration(cfg.JWT.RefreshExpireHour)*time.Hour,
	)

	authService := services.NewAuthService(
		repository.NewGormUserRepository(db),
		repository.NewGormRefreshTokenRepository(db),
		signer,
	)

	if err := authService.CreateAdminIfNotExists(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		authService: authService,
		authHandler: handlers.NewAuthHandler(authService),
		userHandler: handlers.NewUserHandler(authService),
	}
}
