package repository

import (
	"context"

	"github.com/yamidnozu/asistapp/internal/models"
)

// UserRepository is the narrow persistence surface the auth core needs for
// users. Lookups return (nil, nil) when no row matches; a non-nil error
// always means an infrastructure failure, never "not found".
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	// IncrementTokenVersion atomically bumps token_version and returns the
	// new value. There is no way to decrement.
	IncrementTokenVersion(ctx context.Context, id uint) (int, error)
	SetActive(ctx context.Context, id uint, active bool) error
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
	TouchLastLogin(ctx context.Context, id uint) error
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

// RefreshTokenRepository tracks issued refresh tokens by digest. Raw tokens
// never cross this boundary.
type RefreshTokenRepository interface {
	Create(ctx context.Context, record *models.RefreshToken) error
	// FindActive returns the non-revoked record matching the digest, or
	// (nil, nil) when there is none. Expiry is the caller's concern.
	FindActive(ctx context.Context, userID uint, tokenHash string) (*models.RefreshToken, error)
	// Revoke flips revoked to true only if it is still false, and reports
	// whether this call was the one that flipped it. Two concurrent
	// rotations of the same token therefore cannot both succeed.
	Revoke(ctx context.Context, id uint) (bool, error)
	// RevokeAllForUser revokes every non-revoked token of a user and
	// returns how many rows changed.
	RevokeAllForUser(ctx context.Context, userID uint) (int64, error)
}
