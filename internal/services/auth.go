package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/yamidnozu/asistapp/internal/models"
	"github.com/yamidnozu/asistapp/internal/repository"
	"github.com/yamidnozu/asistapp/internal/token"
	"github.com/yamidnozu/asistapp/internal/utils"
	"github.com/yamidnozu/asistapp/pkg/logger"
)

// AuthService implements the authentication and session lifecycle: login,
// access-token verification, refresh rotation, and revocation. All durable
// state lives behind the injected repositories; the service itself keeps no
// mutable state between calls.
type AuthService struct {
	users  repository.UserRepository
	tokens repository.RefreshTokenRepository
	signer *token.Manager
}

func NewAuthService(users repository.UserRepository, tokens repository.RefreshTokenRepository, signer *token.Manager) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		signer: signer,
	}
}

// Principal is the verified identity produced by a successful access-token
// verification, handed to downstream authorization.
type Principal struct {
	ID           uint        `json:"id"`
	Email        string      `json:"email"`
	Role         models.Role `json:"role"`
	TokenVersion int         `json:"-"`
}

// TokenPair is an access/refresh pair. ExpiresIn is the access token's
// lifetime in seconds.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginResult carries the issued pair plus the authenticated user.
type LoginResult struct {
	TokenPair
	User *models.User `json:"user"`
}

// Login verifies the credentials and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, &ValidationError{Cause: "email and password are required"}
	}

	user, err := s.verifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to record last login")
	}

	return &LoginResult{TokenPair: *pair, User: user}, nil
}

// verifyCredentials is read-only. Unknown email and wrong password share one
// failure value; the inactive case is distinguishable in logs only.
func (s *AuthService) verifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	if user == nil {
		logger.Debug().Str("email", email).Msg("login rejected: unknown email")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		logger.Debug().Uint("user_id", user.ID).Msg("login rejected: inactive user")
		return nil, ErrInactiveUser
	}
	if !utils.CheckPassword(password, user.PasswordHash) {
		logger.Debug().Uint("user_id", user.ID).Msg("login rejected: password mismatch")
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// issueTokens signs an access/refresh pair and persists the refresh token's
// digest. If the insert fails the whole operation fails; tokens computed in
// memory must never escape unpersisted.
func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, err := s.signer.SignAccess(user.ID, user.Email, string(user.Role), user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := s.signer.SignRefresh(user.ID, user.Email, string(user.Role), user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	// Prefer the token's own exp claim for the record expiry; fall back to
	// now + TTL if it cannot be read.
	expiresAt := time.Now().Add(s.signer.RefreshTTL())
	if claims, err := s.signer.DecodeUnverified(refreshToken); err == nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	record := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: expiresAt,
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.signer.AccessTTL().Seconds()),
	}, nil
}

// VerifyAccessToken validates signature and expiry, then cross-checks the
// embedded token version and active flag against the current user record.
// The read is never cached, so a version bump or deactivation takes effect
// on the very next request.
func (s *AuthService) VerifyAccessToken(ctx context.Context, tokenString string) (*Principal, error) {
	claims, err := s.signer.Parse(tokenString)
	if err != nil {
		logger.Debug().Err(err).Msg("access token rejected")
		return nil, ErrTokenInvalid
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup user by id: %w", err)
	}
	if user == nil || !user.IsActive {
		logger.Debug().Uint("user_id", claims.UserID).Msg("access token rejected: user missing or inactive")
		return nil, ErrUserNotFoundOrInactive
	}
	if claims.TokenVersion != user.TokenVersion {
		logger.Debug().
			Uint("user_id", user.ID).
			Int("claim_version", claims.TokenVersion).
			Int("current_version", user.TokenVersion).
			Msg("access token rejected: version changed")
		return nil, ErrTokenVersionMismatch
	}

	return &Principal{
		ID:           claims.UserID,
		Email:        claims.Email,
		Role:         models.Role(claims.Role),
		TokenVersion: claims.TokenVersion,
	}, nil
}

// Refresh rotates a refresh token: the presented token is consumed and a new
// pair is issued. Consumption is a conditional update on the revoked column,
// so of two concurrent calls with the same token exactly one wins; the loser
// fails like any other invalid token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, &ValidationError{Cause: "refresh token is required"}
	}

	claims, err := s.signer.Parse(refreshToken)
	if err != nil {
		logger.Debug().Err(err).Msg("refresh token rejected")
		return nil, ErrTokenInvalid
	}

	record, err := s.tokens.FindActive(ctx, claims.UserID, hashToken(refreshToken))
	if err != nil {
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}
	if record == nil {
		logger.Debug().Uint("user_id", claims.UserID).Msg("refresh rejected: token unknown or revoked")
		return nil, ErrRefreshTokenInvalid
	}

	if time.Now().After(record.ExpiresAt) {
		// Hygiene: flip time-expired rows to revoked instead of leaving
		// them merely expired.
		if _, err := s.tokens.Revoke(ctx, record.ID); err != nil {
			logger.Warn().Err(err).Uint("token_id", record.ID).Msg("failed to revoke expired refresh token")
		}
		logger.Debug().Uint("user_id", claims.UserID).Msg("refresh rejected: token expired")
		return nil, ErrRefreshTokenInvalid
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup user by id: %w", err)
	}
	if user == nil || !user.IsActive {
		logger.Debug().Uint("user_id", record.UserID).Msg("refresh rejected: user missing or inactive")
		return nil, ErrUserNotFoundOrInactive
	}
	if claims.TokenVersion != user.TokenVersion {
		logger.Debug().Uint("user_id", user.ID).Msg("refresh rejected: version changed")
		return nil, ErrTokenVersionMismatch
	}

	consumed, err := s.tokens.Revoke(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}
	if !consumed {
		// A concurrent rotation got there first.
		logger.Debug().Uint("token_id", record.ID).Msg("refresh rejected: lost rotation race")
		return nil, ErrRefreshTokenInvalid
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes one refresh token when given, or every refresh token of the
// user when the token is empty. Revoking an already-unknown token is a no-op.
func (s *AuthService) Logout(ctx context.Context, userID uint, refreshToken string) error {
	if refreshToken == "" {
		_, err := s.RevokeAll(ctx, userID)
		return err
	}

	record, err := s.tokens.FindActive(ctx, userID, hashToken(refreshToken))
	if err != nil {
		return fmt.Errorf("lookup refresh token: %w", err)
	}
	if record == nil {
		return nil
	}
	if _, err := s.tokens.Revoke(ctx, record.ID); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAll marks every outstanding refresh token of the user revoked and
// returns how many were affected.
func (s *AuthService) RevokeAll(ctx context.Context, userID uint) (int64, error) {
	count, err := s.tokens.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke refresh tokens: %w", err)
	}
	if count > 0 {
		logger.Info().Uint("user_id", userID).Int64("count", count).Msg("refresh tokens revoked")
	}
	return count, nil
}

// BumpTokenVersion increments the user's token version, which immediately
// invalidates every previously issued access token regardless of its own
// expiry. This is the stronger control refresh-token revocation cannot give,
// since access tokens are otherwise stateless until they expire.
func (s *AuthService) BumpTokenVersion(ctx context.Context, userID uint) (int, error) {
	version, err := s.users.IncrementTokenVersion(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("bump token version: %w", err)
	}
	logger.Info().Uint("user_id", userID).Int("token_version", version).Msg("token version bumped")
	return version, nil
}

// RevokeSessions ends every session of a user: bumps the token version and
// revokes all refresh tokens.
func (s *AuthService) RevokeSessions(ctx context.Context, userID uint) error {
	if _, err := s.BumpTokenVersion(ctx, userID); err != nil {
		return err
	}
	_, err := s.RevokeAll(ctx, userID)
	return err
}

// SetUserActive activates or deactivates an account. Deactivation also ends
// every session; the active cross-check in VerifyAccessToken makes it bite
// on the next request.
func (s *AuthService) SetUserActive(ctx context.Context, userID uint, active bool) error {
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	if !active {
		return s.RevokeSessions(ctx, userID)
	}
	return nil
}

// ChangePassword verifies the old password, stores the new hash, and ends
// every session so tokens minted under the old password die with it.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return &ValidationError{Cause: "old and new password are required"}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user by id: %w", err)
	}
	if user == nil || !user.IsActive {
		return ErrUserNotFoundOrInactive
	}
	if !utils.CheckPassword(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return s.RevokeSessions(ctx, userID)
}

// GetUserByID loads a user for the authenticated "me" endpoint.
func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup user by id: %w", err)
	}
	return user, nil
}

// CreateAdminIfNotExists seeds the default admin account on first boot.
func (s *AuthService) CreateAdminIfNotExists(ctx context.Context) error {
	count, err := s.users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword("admin")
	if err != nil {
		return err
	}
	admin := &models.User{
		Email:        "admin@asistapp.local",
		PasswordHash: hash,
		FullName:     "Administrator",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	return s.users.Create(ctx, admin)
}

// RequireRole passes when the principal's role is in the allowed set. Pure
// function, no I/O.
func RequireRole(p *Principal, allowed ...models.Role) error {
	if p == nil {
		return ErrInsufficientRole
	}
	for _, role := range allowed {
		if p.Role == role {
			return nil
		}
	}
	return ErrInsufficientRole
}

// hashToken digests a raw refresh token for storage. A fast hash is the
// right tool here: the token is high-entropy and signed, not a user-chosen
// secret, so offline brute force of the digest is not the threat model.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
