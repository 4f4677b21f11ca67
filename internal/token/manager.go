package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by both access and refresh tokens; only the TTL differs.
// TokenVersion is cross-checked against the user record on every
// verification, which is what lets an administrator kill outstanding
// access tokens before their natural expiry.
type Claims struct {
	UserID       uint   `json:"uid"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion int    `json:"tkv"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 tokens with per-kind TTLs.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (m *Manager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

// SignAccess mints a short-lived access token.
func (m *Manager) SignAccess(userID uint, email, role string, tokenVersion int) (string, error) {
	return m.sign(userID, email, role, tokenVersion, m.accessTTL)
}

// SignRefresh mints a long-lived refresh token. The jti claim makes every
// token unique, so a rotated token can never collide with its predecessor
// even when both are minted within the same second.
func (m *Manager) SignRefresh(userID uint, email, role string, tokenVersion int) (string, error) {
	return m.sign(userID, email, role, tokenVersion, m.refreshTTL)
}

func (m *Manager) sign(userID uint, email, role string, tokenVersion int, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:       userID,
		Email:        email,
		Role:         role,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(m.secret)
}

// Parse verifies signature and expiry and returns the claims.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// DecodeUnverified extracts claims without checking the signature. Used only
// to read an expiry for bookkeeping; never trust the result for auth.
func (m *Manager) DecodeUnverified(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
