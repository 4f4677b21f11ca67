package models

import "time"

// RefreshToken stores the digest of an issued refresh token. The raw token
// never touches the database; callers hash before they get here. Revoked is
// monotonic: once true it never flips back. Expired rows accumulate until an
// external housekeeping job purges them.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	TokenHash string    `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	Revoked   bool      `gorm:"index;not null;default:false" json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }
