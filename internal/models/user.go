package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the closed set of roles a user can act under.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
	RoleTeacher     Role = "teacher"
	RoleStudent     Role = "student"
	RoleGuardian    Role = "guardian"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoordinator, RoleTeacher, RoleStudent, RoleGuardian:
		return true
	}
	return false
}

// User represents an account inside an institution.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	InstitutionID *uint          `gorm:"index" json:"institution_id,omitempty"`
	Email         string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash  string         `gorm:"size:255;not null" json:"-"`
	FullName      string         `gorm:"size:255" json:"full_name"`
	Role          Role           `gorm:"size:32;default:student" json:"role"`
	TokenVersion  int            `gorm:"not null;default:0" json:"-"` // only ever incremented
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	LastLogin     *time.Time     `json:"last_login,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }
