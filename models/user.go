package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the closed set of identity roles
type Role string

const (
	RolePatron Role = "patron"
	RoleStaff  Role = "staff"
	RoleOwner  Role = "owner"
)

// ParseRole maps a wire value onto a known Role
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RolePatron, RoleStaff, RoleOwner:
		return Role(s), true
	}
	return "", false
}

// IsOperator reports whether the role is provisioned through the staff passkey
func (r Role) IsOperator() bool {
	switch r {
	case RoleStaff, RoleOwner:
		return true
	case RolePatron:
		return false
	}
	return false
}

// User is a persisted identity. Email is unique per role, not globally.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"not null;uniqueIndex:idx_users_email_role"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         Role      `json:"role" gorm:"not null;uniqueIndex:idx_users_email_role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// PublicUser is the identity shape returned next to a token
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
