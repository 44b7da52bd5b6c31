package model

import (
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleMod   Role = "mod"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleMod:
		return true
	}
	return false
}

// IsAdmin is the capability check behind admin-only routes.
func IsAdmin(r Role) bool {
	return r == RoleAdmin
}

// IsActiveUser admits regular users and admins. Moderators and unknown roles are rejected.
func IsActiveUser(r Role) bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"uniqueIndex;size:320;not null"`
	HashedPassword string    `json:"-" gorm:"size:255;not null"` // Not exposed
	Role           Role      `json:"role" gorm:"size:16;not null;default:user"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
