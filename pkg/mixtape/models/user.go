package models

import (
	"regexp"
	"time"

	"gorm.io/gorm"
)

// Role represents a user's system-wide role
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// UsernameRegex constrains display names to 1-16 letters, numbers,
// hyphens and underscores.
var UsernameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,16}$`)

// User represents an account in the system
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `json:"-"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	Role         Role           `gorm:"type:varchar(20);default:'user'" json:"role"`

	// Relationships
	Playlists []Playlist `gorm:"foreignKey:OwnerID" json:"playlists,omitempty"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
