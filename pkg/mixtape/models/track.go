package models

import "time"

// Track represents an entry in the shared track catalog. Tracks are
// never owned by a user; the catalog is mutated by admins only.
// Uniqueness on (artist, title) is case-insensitive and enforced by the
// handlers inside the same transaction as the write.
type Track struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Title     string    `gorm:"not null;index" json:"title"`
	Artist    string    `gorm:"not null;index" json:"artist"`
	AddedAt   time.Time `gorm:"autoCreateTime" json:"added_at"`
}
