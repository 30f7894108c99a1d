package models

import (
	"strings"
	"time"
)

// Tag name length bounds, in characters after normalization.
const (
	TagNameMinLen = 2
	TagNameMaxLen = 20
)

// Tag is a community-suggested label on a single playlist. The same
// name may exist on many playlists as distinct rows; uniqueness is
// per playlist, backed by the composite index.
type Tag struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	PlaylistID    uint      `gorm:"not null;uniqueIndex:idx_playlist_tag_name" json:"playlist_id"`
	Name          string    `gorm:"not null;uniqueIndex:idx_playlist_tag_name" json:"name"`
	SuggestedByID uint      `gorm:"not null;index" json:"suggested_by_id"`
}

// NormalizeTagName trims whitespace and lowercases a tag name. All tag
// names are stored normalized, which makes per-playlist uniqueness
// case-insensitive.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidTagName reports whether a normalized name is within length bounds
func ValidTagName(name string) bool {
	n := len([]rune(name))
	return n >= TagNameMinLen && n <= TagNameMaxLen
}
