package models

import "time"

// Playlist represents a user-curated, ordered list of track references
type Playlist struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	Title     string    `gorm:"not null" json:"title"`
	IsPublic  bool      `gorm:"default:false;index" json:"is_public"`

	// Relationships
	Owner   User            `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Entries []PlaylistTrack `gorm:"foreignKey:PlaylistID" json:"entries,omitempty"`
	Tags    []Tag           `gorm:"foreignKey:PlaylistID" json:"tags,omitempty"`
}

// ResourceOwnerID implements authz.Resource
func (p *Playlist) ResourceOwnerID() uint {
	return p.OwnerID
}

// ResourceIsPublic implements authz.Resource
func (p *Playlist) ResourceIsPublic() bool {
	return p.IsPublic
}

// PlaylistTrack is one row of a playlist's ordered track list. The
// playlist order is the entries sorted by Position; positions may be
// sparse after removals and are renumbered on full replace.
type PlaylistTrack struct {
	ID         uint `gorm:"primarykey" json:"id"`
	PlaylistID uint `gorm:"not null;uniqueIndex:idx_playlist_track" json:"playlist_id"`
	TrackID    uint `gorm:"not null;uniqueIndex:idx_playlist_track" json:"track_id"`
	Position   int  `gorm:"not null" json:"position"`
}
