package models

import "time"

// VoteType is the direction of a vote on a tag
type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
	// VoteNone is only valid in requests; it removes the voter's row
	// and is never stored.
	VoteNone VoteType = "none"
)

// UserVote is the vote ledger row: at most one per (user, tag),
// enforced by the composite unique index. Casting again overwrites the
// type; casting "none" deletes the row.
type UserVote struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_tag_vote" json:"user_id"`
	TagID     uint      `gorm:"not null;uniqueIndex:idx_user_tag_vote" json:"tag_id"`
	VoteType  VoteType  `gorm:"type:varchar(10);not null" json:"vote_type"`
}
