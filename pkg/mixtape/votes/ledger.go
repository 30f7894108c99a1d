// Package votes is the per-user, per-tag vote ledger: one row per
// (user, tag), atomic upserts, and batched tally aggregation.
package votes

import (
	"fmt"

	"github.com/mikepea/mixtape/pkg/mixtape/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tally is the aggregated vote count for one tag
type Tally struct {
	Up   int64 `json:"up"`
	Down int64 `json:"down"`
}

// Cast records voter's vote on a tag. "up" and "down" upsert the
// ledger row in a single ON CONFLICT statement, so switching sides
// never leaves the voter counted in both tallies. "none" deletes the
// row and succeeds whether or not a vote existed.
func Cast(db *gorm.DB, userID, tagID uint, vote models.VoteType) error {
	switch vote {
	case models.VoteNone:
		return db.Where("user_id = ? AND tag_id = ?", userID, tagID).
			Delete(&models.UserVote{}).Error
	case models.VoteUp, models.VoteDown:
		row := models.UserVote{UserID: userID, TagID: tagID, VoteType: vote}
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "tag_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"vote_type", "updated_at"}),
		}).Create(&row).Error
	default:
		return fmt.Errorf("invalid vote type %q", vote)
	}
}

// TallyForTag aggregates the current ledger rows for one tag. Counts
// are always computed from the rows, never from a stored counter.
func TallyForTag(db *gorm.DB, tagID uint) (Tally, error) {
	tallies, err := TallyForTags(db, []uint{tagID})
	if err != nil {
		return Tally{}, err
	}
	return tallies[tagID], nil
}

// TallyForTags aggregates vote counts for many tags with a single
// grouped query. Tags with no votes are present in the result with
// zero counts.
func TallyForTags(db *gorm.DB, tagIDs []uint) (map[uint]Tally, error) {
	tallies := make(map[uint]Tally, len(tagIDs))
	for _, id := range tagIDs {
		tallies[id] = Tally{}
	}
	if len(tagIDs) == 0 {
		return tallies, nil
	}

	type row struct {
		TagID    uint
		VoteType models.VoteType
		Count    int64
	}
	var rows []row
	err := db.Model(&models.UserVote{}).
		Select("tag_id, vote_type, COUNT(*) as count").
		Where("tag_id IN ?", tagIDs).
		Group("tag_id").Group("vote_type").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		t := tallies[r.TagID]
		switch r.VoteType {
		case models.VoteUp:
			t.Up = r.Count
		case models.VoteDown:
			t.Down = r.Count
		}
		tallies[r.TagID] = t
	}
	return tallies, nil
}

// VoteOf returns the voter's current vote on a tag, or VoteNone.
func VoteOf(db *gorm.DB, userID, tagID uint) (models.VoteType, error) {
	byTag, err := VotesOfUser(db, userID, []uint{tagID})
	if err != nil {
		return models.VoteNone, err
	}
	if v, ok := byTag[tagID]; ok {
		return v, nil
	}
	return models.VoteNone, nil
}

// VotesOfUser returns the voter's current vote per tag in one query.
// Tags the user has not voted on are absent from the map.
func VotesOfUser(db *gorm.DB, userID uint, tagIDs []uint) (map[uint]models.VoteType, error) {
	byTag := make(map[uint]models.VoteType, len(tagIDs))
	if len(tagIDs) == 0 {
		return byTag, nil
	}

	var rows []models.UserVote
	err := db.Where("user_id = ? AND tag_id IN ?", userID, tagIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		byTag[r.TagID] = r.VoteType
	}
	return byTag, nil
}
