package playlists

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mikepea/mixtape/pkg/mixtape/models"
	"gorm.io/gorm"
)

// TrackListError is a validation failure for a track list mutation.
// Errors holds one message per problem so a whole-list replace can
// report every missing ID at once.
type TrackListError struct {
	Errors []string
}

func (e *TrackListError) Error() string {
	return strings.Join(e.Errors, ", ")
}

// OrderedTracks returns a playlist's tracks in list order.
func OrderedTracks(db *gorm.DB, playlistID uint) ([]models.Track, error) {
	var entries []models.PlaylistTrack
	if err := db.Where("playlist_id = ?", playlistID).
		Order("position ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []models.Track{}, nil
	}

	ids := make([]uint, len(entries))
	for i, e := range entries {
		ids[i] = e.TrackID
	}

	var tracks []models.Track
	if err := db.Where("id IN ?", ids).Find(&tracks).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Track, len(tracks))
	for _, t := range tracks {
		byID[t.ID] = t
	}

	// Return tracks in entry order; entries whose track vanished are
	// skipped rather than surfaced as zero values.
	ordered := make([]models.Track, 0, len(entries))
	for _, e := range entries {
		if t, ok := byID[e.TrackID]; ok {
			ordered = append(ordered, t)
		}
	}
	return ordered, nil
}

// AddTrack appends a track to the end of the playlist's ordered list.
// Re-adding a track already present is a no-op success; a track ID
// that does not resolve is a TrackListError.
func AddTrack(db *gorm.DB, playlistID, trackID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var track models.Track
		if err := tx.First(&track, trackID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &TrackListError{Errors: []string{fmt.Sprintf("Track with ID %d not found", trackID)}}
			}
			return err
		}

		var existing models.PlaylistTrack
		err := tx.Where("playlist_id = ? AND track_id = ?", playlistID, trackID).
			First(&existing).Error
		if err == nil {
			return nil // already in the playlist
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var maxPos struct{ Max int }
		if err := tx.Model(&models.PlaylistTrack{}).
			Select("COALESCE(MAX(position), -1) as max").
			Where("playlist_id = ?", playlistID).
			Scan(&maxPos).Error; err != nil {
			return err
		}

		return tx.Create(&models.PlaylistTrack{
			PlaylistID: playlistID,
			TrackID:    trackID,
			Position:   maxPos.Max + 1,
		}).Error
	})
}

// RemoveTrack removes a track from the playlist if present. Removing
// an absent track is a no-op success, mirroring AddTrack's idempotency.
func RemoveTrack(db *gorm.DB, playlistID, trackID uint) error {
	return db.Where("playlist_id = ? AND track_id = ?", playlistID, trackID).
		Delete(&models.PlaylistTrack{}).Error
}

// ReplaceTracks replaces the playlist's whole ordered list. All IDs
// are checked with a single batched lookup; if any are missing or the
// request repeats an ID, nothing changes and the error reports every
// problem. On success positions are renumbered 0..n-1 in request order.
func ReplaceTracks(db *gorm.DB, playlistID uint, trackIDs []uint) error {
	seen := make(map[uint]bool, len(trackIDs))
	var dupes []string
	for _, id := range trackIDs {
		if seen[id] {
			dupes = append(dupes, fmt.Sprintf("Track ID %d appears more than once", id))
		}
		seen[id] = true
	}
	if len(dupes) > 0 {
		return &TrackListError{Errors: dupes}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if len(trackIDs) > 0 {
			var found []uint
			if err := tx.Model(&models.Track{}).
				Where("id IN ?", trackIDs).
				Pluck("id", &found).Error; err != nil {
				return err
			}
			if len(found) != len(trackIDs) {
				foundSet := make(map[uint]bool, len(found))
				for _, id := range found {
					foundSet[id] = true
				}
				var missing []string
				for _, id := range trackIDs {
					if !foundSet[id] {
						missing = append(missing, fmt.Sprintf("Track with ID %d not found", id))
					}
				}
				return &TrackListError{Errors: missing}
			}
		}

		if err := tx.Where("playlist_id = ?", playlistID).
			Delete(&models.PlaylistTrack{}).Error; err != nil {
			return err
		}

		for i, id := range trackIDs {
			entry := models.PlaylistTrack{
				PlaylistID: playlistID,
				TrackID:    id,
				Position:   i,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
