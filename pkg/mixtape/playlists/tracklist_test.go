package playlists

import (
	"errors"
	"testing"

	"github.com/mikepea/mixtape/pkg/mixtape/models"
	"gorm.io/gorm"
)

func createTestTrack(t *testing.T, db *gorm.DB, artist, title string) models.Track {
	track := models.Track{Artist: artist, Title: title}
	if err := db.Create(&track).Error; err != nil {
		t.Fatalf("Failed to create test track: %v", err)
	}
	return track
}

func createTestPlaylist(t *testing.T, db *gorm.DB, ownerID uint, title string, isPublic bool) models.Playlist {
	playlist := models.Playlist{OwnerID: ownerID, Title: title, IsPublic: isPublic}
	if err := db.Create(&playlist).Error; err != nil {
		t.Fatalf("Failed to create test playlist: %v", err)
	}
	return playlist
}

func trackIDs(tracks []models.Track) []uint {
	ids := make([]uint, len(tracks))
	for i, tr := range tracks {
		ids[i] = tr.ID
	}
	return ids
}

func TestAddTrackAppends(t *testing.T) {
	db := setupTestDB(t)
	playlist := createTestPlaylist(t, db, 1, "Mix", true)
	a := createTestTrack(t, db, "Artist A", "Song One")
	b := createTestTrack(t, db, "Artist B", "Song Two")

	if err := AddTrack(db, playlist.ID, a.ID); err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}
	if err := AddTrack(db, playlist.ID, b.ID); err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}

	ordered, err := OrderedTracks(db, playlist.ID)
	if err != nil {
		t.Fatalf("OrderedTracks failed: %v", err)
	}

	got := trackIDs(ordered)
	if len(got) != 2 || got[0] != a.ID || got[1] != b.ID {
		t.Errorf("Expected order [%d %d], got %v", a.ID, b.ID, got)
	}
}

func TestAddTrackIdempotent(t *testing.T) {
	db := setupTestDB(t)
	playlist := createTestPlaylist(t, db, 1, "Mix", true)
	a := createTestTrack(t, db, "Artist A", "Song One")

	AddTrack(db, playlist.ID, a.ID)
	if err := AddTrack(db, playlist.ID, a.ID); err != nil {
		t.Errorf("Expected re-add to be a no-op, got %v", err)
	}

	ordered, _ := OrderedTracks(db, playlist.ID)
	if len(ordered) != 1 {
		t.Errorf("Expected a single entry, got %d", len(ordered))
	}
}

func TestAddTrackUnknown(t *testing.T) {
	db := setupTestDB(t)
	playlist := createTestPlaylist(t, db, 1, "Mix", true)

	err := AddTrack(db, playlist.ID, 999)
	var tlErr *TrackListError
	if !errors.As(err, &tlErr) {
		t.Fatalf("Expected TrackListError, got %v", err)
	}
	if len(tlErr.Errors) != 1 {
		t.Errorf("Expected one error message, got %v", tlErr.Errors)
	}
}

func TestRemoveTrackKeepsOrder(t *testing.T) {
	db := setupTestDB(t)
	playlist := createTestPlaylist(t, db, 1, "Mix", true)
	a := createTestTrack(t, db, "Artist A", "Song One")
	b := createTestTrack(t, db, "Artist B", "Song Two")
	c := createTestTrack(t, db, "Artist C", "Song Three")

	AddTrack(db, playlist.ID, a.ID)
	AddTrack(db, playlist.ID, b.ID)
	AddTrack(db, playlist.ID, c.ID)

	if err := RemoveTrack(db, playlist.ID, b.ID); err != nil {
		t.Fatalf("RemoveTrack failed: %v", err)
	}

	// Positions stay sparse; the remaining order is preserved
	ordered, _ := OrderedTracks(db, playlist.ID)
	got := trackIDs(ordered)
	if len(got) != 2 || got[0] != a.ID || got[1] != c.ID {
		t.Errorf("Expected order [%d %d], got %v", a.ID, c.ID, got)
	}

	// New tracks still land at the end
	d := createTestTrack(t, db, "Artist D", "Song Four")
	AddTrack(db, playlist.ID, d.ID)
	ordered, _ = OrderedTracks(db, playlist.ID)
	got = trackIDs(ordered)
	if got[len(got)-1] != d.ID {
		t.Errorf("Expected %d appended at the end, got %v", d.ID, got)
	}
}

func TestRemoveTrackAbsentIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	playlist := createTestPlaylist(t, db, 1, "Mix", true)

	if err := RemoveTrack(db, playlist.ID, 999); err != nil {
		t.Errorf("Expected removing an absent track to succeed, got %v", err)
	}
}

func TestReplaceTracks(t *testing.T) {
	db := setupTestDB(t)
	playlist := createTestPlaylist(t, db, 1, "Mix", true)
	a := createTestTrack(t, db, "Artist A", "Song One")
	b := createTestTrack(t, db, "Artist B", "Song Two")
	c := createTestTrack(t, db, "Artist C", "Song Three")

	AddTrack(db, playlist.ID, a.ID)

	if err := ReplaceTracks(db, playlist.ID, []uint{c.ID, b.ID}); err != nil {
		t.Fatalf("ReplaceTracks failed: %v", err)
	}

	ordered, _ := OrderedTracks(db, playlist.ID)
	got := trackIDs(ordered)
	if len(got) != 2 || got[0] != c.ID || got[1] != b.ID {
		t.Errorf("Expected order [%d %d], got %v", c.ID, b.ID, got)
	}

	// Positions are renumbered from zero
	var entries []models.PlaylistTrack
	db.Where("playlist_id = ?", playlist.ID).Order("position ASC").Find(&entries)
	for i, e := range entries {
		if e.Position != i {
			t.Errorf("Expected position %d, got %d", i, e.Position)
		}
	}
}

func TestReplaceTracksAllOrNothing(t *testing.T) {
	db := setupTestDB(t)
	playlist := createTestPlaylist(t, db, 1, "Mix", true)
	a := createTestTrack(t, db, "Artist A", "Song One")

	AddTrack(db, playlist.ID, a.ID)

	err := ReplaceTracks(db, playlist.ID, []uint{a.ID, 998, 999})
	var tlErr *TrackListError
	if !errors.As(err, &tlErr) {
		t.Fatalf("Expected TrackListError, got %v", err)
	}
	if len(tlErr.Errors) != 2 {
		t.Errorf("Expected every missing ID to be reported, got %v", tlErr.Errors)
	}

	// The original list must be untouched
	ordered, _ := OrderedTracks(db, playlist.ID)
	got := trackIDs(ordered)
	if len(got) != 1 || got[0] != a.ID {
		t.Errorf("Expected original list [%d] preserved, got %v", a.ID, got)
	}
}

func TestReplaceTracksRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	playlist := createTestPlaylist(t, db, 1, "Mix", true)
	a := createTestTrack(t, db, "Artist A", "Song One")

	err := ReplaceTracks(db, playlist.ID, []uint{a.ID, a.ID})
	var tlErr *TrackListError
	if !errors.As(err, &tlErr) {
		t.Fatalf("Expected TrackListError for repeated ID, got %v", err)
	}
}

func TestReplaceTracksEmptyClearsList(t *testing.T) {
	db := setupTestDB(t)
	playlist := createTestPlaylist(t, db, 1, "Mix", true)
	a := createTestTrack(t, db, "Artist A", "Song One")

	AddTrack(db, playlist.ID, a.ID)

	if err := ReplaceTracks(db, playlist.ID, []uint{}); err != nil {
		t.Fatalf("ReplaceTracks with empty list failed: %v", err)
	}

	ordered, _ := OrderedTracks(db, playlist.ID)
	if len(ordered) != 0 {
		t.Errorf("Expected empty list, got %d tracks", len(ordered))
	}
}
