package models

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestAutoMigrate(t *testing.T) {
	db := setupTestDB(t)

	for _, model := range AllModels() {
		if !db.Migrator().HasTable(model) {
			t.Errorf("Expected table for %T to exist", model)
		}
	}
}

func TestUserUniqueEmail(t *testing.T) {
	db := setupTestDB(t)

	user := User{Email: "a@example.com", Username: "alice", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	dup := User{Email: "a@example.com", Username: "alice2", PasswordHash: "x"}
	if err := db.Create(&dup).Error; err == nil {
		t.Error("Expected duplicate email to fail")
	}
}

func TestUserUniqueUsername(t *testing.T) {
	db := setupTestDB(t)

	user := User{Email: "a@example.com", Username: "alice", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	dup := User{Email: "b@example.com", Username: "alice", PasswordHash: "x"}
	if err := db.Create(&dup).Error; err == nil {
		t.Error("Expected duplicate username to fail")
	}
}

func TestUsernameRegex(t *testing.T) {
	valid := []string{"a", "alice", "a_b-c", "0123456789abcdef"}
	for _, name := range valid {
		if !UsernameRegex.MatchString(name) {
			t.Errorf("Expected %q to be a valid username", name)
		}
	}

	invalid := []string{"", "with space", "too-long-username-x", "noël", "a.b"}
	for _, name := range invalid {
		if UsernameRegex.MatchString(name) {
			t.Errorf("Expected %q to be an invalid username", name)
		}
	}
}

func TestTagUniquePerPlaylist(t *testing.T) {
	db := setupTestDB(t)

	tag := Tag{PlaylistID: 1, Name: "chill", SuggestedByID: 1}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}

	// Same name on the same playlist must fail
	dup := Tag{PlaylistID: 1, Name: "chill", SuggestedByID: 2}
	if err := db.Create(&dup).Error; err == nil {
		t.Error("Expected duplicate tag name on one playlist to fail")
	}

	// Same name on another playlist is a distinct row
	other := Tag{PlaylistID: 2, Name: "chill", SuggestedByID: 1}
	if err := db.Create(&other).Error; err != nil {
		t.Errorf("Expected same name on another playlist to succeed: %v", err)
	}
}

func TestUserVoteUniquePerUserAndTag(t *testing.T) {
	db := setupTestDB(t)

	vote := UserVote{UserID: 1, TagID: 1, VoteType: VoteUp}
	if err := db.Create(&vote).Error; err != nil {
		t.Fatalf("Failed to create vote: %v", err)
	}

	dup := UserVote{UserID: 1, TagID: 1, VoteType: VoteDown}
	if err := db.Create(&dup).Error; err == nil {
		t.Error("Expected second vote row for same user and tag to fail")
	}
}

func TestPlaylistTrackUniquePerPlaylist(t *testing.T) {
	db := setupTestDB(t)

	entry := PlaylistTrack{PlaylistID: 1, TrackID: 1, Position: 0}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("Failed to create playlist entry: %v", err)
	}

	dup := PlaylistTrack{PlaylistID: 1, TrackID: 1, Position: 1}
	if err := db.Create(&dup).Error; err == nil {
		t.Error("Expected duplicate track in one playlist to fail")
	}
}

func TestNormalizeTagName(t *testing.T) {
	cases := map[string]string{
		"Chill":       "chill",
		"  roadtrip ": "roadtrip",
		"LoFi":        "lofi",
	}
	for in, want := range cases {
		if got := NormalizeTagName(in); got != want {
			t.Errorf("NormalizeTagName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidTagName(t *testing.T) {
	if ValidTagName("a") {
		t.Error("Expected single-character name to be invalid")
	}
	if !ValidTagName("ab") {
		t.Error("Expected two-character name to be valid")
	}
	if !ValidTagName("12345678901234567890") {
		t.Error("Expected twenty-character name to be valid")
	}
	if ValidTagName("123456789012345678901") {
		t.Error("Expected twenty-one-character name to be invalid")
	}
}

func TestIsAdmin(t *testing.T) {
	admin := User{Role: RoleAdmin}
	if !admin.IsAdmin() {
		t.Error("Expected admin role to report admin")
	}
	user := User{Role: RoleUser}
	if user.IsAdmin() {
		t.Error("Expected user role to not report admin")
	}
}
