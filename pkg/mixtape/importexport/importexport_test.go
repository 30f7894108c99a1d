package importexport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/mixtape/pkg/mixtape/auth"
	"github.com/mikepea/mixtape/pkg/mixtape/models"
	"github.com/mikepea/mixtape/pkg/mixtape/playlists"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, username string) models.User {
	hash, _ := auth.HashPassword("password123")
	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)
	api := r.Group("/api")
	api.Use(auth.AuthMiddleware())
	handler.RegisterRoutes(api)
	return r
}

func getAuthHeader(user models.User) string {
	token, _ := auth.GenerateToken(user.ID, user.Username, string(user.Role))
	return "Bearer " + token
}

func TestExport(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "a@example.com", "alice")
	other := createTestUser(t, db, "b@example.com", "bob")

	track1 := models.Track{Artist: "Queen", Title: "Bohemian Rhapsody"}
	track2 := models.Track{Artist: "David Bowie", Title: "Heroes"}
	db.Create(&track1)
	db.Create(&track2)

	playlist := models.Playlist{OwnerID: user.ID, Title: "Classics", IsPublic: true}
	db.Create(&playlist)
	playlists.AddTrack(db, playlist.ID, track2.ID)
	playlists.AddTrack(db, playlist.ID, track1.ID)
	db.Create(&models.Tag{PlaylistID: playlist.ID, Name: "rock", SuggestedByID: user.ID})

	// Someone else's playlist must not appear
	db.Create(&models.Playlist{OwnerID: other.ID, Title: "Not Mine", IsPublic: true})

	req, _ := http.NewRequest("GET", "/api/export", nil)
	req.Header.Set("Authorization", getAuthHeader(user))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var exported []ExportPlaylist
	json.Unmarshal(resp.Body.Bytes(), &exported)

	if len(exported) != 1 {
		t.Fatalf("Expected 1 playlist, got %d", len(exported))
	}
	if exported[0].Title != "Classics" {
		t.Errorf("Expected title Classics, got %s", exported[0].Title)
	}
	if len(exported[0].Tracks) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(exported[0].Tracks))
	}
	// List order is preserved in the export
	if exported[0].Tracks[0].Title != "Heroes" || exported[0].Tracks[1].Title != "Bohemian Rhapsody" {
		t.Errorf("Expected export in list order, got %+v", exported[0].Tracks)
	}
	if len(exported[0].Tags) != 1 || exported[0].Tags[0] != "rock" {
		t.Errorf("Expected tags [rock], got %v", exported[0].Tags)
	}
}

func TestImport(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "a@example.com", "alice")

	db.Create(&models.Track{Artist: "Queen", Title: "Bohemian Rhapsody"})

	reqBody := ImportRequest{
		Playlists: []ExportPlaylist{
			{
				Title:    "Imported Mix",
				IsPublic: true,
				Tracks: []ExportTrack{
					// Case differences still resolve against the catalog
					{Artist: "QUEEN", Title: "bohemian rhapsody"},
					{Artist: "Nobody", Title: "Unknown Song"},
				},
				Tags: []string{"Rock", "rock", "x"},
			},
		},
	}
	jsonBody, _ := json.Marshal(reqBody)

	req, _ := http.NewRequest("POST", "/api/import", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", getAuthHeader(user))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result ImportResult
	json.Unmarshal(resp.Body.Bytes(), &result)

	if result.Imported != 1 {
		t.Errorf("Expected 1 imported playlist, got %d", result.Imported)
	}
	// The unknown track is reported but does not sink the playlist
	if len(result.Errors) != 1 {
		t.Errorf("Expected 1 error for the unknown track, got %v", result.Errors)
	}

	var playlist models.Playlist
	if err := db.Where("title = ?", "Imported Mix").First(&playlist).Error; err != nil {
		t.Fatalf("Expected imported playlist to exist: %v", err)
	}
	if playlist.OwnerID != user.ID {
		t.Errorf("Expected importer as owner, got %d", playlist.OwnerID)
	}

	tracks, _ := playlists.OrderedTracks(db, playlist.ID)
	if len(tracks) != 1 || tracks[0].Title != "Bohemian Rhapsody" {
		t.Errorf("Expected the resolvable track only, got %+v", tracks)
	}

	// Tag names are normalized, deduplicated, and length-checked
	var tagRows []models.Tag
	db.Where("playlist_id = ?", playlist.ID).Find(&tagRows)
	if len(tagRows) != 1 || tagRows[0].Name != "rock" {
		t.Errorf("Expected single normalized tag rock, got %+v", tagRows)
	}
	if tagRows[0].SuggestedByID != user.ID {
		t.Errorf("Expected importer as suggester, got %d", tagRows[0].SuggestedByID)
	}
}

func TestImportEmptyTitleSkipped(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "a@example.com", "alice")

	reqBody := ImportRequest{
		Playlists: []ExportPlaylist{
			{Title: "   "},
			{Title: "Good One"},
		},
	}
	jsonBody, _ := json.Marshal(reqBody)

	req, _ := http.NewRequest("POST", "/api/import", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", getAuthHeader(user))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var result ImportResult
	json.Unmarshal(resp.Body.Bytes(), &result)

	if result.Imported != 1 || result.Skipped != 1 {
		t.Errorf("Expected 1 imported and 1 skipped, got %d/%d", result.Imported, result.Skipped)
	}
}

func TestExportEmpty(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "a@example.com", "alice")

	req, _ := http.NewRequest("GET", "/api/export", nil)
	req.Header.Set("Authorization", getAuthHeader(user))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}

	var exported []ExportPlaylist
	json.Unmarshal(resp.Body.Bytes(), &exported)
	if len(exported) != 0 {
		t.Errorf("Expected empty export, got %d playlists", len(exported))
	}
}
