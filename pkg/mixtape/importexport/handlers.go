package importexport

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/mixtape/pkg/mixtape/auth"
	"github.com/mikepea/mixtape/pkg/mixtape/models"
	"github.com/mikepea/mixtape/pkg/mixtape/playlists"
	"gorm.io/gorm"
)

// Handler handles playlist import/export requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new import/export handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// ExportTrack identifies a track by its catalog pair rather than a
// database ID, so exports stay portable across installations.
type ExportTrack struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// ExportPlaylist represents one playlist in an export document
type ExportPlaylist struct {
	Title    string        `json:"title"`
	IsPublic bool          `json:"is_public"`
	Tracks   []ExportTrack `json:"tracks"`
	Tags     []string      `json:"tags"`
}

// ImportRequest represents an import request
type ImportRequest struct {
	Playlists []ExportPlaylist `json:"playlists" binding:"required"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// resolveTrack finds a catalog track by case-insensitive (artist, title)
func (h *Handler) resolveTrack(tx *gorm.DB, artist, title string) (*models.Track, error) {
	var track models.Track
	err := tx.Where("LOWER(artist) = ? AND LOWER(title) = ?",
		strings.ToLower(artist), strings.ToLower(title)).First(&track).Error
	if err != nil {
		return nil, err
	}
	return &track, nil
}

// Export exports the requester's playlists
// @Summary Export playlists
// @Description Export all of the requester's playlists with tracks and tags
// @Tags importexport
// @Produce json
// @Success 200 {array} ExportPlaylist
// @Security BearerAuth
// @Router /export [get]
func (h *Handler) Export(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var owned []models.Playlist
	if err := h.db.Where("owner_id = ?", userID).Order("created_at ASC").Find(&owned).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch playlists"})
		return
	}

	out := make([]ExportPlaylist, len(owned))
	for i, playlist := range owned {
		trackRows, err := playlists.OrderedTracks(h.db, playlist.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tracks"})
			return
		}
		exportTracks := make([]ExportTrack, len(trackRows))
		for j, t := range trackRows {
			exportTracks[j] = ExportTrack{Artist: t.Artist, Title: t.Title}
		}

		var tagNames []string
		if err := h.db.Model(&models.Tag{}).
			Where("playlist_id = ?", playlist.ID).
			Order("name ASC").
			Pluck("name", &tagNames).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
			return
		}
		if tagNames == nil {
			tagNames = []string{}
		}

		out[i] = ExportPlaylist{
			Title:    playlist.Title,
			IsPublic: playlist.IsPublic,
			Tracks:   exportTracks,
			Tags:     tagNames,
		}
	}

	if c.Query("download") == "true" {
		c.Header("Content-Disposition", "attachment; filename=mixtape-export.json")
	}

	c.JSON(http.StatusOK, out)
}

// Import imports playlists for the requester
// @Summary Import playlists
// @Description Create playlists from an export document; tracks are resolved against the catalog by artist and title, unknown tracks are skipped and reported
// @Tags importexport
// @Accept json
// @Produce json
// @Param request body ImportRequest true "Playlists to import"
// @Success 200 {object} ImportResult
// @Security BearerAuth
// @Router /import [post]
func (h *Handler) Import(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := ImportResult{
		Errors: []string{},
	}

	for i, item := range req.Playlists {
		if strings.TrimSpace(item.Title) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("playlist %d: title must not be empty", i))
			result.Skipped++
			continue
		}

		err := h.db.Transaction(func(tx *gorm.DB) error {
			playlist := models.Playlist{
				OwnerID:  userID,
				Title:    item.Title,
				IsPublic: item.IsPublic,
			}
			if err := tx.Create(&playlist).Error; err != nil {
				return err
			}

			position := 0
			for _, pair := range item.Tracks {
				track, err := h.resolveTrack(tx, pair.Artist, pair.Title)
				if err != nil {
					result.Errors = append(result.Errors,
						fmt.Sprintf("playlist %d: track not in catalog: %s - %s", i, pair.Artist, pair.Title))
					continue
				}
				entry := models.PlaylistTrack{
					PlaylistID: playlist.ID,
					TrackID:    track.ID,
					Position:   position,
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
				position++
			}

			seen := make(map[string]bool)
			for _, rawName := range item.Tags {
				name := models.NormalizeTagName(rawName)
				if !models.ValidTagName(name) || seen[name] {
					continue
				}
				seen[name] = true
				tag := models.Tag{
					PlaylistID:    playlist.ID,
					Name:          name,
					SuggestedByID: userID,
				}
				if err := tx.Create(&tag).Error; err != nil {
					return err
				}
			}

			return nil
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("playlist %d: %s", i, err.Error()))
			result.Skipped++
			continue
		}

		result.Imported++
	}

	c.JSON(http.StatusOK, result)
}

// RegisterRoutes registers import/export routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/import", h.Import)
	rg.GET("/export", h.Export)
}
