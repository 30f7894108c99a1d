package tracks

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/mixtape/pkg/mixtape/authz"
	"github.com/mikepea/mixtape/pkg/mixtape/models"
	"github.com/mikepea/mixtape/pkg/mixtape/pagination"
	"gorm.io/gorm"
)

// Handler handles track catalog requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new tracks handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateTrackRequest represents the request to create a track
type CreateTrackRequest struct {
	Title  string `json:"title" binding:"required"`
	Artist string `json:"artist" binding:"required"`
}

// UpdateTrackRequest represents the request to update a track
type UpdateTrackRequest struct {
	Title  *string `json:"title"`
	Artist *string `json:"artist"`
}

// TrackResponse represents a track in API responses
type TrackResponse struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	AddedAt string `json:"added_at"`
}

const timeFormat = "2006-01-02T15:04:05Z"

func trackToResponse(t models.Track) TrackResponse {
	return TrackResponse{
		ID:      t.ID,
		Title:   t.Title,
		Artist:  t.Artist,
		AddedAt: t.AddedAt.Format(timeFormat),
	}
}

// duplicateExists reports whether another track already uses this
// (artist, title) pair, compared case-insensitively. The catalog is
// shared, so near-duplicates differing only in case are rejected.
func (h *Handler) duplicateExists(tx *gorm.DB, artist, title string, excludeID uint) (bool, error) {
	query := tx.Model(&models.Track{}).
		Where("LOWER(artist) = ? AND LOWER(title) = ?",
			strings.ToLower(artist), strings.ToLower(title))
	if excludeID > 0 {
		query = query.Where("id != ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns catalog tracks
// @Summary List tracks
// @Description Browse the shared track catalog with optional filters
// @Tags tracks
// @Produce json
// @Param artist query string false "Filter by artist (case-insensitive exact)"
// @Param title query string false "Filter by title substring"
// @Param sort query string false "Sort order" Enums(recent)
// @Param page query int false "Page number"
// @Param per_page query int false "Page size (max 100)"
// @Success 200 {object} map[string]interface{}
// @Router /tracks [get]
func (h *Handler) List(c *gin.Context) {
	query := h.db.Model(&models.Track{})

	if artist := c.Query("artist"); artist != "" {
		query = query.Where("LOWER(artist) = ?", strings.ToLower(artist))
	}
	if title := c.Query("title"); title != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(title)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tracks"})
		return
	}

	if c.Query("sort") == "recent" {
		query = query.Order("created_at DESC")
	} else {
		query = query.Order("id ASC")
	}

	params := pagination.Parse(c)
	var trackRows []models.Track
	if err := pagination.Apply(query, params).Find(&trackRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tracks"})
		return
	}

	out := make([]TrackResponse, len(trackRows))
	for i, t := range trackRows {
		out[i] = trackToResponse(t)
	}

	c.JSON(http.StatusOK, gin.H{
		"tracks": out,
		"meta":   pagination.BuildMeta(total, params),
	})
}

// Get returns one track
// @Summary Get a track
// @Tags tracks
// @Produce json
// @Param id path int true "Track ID"
// @Success 200 {object} TrackResponse
// @Failure 404 {object} map[string]string "Track not found"
// @Router /tracks/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	trackID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid track ID"})
		return
	}

	var track models.Track
	if err := h.db.First(&track, trackID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Track not found"})
		return
	}

	c.JSON(http.StatusOK, trackToResponse(track))
}

// Create adds a track to the catalog
// @Summary Create a track
// @Description Add a track to the shared catalog; admin only
// @Tags tracks
// @Accept json
// @Produce json
// @Param request body CreateTrackRequest true "Track details"
// @Success 201 {object} TrackResponse
// @Failure 403 {object} map[string]string "Admin access required"
// @Failure 409 {object} map[string]string "Track already exists"
// @Security BearerAuth
// @Router /tracks [post]
func (h *Handler) Create(c *gin.Context) {
	if err := authz.CanManageCatalog(authz.ActorFrom(c)); err != nil {
		authz.Respond(c, err)
		return
	}

	var req CreateTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	track := models.Track{Title: req.Title, Artist: req.Artist}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		dup, err := h.duplicateExists(tx, req.Artist, req.Title, 0)
		if err != nil {
			return err
		}
		if dup {
			return gorm.ErrDuplicatedKey
		}
		return tx.Create(&track).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Track with this artist and title already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create track"})
		return
	}

	c.JSON(http.StatusCreated, trackToResponse(track))
}

// Update modifies a catalog track
// @Summary Update a track
// @Description Update a track's title or artist; admin only
// @Tags tracks
// @Accept json
// @Produce json
// @Param id path int true "Track ID"
// @Param request body UpdateTrackRequest true "Fields to update"
// @Success 200 {object} TrackResponse
// @Failure 404 {object} map[string]string "Track not found"
// @Failure 409 {object} map[string]string "Track already exists"
// @Security BearerAuth
// @Router /tracks/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	if err := authz.CanManageCatalog(authz.ActorFrom(c)); err != nil {
		authz.Respond(c, err)
		return
	}

	trackID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid track ID"})
		return
	}

	var track models.Track
	if err := h.db.First(&track, trackID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Track not found"})
		return
	}

	var req UpdateTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Title must not be empty"})
			return
		}
		track.Title = *req.Title
	}
	if req.Artist != nil {
		if *req.Artist == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Artist must not be empty"})
			return
		}
		track.Artist = *req.Artist
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		dup, err := h.duplicateExists(tx, track.Artist, track.Title, track.ID)
		if err != nil {
			return err
		}
		if dup {
			return gorm.ErrDuplicatedKey
		}
		return tx.Save(&track).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Track with this artist and title already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update track"})
		return
	}

	c.JSON(http.StatusOK, trackToResponse(track))
}

// Delete removes a catalog track
// @Summary Delete a track
// @Description Delete a track and remove it from all playlists; admin only
// @Tags tracks
// @Produce json
// @Param id path int true "Track ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Track not found"
// @Security BearerAuth
// @Router /tracks/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := authz.CanManageCatalog(authz.ActorFrom(c)); err != nil {
		authz.Respond(c, err)
		return
	}

	trackID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid track ID"})
		return
	}

	var track models.Track
	if err := h.db.First(&track, trackID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Track not found"})
		return
	}

	// Playlist references are application-enforced: drop them with
	// the track so no playlist keeps a dangling ID.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("track_id = ?", track.ID).Delete(&models.PlaylistTrack{}).Error; err != nil {
			return err
		}
		return tx.Delete(&track).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete track"})
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers track routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tracks", h.List)
	rg.GET("/tracks/:id", h.Get)
	rg.POST("/tracks", h.Create)
	rg.PUT("/tracks/:id", h.Update)
	rg.DELETE("/tracks/:id", h.Delete)
}
