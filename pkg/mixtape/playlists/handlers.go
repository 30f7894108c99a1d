package playlists

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/mixtape/pkg/mixtape/auth"
	"github.com/mikepea/mixtape/pkg/mixtape/authz"
	"github.com/mikepea/mixtape/pkg/mixtape/models"
	"github.com/mikepea/mixtape/pkg/mixtape/pagination"
	"github.com/mikepea/mixtape/pkg/mixtape/tags"
	"gorm.io/gorm"
)

// Handler handles playlist-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new playlists handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreatePlaylistRequest represents the request to create a playlist
type CreatePlaylistRequest struct {
	Title    string `json:"title" binding:"required"`
	IsPublic bool   `json:"is_public"`
}

// UpdatePlaylistRequest represents the request to update a playlist
type UpdatePlaylistRequest struct {
	Title    *string `json:"title"`
	IsPublic *bool   `json:"is_public"`
}

// TrackIDRequest represents the request to append a track
type TrackIDRequest struct {
	TrackID uint `json:"track_id" binding:"required"`
}

// ReplaceTracksRequest represents the request to replace the whole list
type ReplaceTracksRequest struct {
	TrackIDs []uint `json:"track_ids" binding:"required"`
}

// PlaylistResponse represents a playlist in list responses
type PlaylistResponse struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	IsPublic  bool   `json:"is_public"`
	OwnerID   uint   `json:"owner_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// TrackResponse represents a track inside a playlist response
type TrackResponse struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	AddedAt string `json:"added_at"`
}

// OwnerResponse identifies a playlist's owner
type OwnerResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// PlaylistDetailResponse is the full playlist view with ordered tracks
// and annotated tags
type PlaylistDetailResponse struct {
	ID        uint               `json:"id"`
	Title     string             `json:"title"`
	IsPublic  bool               `json:"is_public"`
	Owner     OwnerResponse      `json:"owner"`
	Tracks    []TrackResponse    `json:"tracks"`
	Tags      []tags.TagResponse `json:"tags"`
	CreatedAt string             `json:"created_at"`
	UpdatedAt string             `json:"updated_at"`
}

const timeFormat = "2006-01-02T15:04:05Z"

func playlistToResponse(p models.Playlist) PlaylistResponse {
	return PlaylistResponse{
		ID:        p.ID,
		Title:     p.Title,
		IsPublic:  p.IsPublic,
		OwnerID:   p.OwnerID,
		CreatedAt: p.CreatedAt.Format(timeFormat),
		UpdatedAt: p.UpdatedAt.Format(timeFormat),
	}
}

func tracksToResponses(trackList []models.Track) []TrackResponse {
	out := make([]TrackResponse, len(trackList))
	for i, t := range trackList {
		out[i] = TrackResponse{
			ID:      t.ID,
			Title:   t.Title,
			Artist:  t.Artist,
			AddedAt: t.AddedAt.Format(timeFormat),
		}
	}
	return out
}

func (h *Handler) loadPlaylist(c *gin.Context) (*models.Playlist, bool) {
	playlistID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid playlist ID"})
		return nil, false
	}

	var playlist models.Playlist
	if err := h.db.First(&playlist, playlistID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Playlist not found"})
		return nil, false
	}
	return &playlist, true
}

// respondTrackList writes the playlist's ordered tracks, the shared
// success shape of the track mutation endpoints.
func (h *Handler) respondTrackList(c *gin.Context, playlistID uint) {
	ordered, err := OrderedTracks(h.db, playlistID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tracks"})
		return
	}
	c.JSON(http.StatusOK, tracksToResponses(ordered))
}

// List returns playlists visible to the requester
// @Summary List playlists
// @Description List public playlists plus the requester's own; admin sees all
// @Tags playlists
// @Produce json
// @Param owner_id query int false "Filter by owner"
// @Param track_id query int false "Filter to playlists containing a track"
// @Param sort query string false "Sort order" Enums(recent)
// @Param page query int false "Page number"
// @Param per_page query int false "Page size (max 100)"
// @Success 200 {object} map[string]interface{}
// @Router /playlists [get]
func (h *Handler) List(c *gin.Context) {
	actor := authz.ActorFrom(c)

	query := h.db.Model(&models.Playlist{})

	// Visibility: public, or owned by the requester. Admin sees all.
	if !actor.IsAdmin() {
		if actor != nil {
			query = query.Where("is_public = ? OR owner_id = ?", true, actor.ID)
		} else {
			query = query.Where("is_public = ?", true)
		}
	}

	if ownerID := c.Query("owner_id"); ownerID != "" {
		id, err := strconv.ParseUint(ownerID, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id must be a valid integer"})
			return
		}
		query = query.Where("owner_id = ?", id)
	}

	if trackID := c.Query("track_id"); trackID != "" {
		id, err := strconv.ParseUint(trackID, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "track_id must be a valid integer"})
			return
		}
		query = query.Where("id IN (?)", h.db.Model(&models.PlaylistTrack{}).
			Select("playlist_id").Where("track_id = ?", id))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch playlists"})
		return
	}

	if c.Query("sort") == "recent" {
		query = query.Order("created_at DESC")
	} else {
		query = query.Order("id ASC")
	}

	params := pagination.Parse(c)
	var playlistRows []models.Playlist
	if err := pagination.Apply(query, params).Find(&playlistRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch playlists"})
		return
	}

	out := make([]PlaylistResponse, len(playlistRows))
	for i, p := range playlistRows {
		out[i] = playlistToResponse(p)
	}

	c.JSON(http.StatusOK, gin.H{
		"playlists": out,
		"meta":      pagination.BuildMeta(total, params),
	})
}

// Get returns one playlist with ordered tracks and annotated tags
// @Summary Get a playlist
// @Description Full playlist detail; must be public or owned by the requester
// @Tags playlists
// @Produce json
// @Param id path int true "Playlist ID"
// @Success 200 {object} PlaylistDetailResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Playlist not found"
// @Router /playlists/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	actor := authz.ActorFrom(c)

	playlist, ok := h.loadPlaylist(c)
	if !ok {
		return
	}

	if err := authz.CanPlaylist(actor, playlist, authz.ActionRead); err != nil {
		authz.Respond(c, err)
		return
	}

	var owner models.User
	if err := h.db.First(&owner, playlist.OwnerID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch owner"})
		return
	}

	ordered, err := OrderedTracks(h.db, playlist.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tracks"})
		return
	}

	var tagRows []models.Tag
	if err := h.db.Where("playlist_id = ?", playlist.ID).Order("id ASC").Find(&tagRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
		return
	}
	annotated, err := tags.Annotate(h.db, tagRows, actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to tally votes"})
		return
	}

	c.JSON(http.StatusOK, PlaylistDetailResponse{
		ID:       playlist.ID,
		Title:    playlist.Title,
		IsPublic: playlist.IsPublic,
		Owner: OwnerResponse{
			ID:       owner.ID,
			Username: owner.Username,
		},
		Tracks:    tracksToResponses(ordered),
		Tags:      annotated,
		CreatedAt: playlist.CreatedAt.Format(timeFormat),
		UpdatedAt: playlist.UpdatedAt.Format(timeFormat),
	})
}

// Create handles creating a playlist
// @Summary Create a playlist
// @Description Create a playlist owned by the requester
// @Tags playlists
// @Accept json
// @Produce json
// @Param request body CreatePlaylistRequest true "Playlist details"
// @Success 201 {object} PlaylistResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /playlists [post]
func (h *Handler) Create(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req CreatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	playlist := models.Playlist{
		OwnerID:  userID,
		Title:    req.Title,
		IsPublic: req.IsPublic,
	}
	if err := h.db.Create(&playlist).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create playlist"})
		return
	}

	c.JSON(http.StatusCreated, playlistToResponse(playlist))
}

// Update handles updating a playlist's title or visibility
// @Summary Update a playlist
// @Description Update title and/or visibility; owner or admin only
// @Tags playlists
// @Accept json
// @Produce json
// @Param id path int true "Playlist ID"
// @Param request body UpdatePlaylistRequest true "Fields to update"
// @Success 200 {object} PlaylistResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /playlists/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	actor := authz.ActorFrom(c)

	playlist, ok := h.loadPlaylist(c)
	if !ok {
		return
	}

	if err := authz.CanPlaylist(actor, playlist, authz.ActionUpdate); err != nil {
		authz.Respond(c, err)
		return
	}

	var req UpdatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Title must not be empty"})
			return
		}
		playlist.Title = *req.Title
	}
	if req.IsPublic != nil {
		playlist.IsPublic = *req.IsPublic
	}

	if err := h.db.Save(playlist).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update playlist"})
		return
	}

	c.JSON(http.StatusOK, playlistToResponse(*playlist))
}

// Delete handles deleting a playlist
// @Summary Delete a playlist
// @Description Delete a playlist, its track entries, its tags and their votes
// @Tags playlists
// @Produce json
// @Param id path int true "Playlist ID"
// @Success 204 "Deleted"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /playlists/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	actor := authz.ActorFrom(c)

	playlist, ok := h.loadPlaylist(c)
	if !ok {
		return
	}

	if err := authz.CanPlaylist(actor, playlist, authz.ActionDelete); err != nil {
		authz.Respond(c, err)
		return
	}

	// Tag lifecycle is bound to the playlist, and vote lifecycle to
	// the tag: cascade the whole subtree in one transaction.
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var tagIDs []uint
		if err := tx.Model(&models.Tag{}).
			Where("playlist_id = ?", playlist.ID).
			Pluck("id", &tagIDs).Error; err != nil {
			return err
		}
		if len(tagIDs) > 0 {
			if err := tx.Where("tag_id IN ?", tagIDs).Delete(&models.UserVote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("playlist_id = ?", playlist.ID).Delete(&models.Tag{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("playlist_id = ?", playlist.ID).Delete(&models.PlaylistTrack{}).Error; err != nil {
			return err
		}
		return tx.Delete(playlist).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete playlist"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Tracks returns the playlist's ordered tracks
// @Summary List playlist tracks
// @Description Ordered track list; pass page to get the paginated envelope
// @Tags playlists
// @Produce json
// @Param id path int true "Playlist ID"
// @Param page query int false "Page number (switches to paginated envelope)"
// @Success 200 {array} TrackResponse
// @Failure 404 {object} map[string]string "Playlist not found"
// @Router /playlists/{id}/tracks [get]
func (h *Handler) Tracks(c *gin.Context) {
	actor := authz.ActorFrom(c)

	playlist, ok := h.loadPlaylist(c)
	if !ok {
		return
	}

	if err := authz.CanPlaylist(actor, playlist, authz.ActionRead); err != nil {
		authz.Respond(c, err)
		return
	}

	ordered, err := OrderedTracks(h.db, playlist.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tracks"})
		return
	}

	if c.Query("page") == "" {
		c.JSON(http.StatusOK, tracksToResponses(ordered))
		return
	}

	params := pagination.Parse(c)
	page := pagination.Slice(ordered, params)
	c.JSON(http.StatusOK, gin.H{
		"tracks": tracksToResponses(page),
		"meta":   pagination.BuildMeta(int64(len(ordered)), params),
	})
}

// AddTrack appends a track to the playlist
// @Summary Append a track
// @Description Append a track to the end of the playlist; re-adding is a no-op
// @Tags playlists
// @Accept json
// @Produce json
// @Param id path int true "Playlist ID"
// @Param request body TrackIDRequest true "Track to append"
// @Success 200 {array} TrackResponse
// @Failure 404 {object} map[string]string "Track not found"
// @Security BearerAuth
// @Router /playlists/{id}/tracks [post]
func (h *Handler) AddTrack(c *gin.Context) {
	actor := authz.ActorFrom(c)

	playlist, ok := h.loadPlaylist(c)
	if !ok {
		return
	}

	if err := authz.CanPlaylist(actor, playlist, authz.ActionEditTracks); err != nil {
		authz.Respond(c, err)
		return
	}

	var req TrackIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := AddTrack(h.db, playlist.ID, req.TrackID); err != nil {
		var tlErr *TrackListError
		if errors.As(err, &tlErr) {
			c.JSON(http.StatusNotFound, gin.H{"errors": tlErr.Errors})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add track"})
		return
	}

	h.respondTrackList(c, playlist.ID)
}

// RemoveTrack removes a track from the playlist
// @Summary Remove a track
// @Description Remove a track from the playlist; removing an absent track is a no-op
// @Tags playlists
// @Produce json
// @Param id path int true "Playlist ID"
// @Param trackId path int true "Track ID"
// @Success 200 {array} TrackResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /playlists/{id}/tracks/{trackId} [delete]
func (h *Handler) RemoveTrack(c *gin.Context) {
	actor := authz.ActorFrom(c)

	playlist, ok := h.loadPlaylist(c)
	if !ok {
		return
	}

	if err := authz.CanPlaylist(actor, playlist, authz.ActionEditTracks); err != nil {
		authz.Respond(c, err)
		return
	}

	trackID, err := strconv.ParseUint(c.Param("trackId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid track ID"})
		return
	}

	if err := RemoveTrack(h.db, playlist.ID, uint(trackID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove track"})
		return
	}

	h.respondTrackList(c, playlist.ID)
}

// ReplaceTracks replaces the playlist's whole ordered track list
// @Summary Replace the track list
// @Description Replace the ordered list in one transaction; missing IDs fail the whole request
// @Tags playlists
// @Accept json
// @Produce json
// @Param id path int true "Playlist ID"
// @Param request body ReplaceTracksRequest true "Full ordered track ID list"
// @Success 200 {array} TrackResponse
// @Failure 422 {object} map[string][]string "Missing or duplicate track IDs"
// @Security BearerAuth
// @Router /playlists/{id}/tracks [put]
func (h *Handler) ReplaceTracks(c *gin.Context) {
	actor := authz.ActorFrom(c)

	playlist, ok := h.loadPlaylist(c)
	if !ok {
		return
	}

	if err := authz.CanPlaylist(actor, playlist, authz.ActionEditTracks); err != nil {
		authz.Respond(c, err)
		return
	}

	var req ReplaceTracksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ReplaceTracks(h.db, playlist.ID, req.TrackIDs); err != nil {
		var tlErr *TrackListError
		if errors.As(err, &tlErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": tlErr.Errors})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace tracks"})
		return
	}

	h.respondTrackList(c, playlist.ID)
}

// RegisterRoutes registers playlist routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/playlists", h.List)
	rg.GET("/playlists/:id", h.Get)
	rg.POST("/playlists", h.Create)
	rg.PUT("/playlists/:id", h.Update)
	rg.DELETE("/playlists/:id", h.Delete)

	rg.GET("/playlists/:id/tracks", h.Tracks)
	rg.POST("/playlists/:id/tracks", h.AddTrack)
	rg.DELETE("/playlists/:id/tracks/:trackId", h.RemoveTrack)
	rg.PUT("/playlists/:id/tracks", h.ReplaceTracks)
}
