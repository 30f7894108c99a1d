package tags

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/mixtape/pkg/mixtape/authz"
	"github.com/mikepea/mixtape/pkg/mixtape/models"
	"github.com/mikepea/mixtape/pkg/mixtape/votes"
	"gorm.io/gorm"
)

// Handler handles tag-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new tags handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// SuggestTagRequest represents the request to suggest a tag on a playlist
type SuggestTagRequest struct {
	Name string `json:"name" binding:"required"`
}

// TagResponse represents a tag in API responses, annotated with its
// tallies and the requester's own vote (null when anonymous or not
// voted).
type TagResponse struct {
	ID            uint    `json:"id"`
	PlaylistID    uint    `json:"playlist_id"`
	Name          string  `json:"name"`
	SuggestedByID uint    `json:"suggested_by_id"`
	VotesUp       int64   `json:"votes_up"`
	VotesDown     int64   `json:"votes_down"`
	UserVote      *string `json:"user_vote"`
}

// Annotate builds annotated responses for a set of tags. Tallies come
// from one grouped query and the actor's own votes from one more;
// nothing is fetched per tag.
func Annotate(db *gorm.DB, tagList []models.Tag, actor *authz.Actor) ([]TagResponse, error) {
	ids := make([]uint, len(tagList))
	for i, t := range tagList {
		ids[i] = t.ID
	}

	tallies, err := votes.TallyForTags(db, ids)
	if err != nil {
		return nil, err
	}

	var ownVotes map[uint]models.VoteType
	if actor != nil {
		ownVotes, err = votes.VotesOfUser(db, actor.ID, ids)
		if err != nil {
			return nil, err
		}
	}

	out := make([]TagResponse, len(tagList))
	for i, t := range tagList {
		tally := tallies[t.ID]
		resp := TagResponse{
			ID:            t.ID,
			PlaylistID:    t.PlaylistID,
			Name:          t.Name,
			SuggestedByID: t.SuggestedByID,
			VotesUp:       tally.Up,
			VotesDown:     tally.Down,
		}
		if v, ok := ownVotes[t.ID]; ok {
			s := string(v)
			resp.UserVote = &s
		}
		out[i] = resp
	}
	return out, nil
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

// Suggest handles suggesting a tag on a playlist
// @Summary Suggest a tag
// @Description Attach a community-suggested tag to a playlist
// @Tags tags
// @Accept json
// @Produce json
// @Param id path int true "Playlist ID"
// @Param request body SuggestTagRequest true "Tag name"
// @Success 201 {object} TagResponse
// @Failure 409 {object} map[string]string "Tag already on playlist"
// @Failure 422 {object} map[string]string "Invalid tag name"
// @Security BearerAuth
// @Router /playlists/{id}/tags [post]
func (h *Handler) Suggest(c *gin.Context) {
	actor := authz.ActorFrom(c)

	playlist, ok := h.loadPlaylist(c)
	if !ok {
		return
	}

	if err := authz.CanPlaylist(actor, playlist, authz.ActionSuggestTag); err != nil {
		authz.Respond(c, err)
		return
	}

	var req SuggestTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := models.NormalizeTagName(req.Name)
	if !models.ValidTagName(name) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Tag name must be between 2 and 20 characters"})
		return
	}

	tag := models.Tag{
		PlaylistID:    playlist.ID,
		Name:          name,
		SuggestedByID: actor.ID,
	}

	// The duplicate check and the insert run in one transaction; a
	// concurrent loser is still caught by the (playlist_id, name)
	// unique index and reported as a conflict.
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Tag
		if err := tx.Where("playlist_id = ? AND name = ?", playlist.ID, name).
			First(&existing).Error; err == nil {
			return gorm.ErrDuplicatedKey
		}
		return tx.Create(&tag).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Tag already attached to playlist"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tag"})
		return
	}

	c.JSON(http.StatusCreated, TagResponse{
		ID:            tag.ID,
		PlaylistID:    tag.PlaylistID,
		Name:          tag.Name,
		SuggestedByID: tag.SuggestedByID,
	})
}

// Remove handles deleting a tag from a playlist
// @Summary Remove a tag
// @Description Delete a tag and its votes; allowed for the playlist owner, an admin, or the tag's suggester
// @Tags tags
// @Produce json
// @Param id path int true "Playlist ID"
// @Param tagId path int true "Tag ID"
// @Success 200 {object} map[string]string "Tag removed"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Tag not found"
// @Security BearerAuth
// @Router /playlists/{id}/tags/{tagId} [delete]
func (h *Handler) Remove(c *gin.Context) {
	actor := authz.ActorFrom(c)

	playlist, ok := h.loadPlaylist(c)
	if !ok {
		return
	}

	tagID, err := strconv.ParseUint(c.Param("tagId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag ID"})
		return
	}

	var tag models.Tag
	if err := h.db.Where("playlist_id = ?", playlist.ID).First(&tag, tagID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}

	if err := authz.CanRemoveTag(actor, playlist, &tag); err != nil {
		authz.Respond(c, err)
		return
	}

	// Votes have no lifecycle beyond their tag: delete both together.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", tag.ID).Delete(&models.UserVote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove tag"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag removed"})
}

// ListForPlaylist returns a playlist's tags with vote annotations
// @Summary List playlist tags
// @Description Get all tags on a playlist with vote tallies and the requester's own vote
// @Tags tags
// @Produce json
// @Param id path int true "Playlist ID"
// @Param sort query string false "Sort order" Enums(alphabetical, recent)
// @Success 200 {array} TagResponse
// @Failure 404 {object} map[string]string "Playlist not found"
// @Router /playlists/{id}/tags [get]
func (h *Handler) ListForPlaylist(c *gin.Context) {
	actor := authz.ActorFrom(c)

	playlist, ok := h.loadPlaylist(c)
	if !ok {
		return
	}

	if err := authz.CanPlaylist(actor, playlist, authz.ActionRead); err != nil {
		authz.Respond(c, err)
		return
	}

	query := h.db.Where("playlist_id = ?", playlist.ID)
	switch c.Query("sort") {
	case "alphabetical":
		query = query.Order("name ASC")
	case "recent":
		query = query.Order("created_at DESC")
	default:
		query = query.Order("id ASC")
	}

	var tagList []models.Tag
	if err := query.Find(&tagList).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
		return
	}

	annotated, err := Annotate(h.db, tagList, actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to tally votes"})
		return
	}

	c.JSON(http.StatusOK, annotated)
}

// Get returns a single tag with vote annotations
// @Summary Get a tag
// @Description Fetch one tag with its tallies; visibility follows its playlist
// @Tags tags
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} TagResponse
// @Failure 404 {object} map[string]string "Tag not found"
// @Router /tags/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	actor := authz.ActorFrom(c)

	tagID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag ID"})
		return
	}

	var tag models.Tag
	if err := h.db.First(&tag, tagID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}

	var playlist models.Playlist
	if err := h.db.First(&playlist, tag.PlaylistID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}

	if err := authz.CanPlaylist(actor, &playlist, authz.ActionRead); err != nil {
		authz.Respond(c, err)
		return
	}

	annotated, err := Annotate(h.db, []models.Tag{tag}, actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to tally votes"})
		return
	}

	c.JSON(http.StatusOK, annotated[0])
}

// RegisterRoutes registers tag routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tags/:id", h.Get)
	rg.GET("/playlists/:id/tags", h.ListForPlaylist)
	rg.POST("/playlists/:id/tags", h.Suggest)
	rg.DELETE("/playlists/:id/tags/:tagId", h.Remove)
}
