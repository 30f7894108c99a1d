package votes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/mixtape/pkg/mixtape/authz"
	"github.com/mikepea/mixtape/pkg/mixtape/models"
	"gorm.io/gorm"
)

// Handler handles vote requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new votes handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CastVoteRequest represents the request to vote on a tag
type CastVoteRequest struct {
	VoteType string `json:"vote_type" binding:"required"`
}

// CastVoteResponse represents the tally after a vote. UserVote is
// null when the voter has no outstanding vote.
type CastVoteResponse struct {
	Votes    Tally   `json:"votes"`
	UserVote *string `json:"user_vote"`
}

// Cast handles voting on a tag
// @Summary Vote on a tag
// @Description Cast, switch or remove an up/down vote on a tag
// @Tags votes
// @Accept json
// @Produce json
// @Param id path int true "Tag ID"
// @Param request body CastVoteRequest true "Vote"
// @Success 200 {object} CastVoteResponse
// @Failure 404 {object} map[string]string "Tag not found"
// @Failure 422 {object} map[string]string "Invalid vote type"
// @Security BearerAuth
// @Router /tags/{id}/vote [post]
func (h *Handler) Cast(c *gin.Context) {
	actor := authz.ActorFrom(c)

	tagID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag ID"})
		return
	}

	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	voteType := models.VoteType(req.VoteType)
	switch voteType {
	case models.VoteUp, models.VoteDown, models.VoteNone:
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Vote type must be 'up', 'down' or 'none'"})
		return
	}

	var tag models.Tag
	if err := h.db.First(&tag, tagID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}

	var playlist models.Playlist
	if err := h.db.First(&playlist, tag.PlaylistID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Playlist not found"})
		return
	}

	if err := authz.CanPlaylist(actor, &playlist, authz.ActionVote); err != nil {
		authz.Respond(c, err)
		return
	}

	if err := Cast(h.db, actor.ID, tag.ID, voteType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
		return
	}

	tally, err := TallyForTag(h.db, tag.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to tally votes"})
		return
	}
	current, err := VoteOf(h.db, actor.ID, tag.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load vote"})
		return
	}

	resp := CastVoteResponse{Votes: tally}
	if current != models.VoteNone {
		v := string(current)
		resp.UserVote = &v
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers vote routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tags/:id/vote", h.Cast)
}
