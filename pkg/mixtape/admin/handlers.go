package admin

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/mixtape/pkg/mixtape/auth"
	"github.com/mikepea/mixtape/pkg/mixtape/models"
	"github.com/mikepea/mixtape/pkg/mixtape/pagination"
	"gorm.io/gorm"
)

// Handler handles admin requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new admin handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// UserResponse represents user data in admin responses
type UserResponse struct {
	ID            uint   `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	Role          string `json:"role"`
	CreatedAt     string `json:"created_at"`
	PlaylistCount int64  `json:"playlist_count"`
	VoteCount     int64  `json:"vote_count"`
}

// UpdateUserRequest represents the request to update a user
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Role     *string `json:"role"`
}

// StatsResponse represents system statistics
type StatsResponse struct {
	TotalUsers       int64 `json:"total_users"`
	TotalTracks      int64 `json:"total_tracks"`
	TotalPlaylists   int64 `json:"total_playlists"`
	PublicPlaylists  int64 `json:"public_playlists"`
	PrivatePlaylists int64 `json:"private_playlists"`
	TotalTags        int64 `json:"total_tags"`
	TotalVotes       int64 `json:"total_votes"`
	UpVotes          int64 `json:"up_votes"`
	DownVotes        int64 `json:"down_votes"`
	AdminUsers       int64 `json:"admin_users"`
}

func (h *Handler) userToResponse(user models.User) UserResponse {
	var playlistCount, voteCount int64
	h.db.Model(&models.Playlist{}).Where("owner_id = ?", user.ID).Count(&playlistCount)
	h.db.Model(&models.UserVote{}).Where("user_id = ?", user.ID).Count(&voteCount)

	return UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		Username:      user.Username,
		Role:          string(user.Role),
		CreatedAt:     user.CreatedAt.Format("2006-01-02T15:04:05Z"),
		PlaylistCount: playlistCount,
		VoteCount:     voteCount,
	}
}

// ListUsers returns all users (admin only)
// @Summary List users
// @Description List all accounts with optional search; admin only
// @Tags admin
// @Produce json
// @Param q query string false "Search email or username"
// @Param role query string false "Filter by role" Enums(admin, user)
// @Param page query int false "Page number"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	query := h.db.Model(&models.User{})

	// Optional search by email or username
	if search := c.Query("q"); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(username) LIKE ?", like, like)
	}

	// Optional filter by role
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	params := pagination.Parse(c)
	var users []models.User
	if err := pagination.Apply(query.Order("created_at DESC"), params).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	responses := make([]UserResponse, len(users))
	for i, user := range users {
		responses[i] = h.userToResponse(user)
	}

	c.JSON(http.StatusOK, gin.H{
		"users": responses,
		"meta":  pagination.BuildMeta(total, params),
	})
}

// GetUser returns a single user by ID (admin only)
// @Summary Get user
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /admin/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, h.userToResponse(user))
}

// UpdateUser updates a user's profile or role (admin only)
// @Summary Update user
// @Description Change a user's username or role; admins cannot demote themselves
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to update"
// @Success 200 {object} UserResponse
// @Failure 409 {object} map[string]string "Username already taken"
// @Security BearerAuth
// @Router /admin/users/{id} [put]
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Prevent admin from demoting themselves
	currentUserID, _ := auth.GetUserID(c)
	if uint(id) == currentUserID && req.Role != nil && *req.Role != string(models.RoleAdmin) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot demote yourself"})
		return
	}

	updates := make(map[string]interface{})
	if req.Username != nil {
		if !models.UsernameRegex.MatchString(*req.Username) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Username must be 1-16 characters: letters, digits, underscore or hyphen"})
			return
		}
		updates["username"] = *req.Username
	}
	if req.Role != nil {
		if *req.Role != string(models.RoleAdmin) && *req.Role != string(models.RoleUser) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}
		updates["role"] = *req.Role
	}

	if len(updates) > 0 {
		if err := h.db.Model(&user).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
	}

	// Reload user
	h.db.First(&user, id)

	c.JSON(http.StatusOK, h.userToResponse(user))
}

// DeleteUser removes a user and everything they own (admin only)
// @Summary Delete user
// @Description Delete an account together with its playlists, tags and votes; admins cannot delete themselves
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /admin/users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	// Prevent admin from deleting themselves
	currentUserID, _ := auth.GetUserID(c)
	if uint(id) == currentUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete yourself"})
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// Delete user and related data in a transaction
	err = h.db.Transaction(func(tx *gorm.DB) error {
		// Votes cast by the user
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserVote{}).Error; err != nil {
			return err
		}

		// Playlists owned by the user, each with its tags, votes and entries
		var playlistIDs []uint
		if err := tx.Model(&models.Playlist{}).Where("owner_id = ?", user.ID).Pluck("id", &playlistIDs).Error; err != nil {
			return err
		}
		if len(playlistIDs) > 0 {
			var tagIDs []uint
			if err := tx.Model(&models.Tag{}).Where("playlist_id IN ?", playlistIDs).Pluck("id", &tagIDs).Error; err != nil {
				return err
			}
			if len(tagIDs) > 0 {
				if err := tx.Where("tag_id IN ?", tagIDs).Delete(&models.UserVote{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("playlist_id IN ?", playlistIDs).Delete(&models.Tag{}).Error; err != nil {
				return err
			}
			if err := tx.Where("playlist_id IN ?", playlistIDs).Delete(&models.PlaylistTrack{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", playlistIDs).Delete(&models.Playlist{}).Error; err != nil {
				return err
			}
		}

		// Delete user
		return tx.Delete(&user).Error
	})

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// GetStats returns system-wide statistics (admin only)
// @Summary Get statistics
// @Tags admin
// @Produce json
// @Success 200 {object} StatsResponse
// @Security BearerAuth
// @Router /admin/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	var stats StatsResponse

	h.db.Model(&models.User{}).Count(&stats.TotalUsers)
	h.db.Model(&models.Track{}).Count(&stats.TotalTracks)
	h.db.Model(&models.Playlist{}).Count(&stats.TotalPlaylists)
	h.db.Model(&models.Tag{}).Count(&stats.TotalTags)
	h.db.Model(&models.UserVote{}).Count(&stats.TotalVotes)

	h.db.Model(&models.Playlist{}).Where("is_public = ?", true).Count(&stats.PublicPlaylists)
	h.db.Model(&models.Playlist{}).Where("is_public = ?", false).Count(&stats.PrivatePlaylists)
	h.db.Model(&models.UserVote{}).Where("vote_type = ?", models.VoteUp).Count(&stats.UpVotes)
	h.db.Model(&models.UserVote{}).Where("vote_type = ?", models.VoteDown).Count(&stats.DownVotes)
	h.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&stats.AdminUsers)

	c.JSON(http.StatusOK, stats)
}

// RegisterRoutes registers admin routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.GetStats)
	rg.GET("/users", h.ListUsers)
	rg.GET("/users/:id", h.GetUser)
	rg.PUT("/users/:id", h.UpdateUser)
	rg.DELETE("/users/:id", h.DeleteUser)
}
