// Package authz is the single policy point for every mutation and read
// of playlists, tags and votes. Handlers never test roles or ownership
// inline; they build an Actor from the request context and ask this
// package for a decision.
package authz

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/mixtape/pkg/mixtape/auth"
	"github.com/mikepea/mixtape/pkg/mixtape/models"
)

var (
	// ErrUnauthenticated means the action needs a logged-in actor (401)
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the actor lacks rights for the action (403)
	ErrForbidden = errors.New("forbidden")
)

// Actor is the identity a request acts as. A nil *Actor is an
// anonymous request.
type Actor struct {
	ID   uint
	Role models.Role
}

// IsAdmin reports whether the actor has the admin role
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

// ActorFrom builds an Actor from the gin context, or nil when the
// request is anonymous.
func ActorFrom(c *gin.Context) *Actor {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return nil
	}
	role, _ := auth.GetRole(c)
	return &Actor{ID: userID, Role: models.Role(role)}
}

// Action is an operation on a resource
type Action string

const (
	ActionRead       Action = "read"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionEditTracks Action = "edit_tracks"
	ActionSuggestTag Action = "suggest_tag"
	ActionVote       Action = "vote"
)

// Resource is anything with an owner and a visibility flag
type Resource interface {
	ResourceOwnerID() uint
	ResourceIsPublic() bool
}

// CanPlaylist decides whether actor may perform action on a playlist
// (or any owned, visibility-flagged resource). Precedence: admin
// bypass, then ownership, then the public/authenticated rules.
func CanPlaylist(actor *Actor, res Resource, action Action) error {
	if actor.IsAdmin() {
		return nil
	}
	owner := actor != nil && actor.ID == res.ResourceOwnerID()

	switch action {
	case ActionRead:
		if res.ResourceIsPublic() || owner {
			return nil
		}
		if actor == nil {
			return ErrUnauthenticated
		}
		return ErrForbidden
	case ActionSuggestTag, ActionVote:
		// any authenticated reader
		if actor == nil {
			return ErrUnauthenticated
		}
		if res.ResourceIsPublic() || owner {
			return nil
		}
		return ErrForbidden
	case ActionUpdate, ActionDelete, ActionEditTracks:
		if actor == nil {
			return ErrUnauthenticated
		}
		if owner {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}

// CanManageCatalog decides whether actor may mutate the shared track
// catalog. Admin only, ownership never applies.
func CanManageCatalog(actor *Actor) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// CanRemoveTag decides whether actor may delete a tag: the playlist
// owner, an admin, or the tag's original suggester.
func CanRemoveTag(actor *Actor, playlist *models.Playlist, tag *models.Tag) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if actor.IsAdmin() || actor.ID == playlist.OwnerID || actor.ID == tag.SuggestedByID {
		return nil
	}
	return ErrForbidden
}

// CanEditUser decides whether actor may update a user profile:
// the user themselves or an admin.
func CanEditUser(actor *Actor, userID uint) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if actor.IsAdmin() || actor.ID == userID {
		return nil
	}
	return ErrForbidden
}

// Respond writes the HTTP error matching an authz decision. Returns
// true when err was an authz error and the response has been written.
func Respond(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return true
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return true
	}
	return false
}
