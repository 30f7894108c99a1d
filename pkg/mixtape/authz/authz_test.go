package authz

import (
	"testing"

	"github.com/mikepea/mixtape/pkg/mixtape/models"
)

func TestCanPlaylistRead(t *testing.T) {
	public := &models.Playlist{OwnerID: 1, IsPublic: true}
	private := &models.Playlist{OwnerID: 1, IsPublic: false}

	owner := &Actor{ID: 1, Role: models.RoleUser}
	other := &Actor{ID: 2, Role: models.RoleUser}
	admin := &Actor{ID: 3, Role: models.RoleAdmin}

	if err := CanPlaylist(nil, public, ActionRead); err != nil {
		t.Errorf("Expected anonymous read of public playlist to be allowed: %v", err)
	}
	if err := CanPlaylist(nil, private, ActionRead); err != ErrUnauthenticated {
		t.Errorf("Expected anonymous read of private playlist to be unauthenticated, got %v", err)
	}
	if err := CanPlaylist(other, private, ActionRead); err != ErrForbidden {
		t.Errorf("Expected non-owner read of private playlist to be forbidden, got %v", err)
	}
	if err := CanPlaylist(owner, private, ActionRead); err != nil {
		t.Errorf("Expected owner read of private playlist to be allowed: %v", err)
	}
	if err := CanPlaylist(admin, private, ActionRead); err != nil {
		t.Errorf("Expected admin read of private playlist to be allowed: %v", err)
	}
}

func TestCanPlaylistMutate(t *testing.T) {
	public := &models.Playlist{OwnerID: 1, IsPublic: true}

	owner := &Actor{ID: 1, Role: models.RoleUser}
	other := &Actor{ID: 2, Role: models.RoleUser}
	admin := &Actor{ID: 3, Role: models.RoleAdmin}

	for _, action := range []Action{ActionUpdate, ActionDelete, ActionEditTracks} {
		if err := CanPlaylist(nil, public, action); err != ErrUnauthenticated {
			t.Errorf("Expected anonymous %s to be unauthenticated, got %v", action, err)
		}
		if err := CanPlaylist(other, public, action); err != ErrForbidden {
			t.Errorf("Expected non-owner %s to be forbidden even on public playlist, got %v", action, err)
		}
		if err := CanPlaylist(owner, public, action); err != nil {
			t.Errorf("Expected owner %s to be allowed: %v", action, err)
		}
		if err := CanPlaylist(admin, public, action); err != nil {
			t.Errorf("Expected admin %s to be allowed: %v", action, err)
		}
	}
}

func TestCanPlaylistSuggestAndVote(t *testing.T) {
	public := &models.Playlist{OwnerID: 1, IsPublic: true}
	private := &models.Playlist{OwnerID: 1, IsPublic: false}

	owner := &Actor{ID: 1, Role: models.RoleUser}
	other := &Actor{ID: 2, Role: models.RoleUser}

	for _, action := range []Action{ActionSuggestTag, ActionVote} {
		if err := CanPlaylist(nil, public, action); err != ErrUnauthenticated {
			t.Errorf("Expected anonymous %s to be unauthenticated, got %v", action, err)
		}
		if err := CanPlaylist(other, public, action); err != nil {
			t.Errorf("Expected authenticated %s on public playlist to be allowed: %v", action, err)
		}
		if err := CanPlaylist(other, private, action); err != ErrForbidden {
			t.Errorf("Expected non-owner %s on private playlist to be forbidden, got %v", action, err)
		}
		if err := CanPlaylist(owner, private, action); err != nil {
			t.Errorf("Expected owner %s on own private playlist to be allowed: %v", action, err)
		}
	}
}

func TestCanManageCatalog(t *testing.T) {
	if err := CanManageCatalog(nil); err != ErrUnauthenticated {
		t.Errorf("Expected anonymous catalog write to be unauthenticated, got %v", err)
	}
	if err := CanManageCatalog(&Actor{ID: 1, Role: models.RoleUser}); err != ErrForbidden {
		t.Errorf("Expected non-admin catalog write to be forbidden, got %v", err)
	}
	if err := CanManageCatalog(&Actor{ID: 1, Role: models.RoleAdmin}); err != nil {
		t.Errorf("Expected admin catalog write to be allowed: %v", err)
	}
}

func TestCanRemoveTag(t *testing.T) {
	playlist := &models.Playlist{OwnerID: 1}
	tag := &models.Tag{SuggestedByID: 2}

	if err := CanRemoveTag(nil, playlist, tag); err != ErrUnauthenticated {
		t.Errorf("Expected anonymous tag removal to be unauthenticated, got %v", err)
	}
	if err := CanRemoveTag(&Actor{ID: 1, Role: models.RoleUser}, playlist, tag); err != nil {
		t.Errorf("Expected playlist owner to remove tag: %v", err)
	}
	if err := CanRemoveTag(&Actor{ID: 2, Role: models.RoleUser}, playlist, tag); err != nil {
		t.Errorf("Expected suggester to remove own tag: %v", err)
	}
	if err := CanRemoveTag(&Actor{ID: 3, Role: models.RoleUser}, playlist, tag); err != ErrForbidden {
		t.Errorf("Expected unrelated user tag removal to be forbidden, got %v", err)
	}
	if err := CanRemoveTag(&Actor{ID: 3, Role: models.RoleAdmin}, playlist, tag); err != nil {
		t.Errorf("Expected admin to remove any tag: %v", err)
	}
}

func TestCanEditUser(t *testing.T) {
	if err := CanEditUser(nil, 1); err != ErrUnauthenticated {
		t.Errorf("Expected anonymous profile edit to be unauthenticated, got %v", err)
	}
	if err := CanEditUser(&Actor{ID: 1, Role: models.RoleUser}, 1); err != nil {
		t.Errorf("Expected self edit to be allowed: %v", err)
	}
	if err := CanEditUser(&Actor{ID: 2, Role: models.RoleUser}, 1); err != ErrForbidden {
		t.Errorf("Expected edit of another user to be forbidden, got %v", err)
	}
	if err := CanEditUser(&Actor{ID: 2, Role: models.RoleAdmin}, 1); err != nil {
		t.Errorf("Expected admin edit of any user to be allowed: %v", err)
	}
}
