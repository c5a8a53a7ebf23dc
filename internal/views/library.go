package views

import (
	"context"
	"errors"

	"github.com/hallowedlibrary/shelf/internal/entities"
	"github.com/hallowedlibrary/shelf/internal/favorites"
	"github.com/hallowedlibrary/shelf/internal/logging"
	"github.com/hallowedlibrary/shelf/internal/session"
)

// LibraryPage lists the signed-in user's saved books.
type LibraryPage struct {
	Entries []entities.FavoriteEntry `json:"entries"`
	Message string                   `json:"message,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

// Library reloads the favorites from the server every time it is opened.
func Library(ctx context.Context, favs *favorites.Service, sess *session.Session) LibraryPage {
	if !sess.Authenticated() {
		return LibraryPage{Error: MsgNoUser}
	}

	if err := favs.Load(ctx, sess); err != nil {
		logging.Log.WithError(err).Warn("Loading library failed")
		return LibraryPage{Error: MsgLibraryError}
	}

	page := LibraryPage{Entries: favs.Entries()}
	if len(page.Entries) == 0 {
		page.Message = MsgLibraryEmpty
	}
	return page
}

// ToggleResult is the outcome of a favorite button press.
type ToggleResult struct {
	VolumeID string `json:"volumeId"`
	Favorite bool   `json:"favorite"`
	Prompt   string `json:"prompt,omitempty"`
}

// ToggleFavorite flips entry in the user's library. Remote failures are
// logged by the service and leave the state as it was; only a missing login
// is reported back.
func ToggleFavorite(ctx context.Context, favs *favorites.Service, sess *session.Session, entry entities.FavoriteEntry) ToggleResult {
	res := ToggleResult{VolumeID: entry.VolumeID}
	if !sess.Authenticated() {
		res.Prompt = favorites.LoginPrompt
		return res
	}

	syncFavorites(ctx, favs, sess)

	on, err := favs.Toggle(ctx, sess, entry)
	if errors.Is(err, favorites.ErrLoginRequired) {
		res.Prompt = favorites.LoginPrompt
	}
	res.Favorite = on
	return res
}

// RemoveFavorite drops volumeID from the library.
func RemoveFavorite(ctx context.Context, favs *favorites.Service, sess *session.Session, volumeID string) ToggleResult {
	res := ToggleResult{VolumeID: volumeID}
	if !sess.Authenticated() {
		res.Prompt = favorites.LoginPrompt
		return res
	}
	if err := favs.Remove(ctx, sess, volumeID); err != nil {
		res.Favorite = favs.Contains(volumeID)
	}
	return res
}
