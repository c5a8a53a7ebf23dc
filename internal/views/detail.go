package views

import (
	"context"
	"strings"

	"github.com/hallowedlibrary/shelf/internal/entities"
	"github.com/hallowedlibrary/shelf/internal/favorites"
	"github.com/hallowedlibrary/shelf/internal/logging"
	"github.com/hallowedlibrary/shelf/internal/session"
)

// DetailPage describes a single book.
type DetailPage struct {
	Book        *entities.Book `json:"book,omitempty"`
	Authors     string         `json:"authors,omitempty"`
	Description string         `json:"description,omitempty"`
	Favorite    bool           `json:"favorite"`
	Error       string         `json:"error,omitempty"`
}

func Detail(ctx context.Context, cat Catalog, favs *favorites.Service, sess *session.Session, id string) DetailPage {
	book, err := cat.GetBook(ctx, id)
	if err != nil || book == nil {
		logging.Log.WithError(err).WithField("id", id).Warn("Fetching book failed")
		return DetailPage{Error: MsgDetailError}
	}

	syncFavorites(ctx, favs, sess)

	desc := book.Description
	if strings.TrimSpace(desc) == "" {
		desc = MsgNoDescription
	}
	return DetailPage{
		Book:        book,
		Authors:     book.AuthorsText(),
		Description: desc,
		Favorite:    favs != nil && favs.Contains(book.ID),
	}
}
