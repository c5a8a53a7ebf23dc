package views

import (
	"context"
	"strings"

	"github.com/hallowedlibrary/shelf/internal/catalog"
	"github.com/hallowedlibrary/shelf/internal/favorites"
	"github.com/hallowedlibrary/shelf/internal/logging"
	"github.com/hallowedlibrary/shelf/internal/session"
)

// SearchPage is the results grid for one query.
type SearchPage struct {
	Query   string     `json:"query"`
	Results []BookCard `json:"results"`
	Message string     `json:"message,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// Search runs query against the catalog. A blank query returns an empty page
// without calling the catalog. Books with a blank title are dropped.
func Search(ctx context.Context, cat Catalog, favs *favorites.Service, sess *session.Session, query string, opts catalog.SearchOptions) SearchPage {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchPage{}
	}

	page := SearchPage{Query: query}
	books, err := cat.SearchBooks(ctx, query, opts)
	if err != nil {
		logging.Log.WithError(err).WithField("query", query).Warn("Search failed")
		page.Error = MsgSearchError
		return page
	}

	syncFavorites(ctx, favs, sess)

	for _, b := range books {
		if !b.HasTitle() {
			continue
		}
		page.Results = append(page.Results, BookCard{
			Book:     b,
			Authors:  b.AuthorsText(),
			Favorite: favs != nil && favs.Contains(b.ID),
		})
	}
	if len(page.Results) == 0 {
		page.Message = MsgNoResults
	}
	return page
}

// syncFavorites loads the user's library once so result tiles can show the
// favorite state. Failures only cost the highlight.
func syncFavorites(ctx context.Context, favs *favorites.Service, sess *session.Session) {
	if favs == nil || !sess.Authenticated() {
		return
	}
	if err := favs.EnsureLoaded(ctx, sess); err != nil {
		logging.Log.WithError(err).Warn("Could not load favorites")
	}
}
