package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hallowedlibrary/shelf/internal/entities"
	"github.com/hallowedlibrary/shelf/internal/favorites"
	"github.com/hallowedlibrary/shelf/internal/views"
)

// LibraryController serves the signed-in user's saved books.
type LibraryController struct {
	favorites *favorites.Registry
}

func NewLibraryController(registry *favorites.Registry) *LibraryController {
	return &LibraryController{favorites: registry}
}

// LibraryPage handles GET /library.
func (lc *LibraryController) LibraryPage(c *gin.Context) {
	sess := currentSession(c)
	if !sess.Authenticated() {
		redirectToLogin(c, "")
		return
	}

	lib := views.Library(c.Request.Context(), lc.favorites.For(sess), sess)
	status := http.StatusOK
	if lib.Error != "" {
		status = http.StatusBadGateway
	}
	c.HTML(status, "library.html", page(c, gin.H{
		"Title":   "My Library",
		"Library": lib,
	}))
}

// Library handles GET /api/library.
func (lc *LibraryController) Library(c *gin.Context) {
	sess := currentSession(c)
	lib := views.Library(c.Request.Context(), lc.favorites.For(sess), sess)
	switch {
	case lib.Error == views.MsgNoUser:
		respondUnauthorized(c, lib.Error)
		return
	case lib.Error != "":
		respondUpstreamError(c, lib.Error)
		return
	}
	if lib.Entries == nil {
		lib.Entries = []entities.FavoriteEntry{}
	}
	c.JSON(http.StatusOK, lib)
}

// Remove handles POST /library/:id/remove.
func (lc *LibraryController) Remove(c *gin.Context) {
	sess := currentSession(c)
	if !sess.Authenticated() {
		redirectToLoginFrom(c, "/library", favorites.LoginPrompt)
		return
	}

	views.RemoveFavorite(c.Request.Context(), lc.favorites.For(sess), sess, c.Param("id"))
	redirectBack(c, "/library")
}
