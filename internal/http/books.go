package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hallowedlibrary/shelf/internal/catalog"
	"github.com/hallowedlibrary/shelf/internal/entities"
	"github.com/hallowedlibrary/shelf/internal/favorites"
	"github.com/hallowedlibrary/shelf/internal/logging"
	"github.com/hallowedlibrary/shelf/internal/views"
)

// BooksController serves search, book detail and the favorite toggle.
type BooksController struct {
	catalog   Catalog
	favorites *favorites.Registry
}

func NewBooksController(cat Catalog, registry *favorites.Registry) *BooksController {
	return &BooksController{catalog: cat, favorites: registry}
}

func (bc *BooksController) search(c *gin.Context) views.SearchPage {
	sess := currentSession(c)
	opts := catalog.SearchOptions{
		StartIndex: queryInt(c, "startIndex"),
		MaxResults: queryInt(c, "maxResults"),
	}
	return views.Search(c.Request.Context(), bc.catalog, bc.favorites.For(sess), sess, c.Query("q"), opts)
}

// SearchPage handles GET /search?q=.
func (bc *BooksController) SearchPage(c *gin.Context) {
	result := bc.search(c)
	c.HTML(http.StatusOK, "search.html", page(c, gin.H{
		"Title":  "Search",
		"Search": result,
	}))
}

// Search handles GET /api/search?q=.
func (bc *BooksController) Search(c *gin.Context) {
	result := bc.search(c)
	if result.Error != "" {
		respondUpstreamError(c, result.Error)
		return
	}
	if result.Results == nil {
		result.Results = []views.BookCard{}
	}
	c.JSON(http.StatusOK, result)
}

func (bc *BooksController) detail(c *gin.Context) views.DetailPage {
	sess := currentSession(c)
	return views.Detail(c.Request.Context(), bc.catalog, bc.favorites.For(sess), sess, c.Param("id"))
}

// BookPage handles GET /books/:id.
func (bc *BooksController) BookPage(c *gin.Context) {
	detail := bc.detail(c)
	status := http.StatusOK
	if detail.Error != "" {
		status = http.StatusBadGateway
	}
	title := "Book"
	if detail.Book != nil {
		title = detail.Book.Title
	}
	c.HTML(status, "book.html", page(c, gin.H{
		"Title":  title,
		"Detail": detail,
	}))
}

// Book handles GET /api/books/:id.
func (bc *BooksController) Book(c *gin.Context) {
	detail := bc.detail(c)
	if detail.Error != "" {
		respondUpstreamError(c, detail.Error)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// favoriteRequest carries the display metadata stored with a favorite. All
// fields are optional; a missing title is looked up in the catalog.
type favoriteRequest struct {
	Title     string   `form:"title" json:"title"`
	Miniature string   `form:"miniature" json:"miniature"`
	Authors   []string `form:"authors" json:"authors"`
}

// favoriteEntry builds the entry for id. Only adding needs the metadata,
// so the catalog is consulted only when the book is not yet a favorite.
func (bc *BooksController) favoriteEntry(c *gin.Context, svc *favorites.Service, id string, req favoriteRequest) entities.FavoriteEntry {
	entry := entities.FavoriteEntry{
		VolumeID:  id,
		Title:     strings.TrimSpace(req.Title),
		Miniature: req.Miniature,
		Authors:   req.Authors,
	}
	if entry.Title != "" || svc.Contains(id) {
		return entry
	}
	if book, err := bc.catalog.GetBook(c.Request.Context(), id); err == nil && book != nil {
		return entities.NewFavoriteEntry(*book)
	}
	return entry
}

// ToggleFavorite handles POST /books/:id/favorite from the HTML forms.
func (bc *BooksController) ToggleFavorite(c *gin.Context) {
	sess := currentSession(c)
	if !sess.Authenticated() {
		next := c.PostForm("next")
		if next == "" {
			next = "/books/" + c.Param("id")
		}
		redirectToLoginFrom(c, next, favorites.LoginPrompt)
		return
	}

	var req favoriteRequest
	if err := c.ShouldBind(&req); err != nil {
		logging.Log.WithError(err).WithField("volume_id", c.Param("id")).Warn("Rejected favorite form")
		c.String(http.StatusBadRequest, "invalid form")
		return
	}

	svc := bc.favorites.For(sess)
	entry := bc.favoriteEntry(c, svc, c.Param("id"), req)
	views.ToggleFavorite(c.Request.Context(), svc, sess, entry)
	redirectBack(c, "/books/"+c.Param("id"))
}

// ToggleFavoriteAPI handles POST /api/favorites/:id/toggle.
func (bc *BooksController) ToggleFavoriteAPI(c *gin.Context) {
	sess := currentSession(c)
	if !sess.Authenticated() {
		respondUnauthorized(c, favorites.LoginPrompt)
		return
	}

	var req favoriteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	svc := bc.favorites.For(sess)
	entry := bc.favoriteEntry(c, svc, c.Param("id"), req)
	c.JSON(http.StatusOK, views.ToggleFavorite(c.Request.Context(), svc, sess, entry))
}
