package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hallowedlibrary/shelf/internal/carousel"
	"github.com/hallowedlibrary/shelf/internal/logging"
)

// CoverCache stores cover images on disk.
type CoverCache interface {
	GetCover(ctx context.Context, volumeID, coverURL string) (string, error)
}

// CoversController serves locally cached covers of the featured books.
type CoversController struct {
	cache    CoverCache
	carousel *carousel.Rotator
}

func NewCoversController(cache CoverCache, rotator *carousel.Rotator) *CoversController {
	return &CoversController{cache: cache, carousel: rotator}
}

// Cover handles GET /covers/:id. Only featured books are served; when the
// download fails the browser is sent to the remote image instead.
func (cc *CoversController) Cover(c *gin.Context) {
	book, ok := cc.carousel.Find(c.Param("id"))
	if !ok || book.Cover() == "" {
		c.Status(http.StatusNotFound)
		return
	}

	path, err := cc.cache.GetCover(c.Request.Context(), book.ID, book.Cover())
	if err != nil {
		logging.Log.WithError(err).WithField("volume_id", book.ID).Warn("Cover download failed")
		c.Redirect(http.StatusFound, book.Cover())
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.File(path)
}
