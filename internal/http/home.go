package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hallowedlibrary/shelf/internal/carousel"
)

// HomeController renders the featured carousel.
type HomeController struct {
	carousel    *carousel.Rotator
	localCovers bool
}

// NewHomeController creates the controller. With localCovers the card
// images point at /covers/:id.
func NewHomeController(rotator *carousel.Rotator, localCovers bool) *HomeController {
	return &HomeController{carousel: rotator, localCovers: localCovers}
}

// HomePage handles GET /.
func (h *HomeController) HomePage(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", page(c, gin.H{
		"Title":       "Hallowed Library",
		"Frame":       h.carousel.Frame(),
		"LocalCovers": h.localCovers,
	}))
}

// Carousel handles GET /api/carousel.
func (h *HomeController) Carousel(c *gin.Context) {
	c.JSON(http.StatusOK, h.carousel.Frame())
}
