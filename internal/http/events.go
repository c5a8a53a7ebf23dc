package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hallowedlibrary/shelf/internal/carousel"
	"github.com/hallowedlibrary/shelf/internal/favorites"
)

// keepAliveInterval keeps proxies from closing idle streams.
const keepAliveInterval = 30 * time.Second

// FavoritesSnapshot is the payload of the "favorites" event.
type FavoritesSnapshot struct {
	Kind     favorites.EventKind `json:"kind"`
	VolumeID string              `json:"volumeId,omitempty"`
	IDs      []string            `json:"ids"`
}

// EventsController streams carousel rotation and favorites changes as
// server-sent events.
type EventsController struct {
	carousel  *carousel.Rotator
	favorites *favorites.Registry
}

func NewEventsController(rotator *carousel.Rotator, registry *favorites.Registry) *EventsController {
	return &EventsController{carousel: rotator, favorites: registry}
}

// Stream handles GET /events. The current frame, and for a signed-in user
// the current favorites, are sent on connect.
func (ec *EventsController) Stream(c *gin.Context) {
	frames := make(chan carousel.Frame, 4)
	unsubscribeFrames := ec.carousel.Subscribe(func(f carousel.Frame) {
		select {
		case frames <- f:
		default:
			// Slow client; it catches up on the next rotation.
		}
	})
	defer unsubscribeFrames()

	var favEvents chan favorites.Event
	var favs *favorites.Service
	sess := currentSession(c)
	if sess.Authenticated() {
		favs = ec.favorites.For(sess)
		favEvents = make(chan favorites.Event, 16)
		unsubscribeFavs := favs.Subscribe(func(e favorites.Event) {
			select {
			case favEvents <- e:
			default:
			}
		})
		defer unsubscribeFavs()
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("carousel", ec.carousel.Frame())
	if favs != nil {
		c.SSEvent("favorites", FavoritesSnapshot{Kind: favorites.EventReloaded, IDs: favs.IDs()})
	}
	c.Writer.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-frames:
			c.SSEvent("carousel", f)
		case e := <-favEvents:
			c.SSEvent("favorites", FavoritesSnapshot{Kind: e.Kind, VolumeID: e.VolumeID, IDs: favs.IDs()})
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().Unix())
		}
		c.Writer.Flush()
	}
}
