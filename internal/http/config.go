package http

import (
	"github.com/hallowedlibrary/shelf/internal/auth"
	"github.com/hallowedlibrary/shelf/internal/carousel"
	"github.com/hallowedlibrary/shelf/internal/database"
	"github.com/hallowedlibrary/shelf/internal/favorites"
	"github.com/hallowedlibrary/shelf/internal/session"
	"github.com/hallowedlibrary/shelf/internal/views"
)

// Catalog is everything the web frontend asks of the remote catalog.
type Catalog interface {
	views.Catalog
	favorites.Remote
}

// FeaturedRefresher triggers an out-of-schedule carousel reload.
type FeaturedRefresher interface {
	RefreshNow(reason string) (string, error)
}

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog   Catalog
	Favorites *favorites.Registry
	Carousel  *carousel.Rotator
	Database  *database.Database
	Covers    CoverCache // optional; covers are linked remotely when nil

	// Sessions and form protection. CSRF is skipped when CSRFKey is empty.
	WebStore      *session.WebStore
	CSRFKey       []byte
	SecureCookies bool
	LoginLimiter  *auth.RateLimiter

	// Task queue (optional)
	Refresher FeaturedRefresher
	Tasks     TaskStatusReader

	// Application info
	Version string
}
