package http

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hallowedlibrary/shelf/internal/auth"
	"github.com/hallowedlibrary/shelf/internal/carousel"
)

//go:embed templates/*.html static/*
var assets embed.FS

// templateFuncs are shared by every page template.
var templateFuncs = template.FuncMap{
	"join":        strings.Join,
	"queryEscape": url.QueryEscape,
	"dict":        dict,
	"cardStyle": func(s carousel.Style) template.CSS {
		return template.CSS(cardCSS(s))
	},
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFKey) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFKey, cfg.SecureCookies))
	}
	if cfg.WebStore != nil {
		router.Use(cfg.WebStore.LoadSave())
	}
	// A bearer header wins over the cookie session.
	router.Use(auth.BearerSession())

	tmpl := template.Must(template.New("").Funcs(templateFuncs).ParseFS(assets, "templates/*.html"))
	router.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	router.StaticFS("/static", http.FS(static))

	home := NewHomeController(cfg.Carousel, cfg.Covers != nil)
	books := NewBooksController(cfg.Catalog, cfg.Favorites)
	library := NewLibraryController(cfg.Favorites)
	account := NewAccountController(cfg.Catalog, cfg.WebStore, cfg.Favorites, cfg.LoginLimiter)
	events := NewEventsController(cfg.Carousel, cfg.Favorites)
	health := NewHealthController(cfg.Database, cfg.Carousel, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Pages
	router.GET("/", home.HomePage)
	router.GET("/search", books.SearchPage)
	router.GET("/books/:id", books.BookPage)
	router.POST("/books/:id/favorite", books.ToggleFavorite)
	router.GET("/library", library.LibraryPage)
	router.POST("/library/:id/remove", library.Remove)
	router.GET("/profile", account.ProfilePage)

	// Account forms
	router.GET("/login", account.LoginPage)
	router.POST("/login", account.Login)
	router.GET("/signup", account.SignupPage)
	router.POST("/signup", account.Signup)
	router.POST("/logout", account.Logout)

	// JSON API
	api := router.Group("/api")
	api.GET("/carousel", home.Carousel)
	api.GET("/search", books.Search)
	api.GET("/books/:id", books.Book)
	api.POST("/favorites/:id/toggle", books.ToggleFavoriteAPI)
	api.GET("/library", library.Library)
	api.GET("/profile", account.Profile)

	if cfg.Refresher != nil {
		tasksController := NewTasksController(cfg.Refresher, cfg.Tasks)
		api.POST("/featured/refresh", tasksController.RefreshFeatured)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	if cfg.Covers != nil {
		router.GET("/covers/:id", NewCoversController(cfg.Covers, cfg.Carousel).Cover)
	}

	// Server-sent events
	router.GET("/events", events.Stream)

	return router
}
