package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hallowedlibrary/shelf/internal/auth"
	"github.com/hallowedlibrary/shelf/internal/carousel"
	"github.com/hallowedlibrary/shelf/internal/catalog"
	"github.com/hallowedlibrary/shelf/internal/config"
	"github.com/hallowedlibrary/shelf/internal/covers"
	"github.com/hallowedlibrary/shelf/internal/database"
	"github.com/hallowedlibrary/shelf/internal/favorites"
	http_controllers "github.com/hallowedlibrary/shelf/internal/http"
	"github.com/hallowedlibrary/shelf/internal/logging"
	"github.com/hallowedlibrary/shelf/internal/scheduler"
	"github.com/hallowedlibrary/shelf/internal/session"
	"github.com/hallowedlibrary/shelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// newServer builds the HTTP server. Request contexts derive from a context
// that is cancelled when Shutdown starts, so long-lived event streams end
// instead of holding the shutdown open until its deadline.
func newServer(addr string, handler http.Handler) *http.Server {
	base, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:        addr,
		Handler:     handler,
		BaseContext: func(net.Listener) context.Context { return base },
	}
	srv.RegisterOnShutdown(cancel)
	return srv
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := newServer(fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port), router)

	go func() {
		logging.Log.Infof("Starting server at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Log.Fatalf("listen: %s", err)
		}
	}()

	// kill -2 is SIGINT, plain kill sends SIGTERM; SIGKILL cannot be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Log.Infof("Shutdown server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so nothing writes to a closing database.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	// Not fatal: the caller still has deferred cleanup to run.
	if err := srv.Shutdown(ctx); err != nil {
		logging.Log.WithError(err).Error("Server shutdown did not complete")
		return
	}

	logging.Log.Info("Server exiting")
}

// featuredRefresher routes refresh requests through the task queue, or runs
// them in a goroutine when the queue is disabled.
type featuredRefresher struct {
	ctx     context.Context
	client  *tasks.Client
	catalog carousel.Fetcher
	isbns   []string
	sink    tasks.FeaturedSink
}

func (f *featuredRefresher) RefreshNow(reason string) (string, error) {
	if f.client != nil {
		return f.client.EnqueueRefreshFeatured(reason)
	}

	go func() {
		n, err := tasks.RefreshFeatured(f.ctx, f.catalog, f.isbns, f.sink)
		if err != nil {
			logging.Log.WithError(err).WithField("reason", reason).Warn("Featured refresh failed")
			return
		}
		logging.Log.WithFields(logrus.Fields{"reason": reason, "books": n}).Info("Featured carousel refreshed")
	}()
	return "", nil
}

func Run(cfg *config.Config, version string) {
	logging.Configure(cfg.Log.Level)
	logging.Log.Infof("Starting Shelf v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logging.Log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Log.WithError(err).Error("Error closing database")
		}
	}()

	sqlDB, err := db.SQLDB()
	if err != nil {
		logging.Log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	webStore, err := session.NewWebStore(sqlDB, cfg.Session)
	if err != nil {
		logging.Log.Fatalf("Failed to initialize session store: %v", err)
	}

	csrfKey, err := auth.CSRFKey(cfg.Session.Secret)
	if err != nil {
		logging.Log.Fatalf("Failed to create CSRF key: %v", err)
	}
	if cfg.Session.Secret == "" {
		logging.Log.Warn("SESSION_SECRET is not set, generated a CSRF key for this run only")
	}

	client := catalog.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	logging.Log.WithField("base_url", client.BaseURL()).Info("Catalog API configured")

	registry := favorites.NewRegistry(client)
	rotator := carousel.NewRotator(cfg.Carousel.Interval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rotator.Start(ctx); err != nil {
		logging.Log.Fatalf("Failed to start carousel: %v", err)
	}

	refresher := &featuredRefresher{
		ctx:     ctx,
		catalog: client,
		isbns:   cfg.Carousel.FeaturedISBNs,
		sink:    rotator,
	}

	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromAppConfig(cfg.Tasks))
		if err != nil {
			logging.Log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logging.Log.WithError(err).Error("Error closing task client")
			}
		}()

		taskClient.Register(tasks.NewRefreshFeaturedQueue(client, cfg.Carousel.FeaturedISBNs, rotator))
		go taskClient.Start(ctx)
		refresher.client = taskClient
	}

	if _, err := refresher.RefreshNow("startup"); err != nil {
		logging.Log.WithError(err).Error("Failed to queue initial featured refresh")
	}

	featuredScheduler := scheduler.NewFeaturedRefreshScheduler(cfg.Carousel.RefreshSchedule, func(ctx context.Context, reason string) error {
		_, err := refresher.RefreshNow(reason)
		return err
	})
	if err := featuredScheduler.Start(ctx); err != nil {
		logging.Log.WithError(err).Error("Featured refresh scheduler not started")
	}

	coverCacheDir := filepath.Join(filepath.Dir(cfg.Database.Path), "covers")
	coverCache, err := covers.NewCache(coverCacheDir)
	if err != nil {
		logging.Log.WithError(err).Warn("Failed to initialize cover cache, linking remote covers")
	} else {
		logging.Log.WithField("dir", coverCacheDir).Info("Cover cache initialized")
	}

	limiter := auth.NewRateLimiter(auth.DefaultRateLimitConfig())
	defer limiter.Stop()

	routerCfg := http_controllers.RouterConfig{
		Catalog:       client,
		Favorites:     registry,
		Carousel:      rotator,
		Database:      db,
		WebStore:      webStore,
		CSRFKey:       csrfKey,
		SecureCookies: cfg.Session.SecureCookies,
		LoginLimiter:  limiter,
		Refresher:     refresher,
		Version:       version,
	}
	if taskClient != nil {
		routerCfg.Tasks = taskClient
	}
	if coverCache != nil {
		routerCfg.Covers = coverCache
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		featuredScheduler.Stop()
		rotator.Stop()
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		cancel()
	}

	Serve(router, cfg, onShutdown)
}
