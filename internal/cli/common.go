// Package cli implements the terminal commands. Each command parses its own
// flag set and talks to the same catalog API as the web frontend; the
// session is kept in the local database.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/hallowedlibrary/shelf/internal/catalog"
	"github.com/hallowedlibrary/shelf/internal/config"
	"github.com/hallowedlibrary/shelf/internal/crypto"
	"github.com/hallowedlibrary/shelf/internal/database"
	"github.com/hallowedlibrary/shelf/internal/entities"
	"github.com/hallowedlibrary/shelf/internal/favorites"
	"github.com/hallowedlibrary/shelf/internal/session"
	"github.com/hallowedlibrary/shelf/internal/views"
)

// Catalog is what the commands need from the remote API.
type Catalog interface {
	views.Catalog
	favorites.Remote
	GetBookByISBN(ctx context.Context, isbn string) (*entities.Book, error)
}

// base holds the flags and wiring shared by every command. Tests set
// Catalog and Out directly.
type base struct {
	APIBaseURL   string
	DatabasePath string
	Timeout      time.Duration
	// Secret seals the saved token; read from SESSION_SECRET.
	Secret string

	Catalog Catalog
	Out     io.Writer
}

func (b *base) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(&b.APIBaseURL, "api", envOr("API_BASE_URL", config.DefaultAPIBaseURL), "Catalog API base URL, including the /api prefix")
	fs.StringVar(&b.DatabasePath, "db", envOr("DATABASE_PATH", config.DefaultDatabasePath), "Path to the local database holding the session")
	fs.DurationVar(&b.Timeout, "timeout", 30*time.Second, "Overall timeout for the command")
	b.Secret = os.Getenv("SESSION_SECRET")
}

func (b *base) out() io.Writer {
	if b.Out == nil {
		return os.Stdout
	}
	return b.Out
}

func (b *base) printf(format string, args ...any) {
	fmt.Fprintf(b.out(), format, args...)
}

func (b *base) client() Catalog {
	if b.Catalog == nil {
		b.Catalog = catalog.NewClient(b.APIBaseURL, b.Timeout)
	}
	return b.Catalog
}

// runContext is cancelled on Ctrl-C or when the timeout elapses.
func (b *base) runContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if b.Timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// openSession opens the local database and loads the saved session, which
// is nil when nobody is logged in.
func (b *base) openSession(ctx context.Context) (*database.Database, *session.LocalStore, *session.Session, error) {
	path := b.DatabasePath
	if path == "" {
		path = config.DefaultDatabasePath
	}
	db, err := database.NewDatabase(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := session.NewLocalStore(db)
	if b.Secret != "" {
		sealer, err := crypto.SealerFromSecret(b.Secret)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		store.WithSealer(sealer)
	}
	sess, err := store.Load(ctx)
	if err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to load session: %w", err)
	}
	return db, store, sess, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func star(on bool) string {
	if on {
		return "★"
	}
	return " "
}
