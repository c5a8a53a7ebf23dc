package session

import (
	"bufio"
	"context"
	"database/sql"
	"net"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"

	"github.com/hallowedlibrary/shelf/internal/config"
)

// WebStore keeps the session in a cookie-referenced scs session backed by
// the SQLite sessions table.
type WebStore struct {
	*scs.SessionManager
}

// NewWebStore creates the sessions table if needed and configures scs.
func NewWebStore(sqlDB *sql.DB, cfg config.Session) (*WebStore, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = cfg.Lifetime
	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &WebStore{SessionManager: sm}, nil
}

func (w *WebStore) Load(ctx context.Context) (*Session, error) {
	token := w.GetString(ctx, KeyToken)
	if token == "" {
		return nil, nil
	}
	user, err := decodeUser(w.GetString(ctx, KeyUser))
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

// Save renews the scs token to prevent session fixation.
func (w *WebStore) Save(ctx context.Context, s *Session) error {
	user, err := encodeUser(s.User)
	if err != nil {
		return err
	}
	if err := w.RenewToken(ctx); err != nil {
		return err
	}
	w.Put(ctx, KeyToken, s.Token)
	w.Put(ctx, KeyUser, user)
	return nil
}

func (w *WebStore) Clear(ctx context.Context) error {
	return w.Destroy(ctx)
}

// sessionResponseWriter writes the session cookie before the first byte of
// the response goes out.
type sessionResponseWriter struct {
	gin.ResponseWriter
	store         *WebStore
	request       *http.Request
	wroteHeader   bool
	cookieWritten bool
}

func (w *sessionResponseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.writeSessionCookie()
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionResponseWriter) WriteHeaderNow() {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.writeSessionCookie()
	}
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.writeSessionCookie()
	}
	return w.ResponseWriter.Write(b)
}

func (w *sessionResponseWriter) WriteString(s string) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.writeSessionCookie()
	}
	return w.ResponseWriter.WriteString(s)
}

func (w *sessionResponseWriter) writeSessionCookie() {
	if w.cookieWritten {
		return
	}
	w.cookieWritten = true

	ctx := w.request.Context()
	switch w.store.Status(ctx) {
	case scs.Modified:
		token, expiry, err := w.store.Commit(ctx)
		if err != nil {
			return
		}
		w.store.WriteSessionCookie(ctx, w.ResponseWriter, token, expiry)
	case scs.Destroyed:
		w.store.WriteSessionCookie(ctx, w.ResponseWriter, "", time.Time{})
	}
}

func (w *sessionResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.Hijack()
}

// LoadSave is the gin counterpart of scs LoadAndSave. It also places the
// loaded *Session into the request context for FromContext.
func (w *WebStore) LoadSave() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if cookie, err := c.Request.Cookie(w.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := w.SessionManager.Load(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		current, err := w.Load(ctx)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Request = c.Request.WithContext(WithSession(ctx, current))

		srw := &sessionResponseWriter{
			ResponseWriter: c.Writer,
			store:          w,
			request:        c.Request,
		}
		c.Writer = srw

		c.Next()

		if !srw.wroteHeader {
			srw.writeSessionCookie()
		}
	}
}
