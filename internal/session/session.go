// Package session holds the credentials of the signed-in user and the stores
// that persist them between requests or CLI invocations.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hallowedlibrary/shelf/internal/entities"
)

// Fixed storage keys for the two persisted values.
const (
	KeyToken = entities.SettingKeySessionToken
	KeyUser  = entities.SettingKeySessionUser
)

// Session is the signed-in user's bearer token plus the profile returned at
// login. A nil *Session means nobody is signed in.
type Session struct {
	Token string
	User  entities.User
}

// New builds a session from a login response.
func New(resp *entities.LoginResponse) *Session {
	return &Session{Token: resp.AccessToken, User: resp.User}
}

// Authenticated is safe to call on a nil session.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// BearerToken returns "" for a nil session.
func (s *Session) BearerToken() string {
	if s == nil {
		return ""
	}
	return s.Token
}

// UserID returns 0 for a nil session.
func (s *Session) UserID() int64 {
	if s == nil {
		return 0
	}
	return s.User.ID
}

// Store persists a session. Load returns (nil, nil) when nothing is stored.
type Store interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

type contextKey struct{}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by WithSession, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}

func encodeUser(u entities.User) (string, error) {
	raw, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("encode user: %w", err)
	}
	return string(raw), nil
}

func decodeUser(raw string) (entities.User, error) {
	var u entities.User
	if raw == "" {
		return u, nil
	}
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return u, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}
