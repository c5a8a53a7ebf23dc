// Package favorites mirrors the signed-in user's saved library. A single
// Service per user is shared by every view that shows favorite state.
package favorites

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hallowedlibrary/shelf/internal/entities"
	"github.com/hallowedlibrary/shelf/internal/logging"
	"github.com/hallowedlibrary/shelf/internal/session"
)

// ErrLoginRequired is returned without any network call when the session
// carries no bearer token.
var ErrLoginRequired = errors.New("login required")

// LoginPrompt is shown to anonymous users who try to favorite a book.
const LoginPrompt = "You must be logged in to use favorites."

// Remote is the subset of the catalog client the service needs.
type Remote interface {
	ListFavorites(ctx context.Context, token string) ([]entities.FavoriteEntry, error)
	AddFavorite(ctx context.Context, token string, entry entities.FavoriteEntry) error
	RemoveFavorite(ctx context.Context, token, volumeID string) error
}

type EventKind string

const (
	EventAdded    EventKind = "added"
	EventRemoved  EventKind = "removed"
	EventReloaded EventKind = "reloaded"
)

// Event describes a change to the local set. VolumeID is empty for reloads.
type Event struct {
	Kind     EventKind `json:"kind"`
	VolumeID string    `json:"volumeId,omitempty"`
	Count    int       `json:"count"`
}

// Listener is called after the set changed, outside of any lock.
type Listener func(Event)

// Service keeps a local set of favorited volume ids in step with the remote
// library. Mutations are applied only after the remote call succeeds. There
// is no per-id exclusion: concurrent toggles of the same id race and the
// last response to arrive decides the local state.
type Service struct {
	remote Remote

	mu      sync.RWMutex
	entries map[string]entities.FavoriteEntry
	order   []string
	loaded  bool

	subMu     sync.Mutex
	listeners map[int]Listener
	nextSubID int
}

func NewService(remote Remote) *Service {
	return &Service{
		remote:    remote,
		entries:   make(map[string]entities.FavoriteEntry),
		listeners: make(map[int]Listener),
	}
}

// Load replaces the local set with the remote library.
func (s *Service) Load(ctx context.Context, sess *session.Session) error {
	if !sess.Authenticated() {
		return ErrLoginRequired
	}

	list, err := s.remote.ListFavorites(ctx, sess.BearerToken())
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries = make(map[string]entities.FavoriteEntry, len(list))
	s.order = s.order[:0]
	for _, entry := range list {
		if entry.VolumeID == "" {
			continue
		}
		if _, dup := s.entries[entry.VolumeID]; !dup {
			s.order = append(s.order, entry.VolumeID)
		}
		s.entries[entry.VolumeID] = entry
	}
	s.loaded = true
	count := len(s.order)
	s.mu.Unlock()

	s.notify(Event{Kind: EventReloaded, Count: count})
	return nil
}

// EnsureLoaded calls Load unless a previous Load succeeded.
func (s *Service) EnsureLoaded(ctx context.Context, sess *session.Session) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Load(ctx, sess)
}

// Add saves entry remotely, then inserts it locally.
func (s *Service) Add(ctx context.Context, sess *session.Session, entry entities.FavoriteEntry) error {
	if !sess.Authenticated() {
		return ErrLoginRequired
	}

	if err := s.remote.AddFavorite(ctx, sess.BearerToken(), entry); err != nil {
		logging.Log.WithFields(logrus.Fields{
			"volume_id": entry.VolumeID,
			"error":     err,
		}).Warn("Failed to add favorite")
		return err
	}

	s.mu.Lock()
	if _, exists := s.entries[entry.VolumeID]; !exists {
		s.order = append(s.order, entry.VolumeID)
	}
	s.entries[entry.VolumeID] = entry
	count := len(s.order)
	s.mu.Unlock()

	s.notify(Event{Kind: EventAdded, VolumeID: entry.VolumeID, Count: count})
	return nil
}

// Remove deletes volumeID remotely, then drops it locally.
func (s *Service) Remove(ctx context.Context, sess *session.Session, volumeID string) error {
	if !sess.Authenticated() {
		return ErrLoginRequired
	}

	if err := s.remote.RemoveFavorite(ctx, sess.BearerToken(), volumeID); err != nil {
		logging.Log.WithFields(logrus.Fields{
			"volume_id": volumeID,
			"error":     err,
		}).Warn("Failed to remove favorite")
		return err
	}

	s.mu.Lock()
	delete(s.entries, volumeID)
	for i, id := range s.order {
		if id == volumeID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	count := len(s.order)
	s.mu.Unlock()

	s.notify(Event{Kind: EventRemoved, VolumeID: volumeID, Count: count})
	return nil
}

// Toggle removes entry if it is a favorite and adds it otherwise. It returns
// the resulting local state, which is unchanged on error.
func (s *Service) Toggle(ctx context.Context, sess *session.Session, entry entities.FavoriteEntry) (bool, error) {
	if s.Contains(entry.VolumeID) {
		if err := s.Remove(ctx, sess, entry.VolumeID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := s.Add(ctx, sess, entry); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) Contains(volumeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[volumeID]
	return ok
}

// IDs returns the favorited ids in the order they were added.
func (s *Service) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Entries returns the favorites in the order they were added.
func (s *Service) Entries() []entities.FavoriteEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.FavoriteEntry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id])
	}
	return out
}

func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Subscribe registers l and returns a function that removes it.
func (s *Service) Subscribe(l Listener) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = l
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.listeners, id)
		s.subMu.Unlock()
	}
}

func (s *Service) notify(e Event) {
	s.subMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.subMu.Unlock()

	for _, l := range listeners {
		l(e)
	}
}
