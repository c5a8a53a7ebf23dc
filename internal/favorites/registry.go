package favorites

import (
	"strconv"
	"sync"

	"github.com/hallowedlibrary/shelf/internal/session"
)

// Registry hands out one Service per signed-in user so the search, detail
// and library views share the same set.
type Registry struct {
	remote Remote

	mu       sync.Mutex
	services map[string]*Service
}

func NewRegistry(remote Remote) *Registry {
	return &Registry{
		remote:   remote,
		services: make(map[string]*Service),
	}
}

// For returns the service of sess, creating it on first use. Anonymous
// sessions and bare bearer tokens with no known user get a fresh, unshared
// service, so unverified tokens never grow the registry.
func (r *Registry) For(sess *session.Session) *Service {
	if !shared(sess) {
		return NewService(r.remote)
	}

	key := registryKey(sess)
	r.mu.Lock()
	defer r.mu.Unlock()

	if svc, ok := r.services[key]; ok {
		return svc
	}
	svc := NewService(r.remote)
	r.services[key] = svc
	return svc
}

// Forget drops the service of sess, typically on logout.
func (r *Registry) Forget(sess *session.Session) {
	if !shared(sess) {
		return
	}
	r.mu.Lock()
	delete(r.services, registryKey(sess))
	r.mu.Unlock()
}

// Len reports how many services are cached.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.services)
}

func shared(sess *session.Session) bool {
	return sess.Authenticated() && sess.UserID() != 0
}

func registryKey(sess *session.Session) string {
	return "user:" + strconv.FormatInt(sess.UserID(), 10)
}
