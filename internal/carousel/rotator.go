package carousel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hallowedlibrary/shelf/internal/config"
	"github.com/hallowedlibrary/shelf/internal/entities"
	"github.com/hallowedlibrary/shelf/internal/logging"
)

// Frame is the carousel as rendered at one instant.
type Frame struct {
	Center int    `json:"center"`
	Total  int    `json:"total"`
	Cards  []Card `json:"cards"`
}

// Rotator owns the featured items and the center index, and moves the
// center forward every interval once started.
type Rotator struct {
	interval time.Duration

	mu     sync.RWMutex
	items  []entities.Book
	center int

	cronMu    sync.Mutex
	cron      *cron.Cron
	isRunning bool
	stop      chan struct{}
	watcher   chan struct{}

	subMu     sync.Mutex
	listeners map[int]func(Frame)
	nextSubID int
}

func NewRotator(interval time.Duration) *Rotator {
	if interval <= 0 {
		interval = config.DefaultCarouselInterval
	}
	return &Rotator{
		interval:  interval,
		listeners: make(map[int]func(Frame)),
	}
}

// SetItems replaces the ring. The center is kept when it is still in range
// and the count did not change, otherwise it restarts at zero.
func (r *Rotator) SetItems(items []entities.Book) {
	r.mu.Lock()
	if len(items) != len(r.items) || r.center >= len(items) {
		r.center = 0
	}
	r.items = append([]entities.Book(nil), items...)
	frame := r.frameLocked()
	r.mu.Unlock()

	r.notify(frame)
}

// Advance moves the center to the next item, wrapping to zero. It is a
// no-op for one item or fewer.
func (r *Rotator) Advance() {
	r.mu.Lock()
	n := len(r.items)
	if n <= 1 {
		r.mu.Unlock()
		return
	}
	r.center = (r.center + 1) % n
	frame := r.frameLocked()
	r.mu.Unlock()

	r.notify(frame)
}

func (r *Rotator) Center() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.center
}

func (r *Rotator) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Find returns the featured book with the given id.
func (r *Rotator) Find(id string) (entities.Book, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.items {
		if b.ID == id {
			return b, true
		}
	}
	return entities.Book{}, false
}

// Frame returns the current layout.
func (r *Rotator) Frame() Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frameLocked()
}

func (r *Rotator) frameLocked() Frame {
	return Frame{
		Center: r.center,
		Total:  len(r.items),
		Cards:  Layout(r.items, r.center),
	}
}

// Start schedules Advance every interval until ctx is cancelled or Stop is
// called.
func (r *Rotator) Start(ctx context.Context) error {
	r.cronMu.Lock()
	defer r.cronMu.Unlock()

	if r.isRunning {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", r.interval), r.Advance); err != nil {
		return fmt.Errorf("schedule carousel rotation: %w", err)
	}
	c.Start()
	r.cron = c
	r.isRunning = true

	logging.Log.WithField("interval", r.interval).Info("Carousel rotation started")

	r.stop = make(chan struct{})
	r.watcher = make(chan struct{})
	go watch(ctx, r.stop, r.watcher, r.Stop)

	return nil
}

// watch calls stopFn when ctx ends, and exits on its own once stop is
// closed.
func watch(ctx context.Context, stop <-chan struct{}, done chan<- struct{}, stopFn func()) {
	defer close(done)
	select {
	case <-ctx.Done():
		stopFn()
	case <-stop:
	}
}

// Stop cancels the rotation timer.
func (r *Rotator) Stop() {
	r.cronMu.Lock()
	defer r.cronMu.Unlock()

	if !r.isRunning {
		return
	}

	<-r.cron.Stop().Done()
	close(r.stop)
	r.isRunning = false
	logging.Log.Info("Carousel rotation stopped")
}

// Subscribe registers fn for every frame change and returns a function that
// removes it.
func (r *Rotator) Subscribe(fn func(Frame)) func() {
	r.subMu.Lock()
	id := r.nextSubID
	r.nextSubID++
	r.listeners[id] = fn
	r.subMu.Unlock()

	return func() {
		r.subMu.Lock()
		delete(r.listeners, id)
		r.subMu.Unlock()
	}
}

func (r *Rotator) notify(f Frame) {
	r.subMu.Lock()
	listeners := make([]func(Frame), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.subMu.Unlock()

	for _, fn := range listeners {
		fn(f)
	}
}
