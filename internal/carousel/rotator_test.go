package carousel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotator_Advance(t *testing.T) {
	r := NewRotator(time.Second)
	r.SetItems(books("A", "B", "C"))

	r.Advance()
	assert.Equal(t, 1, r.Center())
	r.Advance()
	r.Advance()
	assert.Equal(t, 0, r.Center())
}

func TestRotator_NoAdvanceForSingleItem(t *testing.T) {
	r := NewRotator(time.Second)
	r.Advance()
	assert.Equal(t, 0, r.Center())

	r.SetItems(books("A"))
	r.Advance()
	assert.Equal(t, 0, r.Center())
}

func TestRotator_SetItemsResetsCenter(t *testing.T) {
	r := NewRotator(time.Second)
	r.SetItems(books("A", "B", "C"))
	r.Advance()
	r.Advance()

	r.SetItems(books("X", "Y", "Z"))
	assert.Equal(t, 2, r.Center())

	r.SetItems(books("A", "B"))
	assert.Equal(t, 0, r.Center())
}

func TestRotator_Frame(t *testing.T) {
	r := NewRotator(time.Second)
	assert.Empty(t, r.Frame().Cards)

	r.SetItems(books("A", "B", "C", "D", "E", "F", "G"))
	frame := r.Frame()
	assert.Equal(t, 7, frame.Total)
	assert.Len(t, frame.Cards, 5)
}

func TestRotator_Subscribe(t *testing.T) {
	r := NewRotator(time.Second)
	var mu sync.Mutex
	var centers []int
	unsubscribe := r.Subscribe(func(f Frame) {
		mu.Lock()
		centers = append(centers, f.Center)
		mu.Unlock()
	})

	r.SetItems(books("A", "B"))
	r.Advance()
	unsubscribe()
	r.Advance()

	assert.Equal(t, []int{0, 1}, centers)
}

func TestRotator_StartStop(t *testing.T) {
	r := NewRotator(time.Second)
	r.SetItems(books("A", "B", "C"))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.Start(ctx))

	assert.Eventually(t, func() bool { return r.Center() != 0 }, 3*time.Second, 50*time.Millisecond)

	cancel()
	assert.Eventually(t, func() bool {
		r.cronMu.Lock()
		defer r.cronMu.Unlock()
		return !r.isRunning
	}, time.Second, 10*time.Millisecond)

	stopped := r.Center()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, stopped, r.Center())
}

func TestRotator_StopEndsWatcher(t *testing.T) {
	r := NewRotator(time.Hour)
	ctx := context.Background()

	var watchers []chan struct{}
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Start(ctx))
		watchers = append(watchers, r.watcher)
		r.Stop()
	}

	for i, done := range watchers {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("watcher %d still running after Stop", i)
		}
	}
	assert.NotPanics(t, r.Stop)
}

func TestRotator_Find(t *testing.T) {
	r := NewRotator(time.Hour)
	r.SetItems(books("a", "b"))

	b, ok := r.Find("b")
	assert.True(t, ok)
	assert.Equal(t, "b", b.ID)

	_, ok = r.Find("z")
	assert.False(t, ok)
}
