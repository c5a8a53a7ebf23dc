package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallowedlibrary/shelf/internal/entities"
)

type stubFetcher map[string]*entities.Book

func (s stubFetcher) GetBookByISBN(ctx context.Context, isbn string) (*entities.Book, error) {
	if b, ok := s[isbn]; ok {
		return b, nil
	}
	return nil, errors.New("not found")
}

type recordingSink struct {
	mu    sync.Mutex
	items []entities.Book
	sets  int
	done  chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{done: make(chan struct{}, 1)}
}

func (r *recordingSink) SetItems(items []entities.Book) {
	r.mu.Lock()
	r.items = items
	r.sets++
	r.mu.Unlock()
	select {
	case r.done <- struct{}{}:
	default:
	}
}

func (r *recordingSink) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func TestRefreshFeatured(t *testing.T) {
	fetcher := stubFetcher{
		"1": {ID: "a", Title: "A"},
		"3": {ID: "c"},
	}
	sink := newRecordingSink()

	n, err := RefreshFeatured(context.Background(), fetcher, []string{"1", "2", "3"}, sink)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "a", sink.items[0].ID)
	assert.Equal(t, "Untitled", sink.items[1].Title)
}

func TestRefreshFeatured_KeepsItemsWhenAllFail(t *testing.T) {
	sink := newRecordingSink()
	sink.SetItems([]entities.Book{{ID: "old"}})

	_, err := RefreshFeatured(context.Background(), stubFetcher{}, []string{"1"}, sink)

	assert.ErrorIs(t, err, ErrNoFeatured)
	assert.Equal(t, 1, sink.sets)
	assert.Equal(t, "old", sink.items[0].ID)
}

func TestRefreshFeaturedQueue(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), DefaultConfig())
	require.NoError(t, err)
	defer client.Close()

	sink := newRecordingSink()
	client.Register(NewRefreshFeaturedQueue(stubFetcher{"1": {ID: "a", Title: "A"}}, []string{"1"}, sink))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.EnqueueRefreshFeatured("test")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case <-sink.done:
		assert.Equal(t, 1, sink.Len())
	case <-time.After(5 * time.Second):
		t.Fatal("refresh task was not executed within timeout")
	}
}
