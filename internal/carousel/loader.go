package carousel

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hallowedlibrary/shelf/internal/entities"
	"github.com/hallowedlibrary/shelf/internal/logging"
)

// UntitledBook replaces a missing title.
const UntitledBook = "Untitled"

// Fetcher looks up a single featured book.
type Fetcher interface {
	GetBookByISBN(ctx context.Context, isbn string) (*entities.Book, error)
}

// Result is the outcome of one lookup: a book, or absent with the reason.
type Result struct {
	Key  string
	Book *entities.Book
	Err  error
}

// Present reports whether the lookup produced a usable book.
func (r Result) Present() bool {
	return r.Err == nil && r.Book != nil && r.Book.ID != ""
}

// FetchAll looks up every key concurrently and waits for all of them to
// settle. The results keep the order of keys; failures never cancel the
// other lookups.
func FetchAll(ctx context.Context, fetcher Fetcher, keys []string) []Result {
	results := make([]Result, len(keys))

	var g errgroup.Group
	for i, key := range keys {
		g.Go(func() error {
			book, err := fetcher.GetBookByISBN(ctx, key)
			results[i] = Result{Key: key, Book: book, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Collect keeps the present results, in order, and fills display defaults.
func Collect(results []Result) []entities.Book {
	books := make([]entities.Book, 0, len(results))
	for _, r := range results {
		if !r.Present() {
			continue
		}
		book := *r.Book
		if book.Title == "" {
			book.Title = UntitledBook
		}
		if book.Authors == nil {
			book.Authors = []string{}
		}
		books = append(books, book)
	}
	return books
}

// LoadFeatured fetches and collects the featured books, logging each
// lookup that had to be dropped.
func LoadFeatured(ctx context.Context, fetcher Fetcher, isbns []string) []entities.Book {
	results := FetchAll(ctx, fetcher, isbns)
	for _, r := range results {
		if r.Present() {
			continue
		}
		entry := logging.Log.WithField("isbn", r.Key)
		if r.Err != nil {
			entry = entry.WithError(r.Err)
		}
		entry.Warn("Skipping featured book")
	}

	books := Collect(results)
	logging.Log.WithFields(logrus.Fields{
		"requested": len(isbns),
		"loaded":    len(books),
	}).Info("Featured books loaded")
	return books
}
