package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus"

	"github.com/hallowedlibrary/shelf/internal/carousel"
	"github.com/hallowedlibrary/shelf/internal/entities"
	"github.com/hallowedlibrary/shelf/internal/logging"
)

// RefreshFeaturedQueue is the queue name of RefreshFeaturedTask.
const RefreshFeaturedQueue = "refresh_featured"

// ErrNoFeatured is returned when no featured ISBN resolved to a book.
var ErrNoFeatured = errors.New("no featured books could be loaded")

// RefreshFeaturedTask reloads the home carousel from the catalog.
type RefreshFeaturedTask struct {
	Reason string `json:"reason"`
}

// Config disables retries; failed lookups are simply left out until the
// next scheduled refresh.
func (t RefreshFeaturedTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        RefreshFeaturedQueue,
		MaxAttempts: 1,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// FeaturedSink receives the reloaded carousel items.
type FeaturedSink interface {
	SetItems(items []entities.Book)
	Len() int
}

// RefreshFeatured loads isbns and hands the present books to sink. When
// nothing loads the current items are kept, so a catalog outage does not
// blank a carousel that was already filled.
func RefreshFeatured(ctx context.Context, fetcher carousel.Fetcher, isbns []string, sink FeaturedSink) (int, error) {
	books := carousel.LoadFeatured(ctx, fetcher, isbns)
	if len(books) == 0 && len(isbns) > 0 {
		if sink.Len() > 0 {
			logging.Log.Warn("Featured refresh returned nothing, keeping current carousel")
		}
		return 0, ErrNoFeatured
	}
	sink.SetItems(books)
	return len(books), nil
}

// RefreshFeaturedProcessor creates the processor for RefreshFeaturedTask.
func RefreshFeaturedProcessor(fetcher carousel.Fetcher, isbns []string, sink FeaturedSink) backlite.QueueProcessor[RefreshFeaturedTask] {
	return func(ctx context.Context, task RefreshFeaturedTask) error {
		n, err := RefreshFeatured(ctx, fetcher, isbns, sink)
		if err != nil {
			return err
		}
		logging.Log.WithFields(logrus.Fields{
			"reason": task.Reason,
			"books":  n,
		}).Info("Featured carousel refreshed")
		return nil
	}
}

// NewRefreshFeaturedQueue creates a backlite queue for featured refreshes.
func NewRefreshFeaturedQueue(fetcher carousel.Fetcher, isbns []string, sink FeaturedSink) backlite.Queue {
	return backlite.NewQueue(RefreshFeaturedProcessor(fetcher, isbns, sink))
}

// EnqueueRefreshFeatured schedules a refresh and returns the task id.
func (c *Client) EnqueueRefreshFeatured(reason string) (string, error) {
	ids, err := c.Add(RefreshFeaturedTask{Reason: reason}).Save()
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", errors.New("no task id returned")
	}
	return ids[0], nil
}

// StatusString renders a backlite status for logs and JSON.
func StatusString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
