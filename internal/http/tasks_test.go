package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
)

type fakeRefresher struct {
	reasons []string
	err     error
}

func (f *fakeRefresher) RefreshNow(reason string) (string, error) {
	f.reasons = append(f.reasons, reason)
	if f.err != nil {
		return "", f.err
	}
	return "task-1", nil
}

type fakeStatus struct {
	status backlite.TaskStatus
}

func (f fakeStatus) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return f.status, nil
}

func setupTasksRouter(refresher FeaturedRefresher, status TaskStatusReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	tc := NewTasksController(refresher, status)
	router.POST("/api/featured/refresh", tc.RefreshFeatured)
	router.GET("/api/tasks/:id", tc.GetTaskStatus)
	return router
}

func TestTasksController_RefreshFeatured(t *testing.T) {
	t.Run("queues a manual refresh", func(t *testing.T) {
		refresher := &fakeRefresher{}
		router := setupTasksRouter(refresher, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/featured/refresh", nil))

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Contains(t, w.Body.String(), `"task_id":"task-1"`)
		assert.Equal(t, []string{"manual"}, refresher.reasons)
	})

	t.Run("reports enqueue failures", func(t *testing.T) {
		router := setupTasksRouter(&fakeRefresher{err: errors.New("queue closed")}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/featured/refresh", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "queue closed")
	})
}

func TestTasksController_GetTaskStatus(t *testing.T) {
	t.Run("returns the status name", func(t *testing.T) {
		router := setupTasksRouter(&fakeRefresher{}, fakeStatus{status: backlite.TaskStatusSuccess})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks/abc", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"abc","status":"success"}`, w.Body.String())
	})

	t.Run("queue disabled", func(t *testing.T) {
		router := setupTasksRouter(&fakeRefresher{}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks/abc", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
