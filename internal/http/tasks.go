package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/hallowedlibrary/shelf/internal/tasks"
)

// TaskStatusReader looks up queued task state.
type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// TasksController exposes the featured refresh task.
type TasksController struct {
	refresher FeaturedRefresher
	status    TaskStatusReader
}

func NewTasksController(refresher FeaturedRefresher, status TaskStatusReader) *TasksController {
	return &TasksController{refresher: refresher, status: status}
}

// RefreshFeatured handles POST /api/featured/refresh.
func (tc *TasksController) RefreshFeatured(c *gin.Context) {
	id, err := tc.refresher.RefreshNow("manual")
	if err != nil {
		respondInternalError(c, err, "refresh featured")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"message": "featured refresh queued",
		"task_id": id,
	})
}

// GetTaskStatus handles GET /api/tasks/:id.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	if tc.status == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "task queue disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	taskID := c.Param("id")
	status, err := tc.status.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": tasks.StatusString(status),
	})
}
