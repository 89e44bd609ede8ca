package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/booklibrary/internal/tasks"
)

// TaskEnqueuer adds a task to the background queue.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

// TaskQueue enqueues tasks and reports their status.
type TaskQueue interface {
	TaskEnqueuer
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// TasksController handles task queue management endpoints.
type TasksController struct {
	queue TaskQueue
}

// NewTasksController creates a new TasksController.
func NewTasksController(queue TaskQueue) *TasksController {
	return &TasksController{queue: queue}
}

// ListTaskTypes handles GET /api/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"task_types": tasks.TaskTypes})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": tasks.StatusString(status),
	})
}

// RunTaskRequest is the optional body of a task run.
type RunTaskRequest struct {
	BookID uint   `json:"book_id,omitempty"`
	ISBN   string `json:"isbn,omitempty"`
}

// RunTask handles POST /api/tasks/:type/run
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var req RunTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	task, err := tasks.NewTask(taskType, req.BookID, req.ISBN)
	if err != nil {
		var unknown *tasks.UnknownTaskError
		if errors.As(err, &unknown) {
			respondNotFound(c, "task type "+unknown.Type)
			return
		}
		respondBadRequest(c, err.Error())
		return
	}

	id, err := tc.queue.Enqueue(c.Request.Context(), task)
	if err != nil {
		respondInternalError(c, err, "enqueue task")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id": id,
		"type":    taskType,
		"message": "task enqueued",
	})
}
