package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habittracker/internal/calendar"
)

type TaskHandler struct {
	tasks  TaskService
	guard  IdempotencyGuard
	loc    *time.Location
	logger *zap.Logger
}

func NewTaskHandler(tasks TaskService, guard IdempotencyGuard, loc *time.Location, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, guard: guard, loc: loc, logger: logger}
}

type createTaskRequest struct {
	Title string `json:"title" binding:"required,max=200"`
	Date  string `json:"date" binding:"required"`
}

// CreateTask POST /single-task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("CreateTask: invalid body", zap.Error(err))
		badRequest(c, err.Error())
		return
	}
	title, ok := checkTitle(req.Title)
	if !ok {
		badRequest(c, "title must not be blank")
		return
	}
	date, err := calendar.ParseDate(req.Date, h.loc)
	if err != nil {
		badRequest(c, "invalid date")
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), title, date)
	if err != nil {
		respondError(c, h.logger, "CreateTask", err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// ListTasks GET /single-task?date=
func (h *TaskHandler) ListTasks(c *gin.Context) {
	date, ok := optionalDate(c, "date", h.loc)
	if !ok {
		return
	}
	if date == nil {
		badRequest(c, "date required")
		return
	}

	tasks, err := h.tasks.ListByDate(c.Request.Context(), *date)
	if err != nil {
		respondError(c, h.logger, "ListTasks", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// ToggleTask PATCH /tasks/:id/toggle
func (h *TaskHandler) ToggleTask(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	replay, release := claimKey(c, h.guard, "task.toggle:"+id.String())
	if replay {
		task, err := h.tasks.Get(ctx, id)
		if err != nil {
			respondError(c, h.logger, "ToggleTask", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"completed": task.Completed})
		return
	}

	task, err := h.tasks.Toggle(ctx, id)
	if err != nil {
		release()
		respondError(c, h.logger, "ToggleTask", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": task.Completed})
}

// DeleteTask DELETE /tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "DeleteTask", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}
