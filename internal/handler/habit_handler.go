package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"habittracker/internal/calendar"
)

type HabitHandler struct {
	habits HabitService
	guard  IdempotencyGuard
	loc    *time.Location
	logger *zap.Logger
}

func NewHabitHandler(habits HabitService, guard IdempotencyGuard, loc *time.Location, logger *zap.Logger) *HabitHandler {
	return &HabitHandler{habits: habits, guard: guard, loc: loc, logger: logger}
}

type createHabitRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	WeekDays []int  `json:"weekDays" binding:"required,min=1,max=7,unique,dive,min=0,max=6"`
}

// CreateHabit POST /habits
func (h *HabitHandler) CreateHabit(c *gin.Context) {
	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("CreateHabit: invalid body", zap.Error(err))
		badRequest(c, err.Error())
		return
	}
	title, ok := checkTitle(req.Title)
	if !ok {
		badRequest(c, "title must not be blank")
		return
	}

	habit, err := h.habits.Create(c.Request.Context(), title, req.WeekDays)
	if err != nil {
		respondError(c, h.logger, "CreateHabit", err)
		return
	}
	c.JSON(http.StatusCreated, habit)
}

// ListHabits GET /habits
func (h *HabitHandler) ListHabits(c *gin.Context) {
	habits, err := h.habits.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "ListHabits", err)
		return
	}
	c.JSON(http.StatusOK, habits)
}

// GetHabit GET /habits/:id
func (h *HabitHandler) GetHabit(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	habit, err := h.habits.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "GetHabit", err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

// ToggleHabit PATCH /habits/:id/toggle?date=
// A repeated Idempotency-Key reports the current state without toggling.
func (h *HabitHandler) ToggleHabit(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	date, ok := optionalDate(c, "date", h.loc)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	replay, release := claimKey(c, h.guard, h.toggleScope(id, date))
	if replay {
		completed, err := h.habits.Completed(ctx, id, date)
		if err != nil {
			respondError(c, h.logger, "ToggleHabit", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"completed": completed})
		return
	}

	completed, err := h.habits.Toggle(ctx, id, date)
	if err != nil {
		release()
		respondError(c, h.logger, "ToggleHabit", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": completed})
}

// toggleScope keys idempotency per habit and day.
func (h *HabitHandler) toggleScope(id uuid.UUID, date *time.Time) string {
	day := calendar.Today(calendar.SystemClock, h.loc)
	if date != nil {
		day = *date
	}
	return "habit.toggle:" + id.String() + ":" + day.Format(time.DateOnly)
}

// DeleteHabit DELETE /habits/:id
func (h *HabitHandler) DeleteHabit(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.habits.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "DeleteHabit", err)
		return
	}
	h.logger.Info("DeleteHabit: success", zap.String("habit_id", id.String()))
	c.JSON(http.StatusOK, gin.H{"message": "Habit deleted"})
}
