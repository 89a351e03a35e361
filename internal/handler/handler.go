// Package handler exposes the tracker over HTTP with gin.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"habittracker/internal/calendar"
	"habittracker/internal/model"
	"habittracker/internal/service"
	"habittracker/pkg/logger"
)

const maxTitleLength = 200

type HabitService interface {
	Create(ctx context.Context, title string, weekDays []int) (*model.Habit, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Habit, error)
	List(ctx context.Context) ([]model.Habit, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Toggle(ctx context.Context, id uuid.UUID, date *time.Time) (bool, error)
	Completed(ctx context.Context, id uuid.UUID, date *time.Time) (bool, error)
}

type DayService interface {
	Detail(ctx context.Context, date time.Time) (model.DayDetail, error)
}

type TaskService interface {
	Create(ctx context.Context, title string, date time.Time) (*model.SingleTask, error)
	Get(ctx context.Context, id uuid.UUID) (*model.SingleTask, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.SingleTask, error)
	Toggle(ctx context.Context, id uuid.UUID) (*model.SingleTask, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type SummaryService interface {
	Summary(ctx context.Context, from, to *time.Time) ([]model.DaySummary, error)
}

// IdempotencyGuard answers whether a request key is seen for the first
// time. *util.Deduper implements it.
type IdempotencyGuard interface {
	AcquireOnce(ctx context.Context, scope, key string) bool
	Release(ctx context.Context, scope, key string)
}

const IdempotencyHeader = "Idempotency-Key"

type idURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// bindID validates the :id path parameter. It writes the 400 itself.
func bindID(c *gin.Context) (uuid.UUID, bool) {
	var uri idURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(uri.ID)
	if err != nil {
		badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// checkTitle trims title and rejects blank or overlong values.
func checkTitle(title string) (string, bool) {
	title = strings.TrimSpace(title)
	if title == "" || len([]rune(title)) > maxTitleLength {
		return "", false
	}
	return title, true
}

// optionalDate parses the query parameter name when present.
func optionalDate(c *gin.Context, name string, loc *time.Location) (*time.Time, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}
	d, err := calendar.ParseDate(raw, loc)
	if err != nil {
		badRequest(c, "invalid "+name)
		return nil, false
	}
	return &d, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// respondError maps service errors to status codes. Unknown errors are
// logged and hidden behind a fixed message.
func respondError(c *gin.Context, log *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrHabitNotFound), errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrHabitNotScheduled):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDayLocked), errors.Is(err, service.ErrFutureDay):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.WithTrace(c.Request.Context(), log).Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// claimKey reserves the request's Idempotency-Key under scope. replay is
// true when the key was already used. release frees the key again so a
// failed request can be retried with it; it is a no-op when nothing was
// claimed.
func claimKey(c *gin.Context, guard IdempotencyGuard, scope string) (replay bool, release func()) {
	key := c.GetHeader(IdempotencyHeader)
	if key == "" || guard == nil {
		return false, func() {}
	}
	ctx := c.Request.Context()
	if !guard.AcquireOnce(ctx, scope, key) {
		return true, func() {}
	}
	return false, func() {
		guard.Release(context.WithoutCancel(ctx), scope, key)
	}
}
