package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"habittracker/internal/handler"
	"habittracker/pkg/otel"
)

type Handlers struct {
	Habit *handler.HabitHandler
	Task  *handler.TaskHandler
	Day   *handler.DayHandler
	Auth  *handler.AuthHandler
	Admin *handler.AdminHandler
}

// ReadyCheck is one dependency probed by /readyz.
type ReadyCheck func(ctx context.Context) error

type Options struct {
	Logger   *zap.Logger
	Verifier TokenVerifier
	// ReadyChecks are keyed by the status reported when the check fails,
	// e.g. "db_not_ready".
	ReadyChecks map[string]ReadyCheck
	Tracing     bool
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	if opts.Tracing {
		r.Use(otel.GinMiddleware())
	}
	r.Use(MetricsMiddleware())
	r.Use(RequestLogger(opts.Logger))

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		for status, check := range opts.ReadyChecks {
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": status, "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/auth/token", h.Auth.IssueToken)

	// Protected
	api := r.Group("/")
	api.Use(AuthMiddleware(opts.Verifier))
	{
		api.GET("/day", h.Day.GetDay)
		api.GET("/summary", h.Day.GetSummary)

		api.GET("/habits", h.Habit.ListHabits)
		api.GET("/habits/:id", h.Habit.GetHabit)
		api.POST("/habits", h.Habit.CreateHabit)
		api.PATCH("/habits/:id/toggle", h.Habit.ToggleHabit)
		api.DELETE("/habits/:id", h.Habit.DeleteHabit)

		api.POST("/single-task", h.Task.CreateTask)
		api.GET("/single-task", h.Task.ListTasks)
		api.PATCH("/tasks/:id/toggle", h.Task.ToggleTask)
		api.DELETE("/tasks/:id", h.Task.DeleteTask)

		api.POST("/admin/outbox/replay", h.Admin.ReplayOutboxEvent)
		api.POST("/admin/outbox/replay-failed", h.Admin.ReplayFailedEvents)
	}

	return r
}
