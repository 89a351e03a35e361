package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	mqcontracts "habittracker/contracts/mq"
	"habittracker/internal/cache"
	"habittracker/internal/model"
	"habittracker/internal/repository"
	"habittracker/pkg/logger"
	"habittracker/pkg/metrics"
	"habittracker/pkg/outbox"
	"habittracker/pkg/trace"
)

type TaskService struct {
	db         *pgxpool.Pool
	dayRepo    *repository.DayRepository
	taskRepo   *repository.TaskRepository
	outboxRepo *outbox.Repository
	cache      *cache.SummaryCache
	tracker    Tracker
	logger     *zap.Logger
}

func NewTaskService(
	db *pgxpool.Pool,
	dayRepo *repository.DayRepository,
	taskRepo *repository.TaskRepository,
	outboxRepo *outbox.Repository,
	summaryCache *cache.SummaryCache,
	tracker Tracker,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		db:         db,
		dayRepo:    dayRepo,
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		cache:      summaryCache,
		tracker:    tracker,
		logger:     logger,
	}
}

// Create adds a single task to date, creating the Day on first use.
func (s *TaskService) Create(ctx context.Context, title string, date time.Time) (*model.SingleTask, error) {
	day := s.tracker.dayOf(&date)
	t := &model.SingleTask{
		ID:    uuid.New(),
		Title: strings.TrimSpace(title),
		Date:  day,
	}

	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		d, err := s.dayRepo.WithTx(tx).GetOrCreate(ctx, day)
		if err != nil {
			return err
		}
		t.DayID = d.ID
		if err := s.taskRepo.WithTx(tx).Insert(ctx, t); err != nil {
			return err
		}
		payload := mqcontracts.TaskCreatedPayload{
			TaskID:    t.ID.String(),
			DayID:     d.ID.String(),
			Title:     t.Title,
			Date:      day.Format(time.DateOnly),
			TraceID:   trace.FromContext(ctx),
			EmittedAt: s.tracker.now(),
		}
		return outbox.InsertEventInTx(ctx, tx, s.outboxRepo,
			mqcontracts.AggregateTask, t.ID.String(), mqcontracts.RoutingKeyTaskCreated, payload)
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.cache.Invalidate(ctx)
	metrics.IncrementTaskEvent("created")
	logger.WithTrace(ctx, s.logger).Info("Single task created",
		zap.String("task_id", t.ID.String()),
		zap.String("date", day.Format(time.DateOnly)),
	)
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*model.SingleTask, error) {
	t, err := s.taskRepo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskService) ListByDate(ctx context.Context, date time.Time) ([]model.SingleTask, error) {
	tasks, err := s.taskRepo.ListByDate(ctx, s.tracker.dayOf(&date))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Toggle flips the task's completed flag and returns the updated task.
func (s *TaskService) Toggle(ctx context.Context, id uuid.UUID) (*model.SingleTask, error) {
	var updated *model.SingleTask
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		repo := s.taskRepo.WithTx(tx)
		current, err := repo.Get(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		if err != nil {
			return err
		}
		if err := s.tracker.checkEditable(current.Date); err != nil {
			return err
		}

		updated, err = repo.Toggle(ctx, id)
		if err != nil {
			return err
		}
		payload := mqcontracts.TaskToggledPayload{
			TaskID:    id.String(),
			Date:      updated.Date.Format(time.DateOnly),
			Completed: updated.Completed,
			TraceID:   trace.FromContext(ctx),
			EmittedAt: s.tracker.now(),
		}
		return outbox.InsertEventInTx(ctx, tx, s.outboxRepo,
			mqcontracts.AggregateTask, id.String(), mqcontracts.RoutingKeyTaskToggled, payload)
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("toggle task: %w", err)
	}

	s.cache.Invalidate(ctx)
	metrics.IncrementTaskEvent("toggled")
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		t, err := s.taskRepo.WithTx(tx).Delete(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		if err != nil {
			return err
		}
		payload := mqcontracts.TaskDeletedPayload{
			TaskID:    id.String(),
			Date:      t.Date.Format(time.DateOnly),
			TraceID:   trace.FromContext(ctx),
			EmittedAt: s.tracker.now(),
		}
		return outbox.InsertEventInTx(ctx, tx, s.outboxRepo,
			mqcontracts.AggregateTask, id.String(), mqcontracts.RoutingKeyTaskDeleted, payload)
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		logger.WithTrace(ctx, s.logger).Error("Failed to delete task",
			zap.String("task_id", id.String()),
			zap.Error(err),
		)
		return fmt.Errorf("delete task: %w", err)
	}

	s.cache.Invalidate(ctx)
	metrics.IncrementTaskEvent("deleted")
	return nil
}
