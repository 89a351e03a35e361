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
	"habittracker/internal/calendar"
	"habittracker/internal/model"
	"habittracker/internal/repository"
	"habittracker/pkg/logger"
	"habittracker/pkg/metrics"
	"habittracker/pkg/outbox"
	"habittracker/pkg/trace"
)

type HabitService struct {
	db         *pgxpool.Pool
	habitRepo  *repository.HabitRepository
	dayRepo    *repository.DayRepository
	outboxRepo *outbox.Repository
	cache      *cache.SummaryCache
	tracker    Tracker
	logger     *zap.Logger
}

func NewHabitService(
	db *pgxpool.Pool,
	habitRepo *repository.HabitRepository,
	dayRepo *repository.DayRepository,
	outboxRepo *outbox.Repository,
	summaryCache *cache.SummaryCache,
	tracker Tracker,
	logger *zap.Logger,
) *HabitService {
	return &HabitService{
		db:         db,
		habitRepo:  habitRepo,
		dayRepo:    dayRepo,
		outboxRepo: outboxRepo,
		cache:      summaryCache,
		tracker:    tracker,
		logger:     logger,
	}
}

// Create stores a habit scheduled on weekDays, starting today, and queues
// habit.created in the same transaction.
func (s *HabitService) Create(ctx context.Context, title string, weekDays []int) (*model.Habit, error) {
	h := &model.Habit{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(title),
		CreatedAt: s.tracker.Today(),
		WeekDays:  normalizeWeekDays(weekDays),
	}

	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.habitRepo.WithTx(tx).Insert(ctx, h); err != nil {
			return err
		}
		payload := mqcontracts.HabitCreatedPayload{
			HabitID:   h.ID.String(),
			Title:     h.Title,
			WeekDays:  h.WeekDays,
			CreatedAt: h.CreatedAt.Format(time.DateOnly),
			TraceID:   trace.FromContext(ctx),
			EmittedAt: s.tracker.now(),
		}
		return outbox.InsertEventInTx(ctx, tx, s.outboxRepo,
			mqcontracts.AggregateHabit, h.ID.String(), mqcontracts.RoutingKeyHabitCreated, payload)
	})
	if err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}

	s.cache.Invalidate(ctx)
	logger.WithTrace(ctx, s.logger).Info("Habit created",
		zap.String("habit_id", h.ID.String()),
		zap.Ints("week_days", h.WeekDays),
	)
	return h, nil
}

func (s *HabitService) Get(ctx context.Context, id uuid.UUID) (*model.Habit, error) {
	h, err := s.habitRepo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrHabitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return h, nil
}

func (s *HabitService) List(ctx context.Context) ([]model.Habit, error) {
	habits, err := s.habitRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return habits, nil
}

// Delete removes the habit with its schedule and completion history in one
// transaction.
func (s *HabitService) Delete(ctx context.Context, id uuid.UUID) error {
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.habitRepo.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		payload := mqcontracts.HabitDeletedPayload{
			HabitID:   id.String(),
			TraceID:   trace.FromContext(ctx),
			EmittedAt: s.tracker.now(),
		}
		return outbox.InsertEventInTx(ctx, tx, s.outboxRepo,
			mqcontracts.AggregateHabit, id.String(), mqcontracts.RoutingKeyHabitDeleted, payload)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrHabitNotFound
	}
	if err != nil {
		logger.WithTrace(ctx, s.logger).Error("Failed to delete habit",
			zap.String("habit_id", id.String()),
			zap.Error(err),
		)
		return fmt.Errorf("delete habit: %w", err)
	}

	s.cache.Invalidate(ctx)
	logger.WithTrace(ctx, s.logger).Info("Habit deleted", zap.String("habit_id", id.String()))
	return nil
}

// Toggle flips the habit's completion on date (today when nil) and returns
// the new state.
func (s *HabitService) Toggle(ctx context.Context, id uuid.UUID, date *time.Time) (bool, error) {
	day := s.tracker.dayOf(date)

	var completed bool
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		h, err := s.habitRepo.WithTx(tx).Get(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrHabitNotFound
		}
		if err != nil {
			return err
		}
		if !calendar.HabitAppliesOn(h.WeekDays, h.CreatedAt, day) {
			return ErrHabitNotScheduled
		}
		if err := s.tracker.checkEditable(day); err != nil {
			return err
		}

		dayRepo := s.dayRepo.WithTx(tx)
		d, err := dayRepo.GetOrCreate(ctx, day)
		if err != nil {
			return err
		}
		completed, err = dayRepo.ToggleHabit(ctx, d.ID, h.ID)
		if err != nil {
			return err
		}

		payload := mqcontracts.HabitToggledPayload{
			HabitID:   h.ID.String(),
			DayID:     d.ID.String(),
			Date:      day.Format(time.DateOnly),
			Completed: completed,
			TraceID:   trace.FromContext(ctx),
			EmittedAt: s.tracker.now(),
		}
		return outbox.InsertEventInTx(ctx, tx, s.outboxRepo,
			mqcontracts.AggregateHabit, h.ID.String(), mqcontracts.RoutingKeyHabitToggled, payload)
	})
	if err != nil {
		if isDomainError(err) {
			return false, err
		}
		return false, fmt.Errorf("toggle habit: %w", err)
	}

	s.cache.Invalidate(ctx)
	metrics.IncrementHabitToggle(completed)
	return completed, nil
}

// Completed reports the habit's current state on date without changing it.
func (s *HabitService) Completed(ctx context.Context, id uuid.UUID, date *time.Time) (bool, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return false, err
	}
	done, err := s.dayRepo.HabitCompleted(ctx, s.tracker.dayOf(date), id)
	if err != nil {
		return false, fmt.Errorf("habit state: %w", err)
	}
	return done, nil
}

// normalizeWeekDays sorts and de-duplicates the schedule.
func normalizeWeekDays(weekDays []int) []int {
	var seen [7]bool
	for _, d := range weekDays {
		if d >= 0 && d <= 6 {
			seen[d] = true
		}
	}
	out := make([]int, 0, len(weekDays))
	for d, ok := range seen {
		if ok {
			out = append(out, d)
		}
	}
	return out
}

func isDomainError(err error) bool {
	return errors.Is(err, ErrHabitNotFound) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrHabitNotScheduled) ||
		errors.Is(err, ErrDayLocked) ||
		errors.Is(err, ErrFutureDay)
}
