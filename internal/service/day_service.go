package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"habittracker/internal/model"
	"habittracker/internal/repository"
)

type DayService struct {
	habitRepo *repository.HabitRepository
	dayRepo   *repository.DayRepository
	taskRepo  *repository.TaskRepository
	tracker   Tracker
	logger    *zap.Logger
}

func NewDayService(
	habitRepo *repository.HabitRepository,
	dayRepo *repository.DayRepository,
	taskRepo *repository.TaskRepository,
	tracker Tracker,
	logger *zap.Logger,
) *DayService {
	return &DayService{
		habitRepo: habitRepo,
		dayRepo:   dayRepo,
		taskRepo:  taskRepo,
		tracker:   tracker,
		logger:    logger,
	}
}

// Detail builds the view of one date. A date with no Day row yet has no
// completions and no tasks; it is not created by reading.
func (s *DayService) Detail(ctx context.Context, date time.Time) (model.DayDetail, error) {
	day := s.tracker.dayOf(&date)

	possible, err := s.habitRepo.ListPossible(ctx, day)
	if err != nil {
		return model.DayDetail{}, fmt.Errorf("day detail: %w", err)
	}

	d, err := s.dayRepo.FindByDate(ctx, day)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewDayDetail(possible, nil, nil), nil
	}
	if err != nil {
		return model.DayDetail{}, fmt.Errorf("day detail: %w", err)
	}

	var completed []uuid.UUID
	if completed, err = s.dayRepo.CompletedHabitIDs(ctx, d.ID); err != nil {
		return model.DayDetail{}, fmt.Errorf("day detail: %w", err)
	}
	tasks, err := s.taskRepo.ListByDay(ctx, d.ID)
	if err != nil {
		return model.DayDetail{}, fmt.Errorf("day detail: %w", err)
	}

	return model.NewDayDetail(possible, completed, tasks), nil
}
