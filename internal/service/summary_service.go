package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"habittracker/internal/cache"
	"habittracker/internal/model"
	"habittracker/internal/repository"
)

type SummaryService struct {
	summaryRepo *repository.SummaryRepository
	cache       *cache.SummaryCache
	tracker     Tracker
	logger      *zap.Logger
}

func NewSummaryService(
	summaryRepo *repository.SummaryRepository,
	summaryCache *cache.SummaryCache,
	tracker Tracker,
	logger *zap.Logger,
) *SummaryService {
	return &SummaryService{
		summaryRepo: summaryRepo,
		cache:       summaryCache,
		tracker:     tracker,
		logger:      logger,
	}
}

// Summary lists {id, date, amount, completed} for every existing Day in
// [from, to]. Either bound may be nil.
func (s *SummaryService) Summary(ctx context.Context, from, to *time.Time) ([]model.DaySummary, error) {
	if from != nil {
		f := s.tracker.dayOf(from)
		from = &f
	}
	if to != nil {
		t := s.tracker.dayOf(to)
		to = &t
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, ErrInvalidRange
	}

	field := cache.RangeField(from, to)
	if rows, ok := s.cache.Get(ctx, field); ok {
		return rows, nil
	}

	rows, err := s.summaryRepo.List(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	s.cache.Set(ctx, field, rows)
	return rows, nil
}
