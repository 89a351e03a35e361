package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"habittracker/internal/calendar"
	"habittracker/internal/model"
)

type SummaryRepository struct {
	db     DBTX
	loc    *time.Location
	logger *zap.Logger
}

func NewSummaryRepository(db DBTX, loc *time.Location, logger *zap.Logger) *SummaryRepository {
	return &SummaryRepository{
		db:     db,
		loc:    loc,
		logger: logger,
	}
}

// amount: habits scheduled on the day's weekday and created by then, plus
// the day's tasks. completed: completion rows plus completed tasks.
const summaryQuery = `
    SELECT d.id, d.date,
        (SELECT COUNT(*)
           FROM habit_week_days w
           JOIN habits h ON h.id = w.habit_id
          WHERE w.week_day = EXTRACT(DOW FROM d.date)::int
            AND h.created_at <= d.date)
      + (SELECT COUNT(*) FROM single_tasks t WHERE t.day_id = d.id) AS amount,
        (SELECT COUNT(*) FROM day_habits dh WHERE dh.day_id = d.id)
      + (SELECT COUNT(*) FROM single_tasks t WHERE t.day_id = d.id AND t.completed) AS completed
    FROM days d
    WHERE ($1::date IS NULL OR d.date >= $1::date)
      AND ($2::date IS NULL OR d.date <= $2::date)
    ORDER BY d.date
`

// List returns one row per existing Day, optionally bounded by from and to
// (inclusive).
func (r *SummaryRepository) List(ctx context.Context, from, to *time.Time) ([]model.DaySummary, error) {
	r.logger.Debug("Listing day summaries")

	rows, err := r.db.Query(ctx, summaryQuery, from, to)
	if err != nil {
		r.logger.Error("Failed to query summary", zap.Error(err))
		return nil, err
	}
	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.DaySummary, error) {
		var s model.DaySummary
		err := row.Scan(&s.ID, &s.Date, &s.Amount, &s.Completed)
		s.Date = calendar.FromStoreDate(s.Date, r.loc)
		return s, err
	})
	if err != nil {
		r.logger.Error("Failed to scan summary", zap.Error(err))
		return nil, err
	}
	if summaries == nil {
		summaries = []model.DaySummary{}
	}

	r.logger.Info("Day summaries listed", zap.Int("days", len(summaries)))
	return summaries, nil
}
