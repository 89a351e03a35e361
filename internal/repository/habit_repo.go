package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"habittracker/internal/calendar"
	"habittracker/internal/model"
)

type HabitRepository struct {
	db     DBTX
	loc    *time.Location
	logger *zap.Logger
}

func NewHabitRepository(db DBTX, loc *time.Location, logger *zap.Logger) *HabitRepository {
	return &HabitRepository{
		db:     db,
		loc:    loc,
		logger: logger,
	}
}

// WithTx returns a copy of the repository bound to tx.
func (r *HabitRepository) WithTx(tx pgx.Tx) *HabitRepository {
	return &HabitRepository{db: tx, loc: r.loc, logger: r.logger}
}

const habitSelect = `
        SELECT h.id, h.title, h.created_at,
               COALESCE(array_agg(w.week_day::int ORDER BY w.week_day)
                        FILTER (WHERE w.week_day IS NOT NULL), '{}')
        FROM habits h
        LEFT JOIN habit_week_days w ON w.habit_id = h.id
`

// Insert stores the habit and its weekday rows. Run it inside a
// transaction so both land together.
func (r *HabitRepository) Insert(ctx context.Context, h *model.Habit) error {
	r.logger.Debug("Inserting habit",
		zap.String("habit_id", h.ID.String()),
		zap.String("title", h.Title),
		zap.Ints("week_days", h.WeekDays),
	)

	_, err := r.db.Exec(ctx, `
        INSERT INTO habits (id, title, created_at)
        VALUES ($1, $2, $3)
    `, h.ID, h.Title, h.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert habit", zap.Error(err))
		return err
	}

	weekDays := make([]int32, len(h.WeekDays))
	for i, d := range h.WeekDays {
		weekDays[i] = int32(d)
	}
	_, err = r.db.Exec(ctx, `
        INSERT INTO habit_week_days (habit_id, week_day)
        SELECT $1, d FROM unnest($2::int[]) AS d
    `, h.ID, weekDays)
	if err != nil {
		r.logger.Error("Failed to insert habit week days",
			zap.String("habit_id", h.ID.String()),
			zap.Error(err),
		)
		return err
	}

	r.logger.Info("Habit inserted successfully",
		zap.String("habit_id", h.ID.String()),
		zap.Int("week_days", len(h.WeekDays)),
	)
	return nil
}

func (r *HabitRepository) Get(ctx context.Context, id uuid.UUID) (*model.Habit, error) {
	r.logger.Debug("Getting habit", zap.String("habit_id", id.String()))

	row := r.db.QueryRow(ctx, habitSelect+`
        WHERE h.id = $1
        GROUP BY h.id
    `, id)
	h, err := r.scanHabit(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get habit",
			zap.String("habit_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return &h, nil
}

func (r *HabitRepository) List(ctx context.Context) ([]model.Habit, error) {
	r.logger.Debug("Listing habits")

	rows, err := r.db.Query(ctx, habitSelect+`
        GROUP BY h.id
        ORDER BY h.created_at, h.title
    `)
	if err != nil {
		r.logger.Error("Failed to list habits", zap.Error(err))
		return nil, err
	}
	return r.collect(rows)
}

// ListPossible returns the habits scheduled on day's weekday and created on
// or before day.
func (r *HabitRepository) ListPossible(ctx context.Context, day time.Time) ([]model.Habit, error) {
	weekDay := calendar.Weekday(day)
	r.logger.Debug("Listing possible habits",
		zap.Time("day", day),
		zap.Int("week_day", weekDay),
	)

	rows, err := r.db.Query(ctx, habitSelect+`
        WHERE h.created_at <= $1
          AND EXISTS (
              SELECT 1 FROM habit_week_days x
              WHERE x.habit_id = h.id AND x.week_day = $2
          )
        GROUP BY h.id
        ORDER BY h.created_at, h.title
    `, day, weekDay)
	if err != nil {
		r.logger.Error("Failed to list possible habits", zap.Error(err))
		return nil, err
	}
	return r.collect(rows)
}

// Delete removes the habit's completion rows, weekday rows and the habit.
// The caller owns the transaction. Returns ErrNotFound when no habit
// matched.
func (r *HabitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.logger.Debug("Deleting habit", zap.String("habit_id", id.String()))

	completions, err := r.db.Exec(ctx, `DELETE FROM day_habits WHERE habit_id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete habit completions", zap.Error(err))
		return err
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM habit_week_days WHERE habit_id = $1`, id); err != nil {
		r.logger.Error("Failed to delete habit week days", zap.Error(err))
		return err
	}
	result, err := r.db.Exec(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete habit", zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	r.logger.Info("Habit deleted",
		zap.String("habit_id", id.String()),
		zap.Int64("completions_removed", completions.RowsAffected()),
	)
	return nil
}

func (r *HabitRepository) collect(rows pgx.Rows) ([]model.Habit, error) {
	defer rows.Close()

	habits := []model.Habit{}
	for rows.Next() {
		h, err := r.scanHabit(rows)
		if err != nil {
			r.logger.Error("Failed to scan habit", zap.Error(err))
			return nil, err
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate habits", zap.Error(err))
		return nil, err
	}
	return habits, nil
}

func (r *HabitRepository) scanHabit(row pgx.Row) (model.Habit, error) {
	var (
		h        model.Habit
		weekDays []int32
	)
	if err := row.Scan(&h.ID, &h.Title, &h.CreatedAt, &weekDays); err != nil {
		return model.Habit{}, err
	}
	h.CreatedAt = calendar.FromStoreDate(h.CreatedAt, r.loc)
	h.WeekDays = make([]int, len(weekDays))
	for i, d := range weekDays {
		h.WeekDays[i] = int(d)
	}
	return h, nil
}
