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

type DayRepository struct {
	db     DBTX
	loc    *time.Location
	logger *zap.Logger
}

func NewDayRepository(db DBTX, loc *time.Location, logger *zap.Logger) *DayRepository {
	return &DayRepository{
		db:     db,
		loc:    loc,
		logger: logger,
	}
}

func (r *DayRepository) WithTx(tx pgx.Tx) *DayRepository {
	return &DayRepository{db: tx, loc: r.loc, logger: r.logger}
}

// GetOrCreate returns the Day for date, inserting it on first use.
// Concurrent callers for the same date all get the same row.
func (r *DayRepository) GetOrCreate(ctx context.Context, date time.Time) (*model.Day, error) {
	r.logger.Debug("Getting or creating day", zap.Time("date", date))

	var d model.Day
	err := r.db.QueryRow(ctx, `
        INSERT INTO days (id, date)
        VALUES ($1, $2)
        ON CONFLICT (date) DO UPDATE SET date = EXCLUDED.date
        RETURNING id, date
    `, uuid.New(), date).Scan(&d.ID, &d.Date)
	if err != nil {
		r.logger.Error("Failed to get or create day",
			zap.Time("date", date),
			zap.Error(err),
		)
		return nil, err
	}
	d.Date = calendar.FromStoreDate(d.Date, r.loc)
	return &d, nil
}

func (r *DayRepository) FindByDate(ctx context.Context, date time.Time) (*model.Day, error) {
	var d model.Day
	err := r.db.QueryRow(ctx, `
        SELECT id, date FROM days WHERE date = $1
    `, date).Scan(&d.ID, &d.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to find day",
			zap.Time("date", date),
			zap.Error(err),
		)
		return nil, err
	}
	d.Date = calendar.FromStoreDate(d.Date, r.loc)
	return &d, nil
}

// CompletedHabitIDs lists the habits with a completion row on dayID.
func (r *DayRepository) CompletedHabitIDs(ctx context.Context, dayID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
        SELECT habit_id FROM day_habits WHERE day_id = $1 ORDER BY habit_id
    `, dayID)
	if err != nil {
		r.logger.Error("Failed to list completed habits",
			zap.String("day_id", dayID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			r.logger.Error("Failed to scan completed habit", zap.Error(err))
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// HabitCompleted reports whether habitID has a completion row on date.
func (r *DayRepository) HabitCompleted(ctx context.Context, date time.Time, habitID uuid.UUID) (bool, error) {
	var done bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM day_habits dh
            JOIN days d ON d.id = dh.day_id
            WHERE d.date = $1 AND dh.habit_id = $2
        )
    `, date, habitID).Scan(&done)
	if err != nil {
		r.logger.Error("Failed to check habit completion", zap.Error(err))
		return false, err
	}
	return done, nil
}

// ToggleHabit removes the completion row when present and inserts it
// otherwise. It reports the completion state after the call.
func (r *DayRepository) ToggleHabit(ctx context.Context, dayID, habitID uuid.UUID) (bool, error) {
	r.logger.Debug("Toggling habit",
		zap.String("day_id", dayID.String()),
		zap.String("habit_id", habitID.String()),
	)

	result, err := r.db.Exec(ctx, `
        DELETE FROM day_habits WHERE day_id = $1 AND habit_id = $2
    `, dayID, habitID)
	if err != nil {
		r.logger.Error("Failed to remove habit completion", zap.Error(err))
		return false, err
	}
	if result.RowsAffected() > 0 {
		r.logger.Info("Habit marked incomplete",
			zap.String("day_id", dayID.String()),
			zap.String("habit_id", habitID.String()),
		)
		return false, nil
	}

	_, err = r.db.Exec(ctx, `
        INSERT INTO day_habits (id, day_id, habit_id)
        VALUES ($1, $2, $3)
        ON CONFLICT (day_id, habit_id) DO NOTHING
    `, uuid.New(), dayID, habitID)
	if err != nil {
		r.logger.Error("Failed to insert habit completion", zap.Error(err))
		return false, err
	}

	r.logger.Info("Habit marked complete",
		zap.String("day_id", dayID.String()),
		zap.String("habit_id", habitID.String()),
	)
	return true, nil
}
